// Package mockapi serves the registration API over net/http from any
// client.Collaborators backend, typically a fixture. It answers the routes
// the HTTP client calls (offer, registration form, registration response)
// so the CLI and tests can run against a local server.
package mockapi

// Package client provides the remote collaborators a registration session
// uses: fetching the offer, the registration form schema and prior answers,
// and submitting a response. HTTPClient talks to the registration API;
// FixtureClient serves a single YAML or JSON document for offline runs and
// tests.
package client

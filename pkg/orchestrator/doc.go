// Package orchestrator owns a registration session. Load runs the fetch
// pipeline (offer, then form schema and prior answers), SetAnswer records
// edits, and Submit drives the validate/submit state machine choosing
// between creating and updating a registration. Listeners receive a Snapshot
// after every transition, which is all a front end needs to render the page.
package orchestrator

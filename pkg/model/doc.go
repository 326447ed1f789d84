// Package model defines the registration form schema (sections, questions,
// options), answers, validation results and the submission payload. JSON tags
// match the registration API field names exactly; RegistrationID and Options
// carry custom decoding for the loosely typed fields the API returns.
package model

// Package answers holds the per-question answer state of a registration
// session. Every value is normalized to a string on the way in so validation
// and submission see a single representation regardless of the control that
// produced it.
package answers

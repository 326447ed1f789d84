package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned once a session has been disposed.
	ErrClosed = errors.New("orchestrator: session closed")
	// ErrSuperseded is returned by a load whose results were discarded
	// because a newer load started on the same session.
	ErrSuperseded = errors.New("orchestrator: load superseded")
	// ErrNotLoaded is returned when submitting without a loaded form.
	ErrNotLoaded = errors.New("orchestrator: form not loaded")
	// ErrSubmitInProgress is returned when Submit is called while a previous
	// submission is still in flight.
	ErrSubmitInProgress = errors.New("orchestrator: submission in progress")
)

// LoadError reports that the offer or form fetch failed. No form is shown.
type LoadError struct {
	Step    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("orchestrator: load %s: %s", e.Step, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("orchestrator: load %s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("orchestrator: load %s failed", e.Step)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ConflictError reports that the form fetch signalled a conflict, such as an
// expired offer. Callers are redirected to the offer selection route.
type ConflictError struct {
	Route      string
	StatusCode int
	Message    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("orchestrator: form conflict (%d): %s", e.StatusCode, e.Message)
}

// SubmissionError reports a failed submit: transport failure, an error
// message from the server or a status other than 200/201.
type SubmissionError struct {
	StatusCode int
	Message    string
	RequestID  string
	Err        error
}

func (e *SubmissionError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("orchestrator: submit failed (status %d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("orchestrator: submit failed: %s", msg)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

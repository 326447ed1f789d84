package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoForm is returned when the session loaded without any question.
	ErrNoForm = errors.New("tui: no registration form available")
	// ErrUnanswerable is returned when a rejected submit can only be fixed
	// through questions the terminal has no control for.
	ErrUnanswerable = errors.New("tui: invalid questions cannot be answered from the terminal")
)

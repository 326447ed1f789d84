package orchestrator

import (
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/validation"
	"github.com/goliatone/go-regform/pkg/visibility"
)

// Status is the load state of a session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusLoading    Status = "loading"
	StatusLoaded     Status = "loaded"
	StatusError      Status = "error"
	StatusRedirected Status = "redirected"
)

// SubmitState tracks a submission attempt:
//
//	Idle -> Validating -> Invalid
//	                   -> Submitting -> Success | Failure
type SubmitState string

const (
	SubmitIdle       SubmitState = "idle"
	SubmitValidating SubmitState = "validating"
	SubmitInvalid    SubmitState = "invalid"
	SubmitSubmitting SubmitState = "submitting"
	SubmitSuccess    SubmitState = "success"
	SubmitFailure    SubmitState = "failure"
)

// OfferRoute is where users are sent when the form fetch reports a conflict.
const OfferRoute = "/offer"

// Snapshot is an immutable copy of the session state handed to listeners and
// front ends. It carries everything needed to render the page.
type Snapshot struct {
	Status       Status
	LoadError    string
	Sections     []model.Section
	Registration model.RegistrationState
	Answers      []model.Answer

	HasValidated bool
	Validation   validation.Report

	SubmitState SubmitState
	SubmitError string

	resolver visibility.Resolver
	lookup   map[int]string
}

// Loading reports whether the loading indicator should show.
func (s Snapshot) Loading() bool { return s.Status == StatusLoading }

// Submitting reports whether the submit button should show as busy.
func (s Snapshot) Submitting() bool { return s.SubmitState == SubmitSubmitting }

// Succeeded reports whether the success banner should show.
func (s Snapshot) Succeeded() bool { return s.SubmitState == SubmitSuccess }

// Failed reports whether the retry banner should show.
func (s Snapshot) Failed() bool { return s.SubmitState == SubmitFailure }

// AlreadyRegistered reports whether a prior registration exists and the user
// is editing it.
func (s Snapshot) AlreadyRegistered() bool {
	return s.Registration.RegistrationID.Known() && !s.Succeeded()
}

// NoFormAvailable reports whether the form loaded without any section.
func (s Snapshot) NoFormAvailable() bool {
	return s.Status == StatusLoaded && len(s.Sections) == 0 && !s.Succeeded() && !s.Failed()
}

// ShowValidationBanner reports whether the aggregate validation banner
// should show.
func (s Snapshot) ShowValidationBanner() bool {
	return s.HasValidated && !s.Validation.Valid
}

// Get implements answers.Lookup over the snapshot's answers.
func (s Snapshot) Get(questionID int) (model.Answer, bool) {
	value, ok := s.lookup[questionID]
	if !ok {
		return model.Answer{}, false
	}
	return model.Answer{QuestionID: questionID, Value: value}, true
}

// Active reports whether question is visible in this snapshot.
func (s Snapshot) Active(question model.Question) bool {
	resolver := s.resolver
	if resolver == nil {
		resolver = visibility.Default
	}
	return resolver.IsActive(question, s)
}

// ErrorFor returns the validation error for a question, empty when valid or
// not yet validated.
func (s Snapshot) ErrorFor(questionID int) string {
	if !s.HasValidated {
		return ""
	}
	msg, _ := s.Validation.ErrorFor(questionID)
	return msg
}

// Listener receives a snapshot after every state transition.
type Listener func(Snapshot)

// Navigator performs navigation requests, such as the redirect to the offer
// selection route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(route string)

// Navigate delegates to the underlying function.
func (fn NavigatorFunc) Navigate(route string) {
	fn(route)
}

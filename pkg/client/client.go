package client

import (
	"context"

	"github.com/goliatone/go-regform/pkg/model"
)

// Collaborators is the remote surface a registration session depends on.
// Every result carries an Error string mirroring the registration API: an
// empty string means success. Implementations also return a Go error for
// transport failures; callers treat either as a failed call.
type Collaborators interface {
	GetOffer(ctx context.Context, eventID int) (OfferResult, error)
	GetRegistrationForm(ctx context.Context, eventID, offerID int) (FormResult, error)
	GetRegistrationResponse(ctx context.Context) (ResponseResult, error)
	SubmitResponse(ctx context.Context, payload model.Submission, isUpdate bool) (SubmitResult, error)
}

// OfferResult is the outcome of GetOffer. Offer is nil when the user has no
// offer for the event.
type OfferResult struct {
	Error string       `json:"error"`
	Offer *model.Offer `json:"offer"`
}

// FormResult is the outcome of GetRegistrationForm.
type FormResult struct {
	Error      string     `json:"error"`
	Form       model.Form `json:"form"`
	StatusCode int        `json:"statusCode"`
}

// PriorResponse is a previously submitted answer set.
type PriorResponse struct {
	RegistrationID model.RegistrationID `json:"registration_id"`
	Answers        []model.Answer       `json:"answers"`
}

// ResponseResult is the outcome of GetRegistrationResponse.
type ResponseResult struct {
	Error string        `json:"error"`
	Form  PriorResponse `json:"form"`
}

// SubmitStatus carries the HTTP-style status of a submission and, for a
// first registration, the id the server assigned.
type SubmitStatus struct {
	Status         int                  `json:"status"`
	RegistrationID model.RegistrationID `json:"registration_id,omitempty"`
}

// SubmitResult is the outcome of SubmitResponse.
type SubmitResult struct {
	Error string       `json:"error"`
	Form  SubmitStatus `json:"form"`
}

// Succeeded reports whether the submission was accepted: no error and a 200
// or 201 status.
func (r SubmitResult) Succeeded() bool {
	return r.Error == "" && (r.Form.Status == 200 || r.Form.Status == 201)
}

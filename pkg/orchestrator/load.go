package orchestrator

import (
	"context"
	"errors"
	"net/http"

	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/validation"
	"github.com/goliatone/go-regform/pkg/visibility"
)

// Pipeline step names.
const (
	StepOffer = "offer"
	StepForm  = "form"
	StepPrior = "prior"
)

// Load fetches the offer, the form schema and any prior answers. Answers
// typed before the load are kept unless prior answers arrive, which replace
// them wholesale; a known registration id is never cleared. The offer is fetched first; the form and
// prior answers follow concurrently. The form result is published as soon as
// it arrives, while a prior-answers failure is ignored.
//
// Load returns a *LoadError when the offer fetch fails and a *ConflictError
// when the form fetch reports a conflict. Any other form failure leaves the
// session loaded with no sections. A load overtaken by a newer one returns
// ErrSuperseded.
func (s *Session) Load(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.generation++
	gen := s.generation
	s.status = StatusLoading
	s.loadErr = ""
	s.sections = nil
	s.registration.OfferID = 0
	s.registration.RegistrationFormID = 0
	s.report = validation.Report{Valid: true}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	var offer model.Offer
	pipeline, err := NewPipeline(
		Step{
			Name: StepOffer,
			Run: func(ctx context.Context) StepResult {
				return s.fetchOffer(ctx, gen, &offer)
			},
		},
		Step{
			Name:       StepPrior,
			After:      []string{StepOffer},
			Background: true,
			Run: func(ctx context.Context) StepResult {
				return s.fetchPrior(ctx, gen)
			},
		},
		Step{
			Name:  StepForm,
			After: []string{StepOffer},
			Run: func(ctx context.Context) StepResult {
				return s.fetchForm(ctx, gen, offer.ID)
			},
		},
	)
	if err != nil {
		return err
	}

	results := pipeline.Run(ctx)
	for _, name := range []string{StepOffer, StepForm} {
		result := results[name]
		if result.Outcome == StepFailed || errors.Is(result.Err, ErrClosed) || errors.Is(result.Err, ErrSuperseded) {
			return result.Err
		}
	}
	return nil
}

// Reset clears a previous success and reloads the whole form, so a
// registered user can change their answers.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.submitState = SubmitIdle
	s.submitErr = ""
	s.mu.Unlock()
	return s.Load(ctx)
}

func (s *Session) fetchOffer(ctx context.Context, gen uint64, out *model.Offer) StepResult {
	result, err := s.client.GetOffer(ctx, s.eventID)
	message := result.Error
	if message == "" && err != nil {
		message = err.Error()
	}
	if message == "" && result.Offer == nil {
		message = "no offer available"
	}
	if message != "" {
		loadErr := &LoadError{Step: StepOffer, Message: message, Err: err}
		s.logger.Warn("orchestrator: offer fetch failed", "event_id", s.eventID, "error", message)
		if err := s.apply(gen, func() {
			s.status = StatusError
			s.loadErr = message
		}); err != nil {
			return skippedWith(err)
		}
		return failed(loadErr)
	}

	*out = *result.Offer
	if err := s.apply(gen, func() {
		s.registration.OfferID = out.ID
	}); err != nil {
		return skippedWith(err)
	}
	s.logger.Debug("orchestrator: offer loaded", "event_id", s.eventID, "offer_id", out.ID)
	return succeeded()
}

func (s *Session) fetchForm(ctx context.Context, gen uint64, offerID int) StepResult {
	result, err := s.client.GetRegistrationForm(ctx, s.eventID, offerID)
	message := result.Error
	if message == "" && err != nil {
		message = err.Error()
	}

	if message != "" && result.StatusCode == http.StatusConflict {
		conflict := &ConflictError{Route: OfferRoute, StatusCode: result.StatusCode, Message: message}
		s.logger.Info("orchestrator: form conflict, redirecting", "offer_id", offerID, "route", OfferRoute)
		if err := s.apply(gen, func() {
			s.status = StatusRedirected
		}); err != nil {
			return skippedWith(err)
		}
		if s.navigator != nil {
			s.navigator.Navigate(OfferRoute)
		}
		return failed(conflict)
	}

	if message != "" {
		s.logger.Warn("orchestrator: registration form unavailable",
			"offer_id", offerID,
			"status", result.StatusCode,
			"error", message,
		)
		if err := s.apply(gen, func() {
			s.status = StatusLoaded
		}); err != nil {
			return skippedWith(err)
		}
		return skippedWith(&LoadError{Step: StepForm, Message: message, Err: err})
	}

	sections := model.PrepareSections(result.Form.Sections)
	for _, issue := range visibility.Lint(sections) {
		s.logger.Warn("orchestrator: dependency issue",
			"kind", string(issue.Kind),
			"question_id", issue.QuestionID,
			"path", issue.Path,
		)
	}

	if err := s.apply(gen, func() {
		s.sections = sections
		s.registration.RegistrationFormID = result.Form.ID
		s.status = StatusLoaded
		if s.hasValidated {
			s.report = s.validator.ValidateAll(s.sections, s.store)
		}
	}); err != nil {
		return skippedWith(err)
	}
	s.logger.Debug("orchestrator: registration form loaded",
		"form_id", result.Form.ID,
		"sections", len(sections),
	)
	return succeeded()
}

func (s *Session) fetchPrior(ctx context.Context, gen uint64) StepResult {
	result, err := s.client.GetRegistrationResponse(ctx)
	message := result.Error
	if message == "" && err != nil {
		message = err.Error()
	}
	if message != "" {
		s.logger.Debug("orchestrator: no prior registration", "reason", message)
		return skippedWith(errors.New(message))
	}

	prior := result.Form
	if err := s.apply(gen, func() {
		s.store.ReplaceAll(prior.Answers)
		if prior.RegistrationID.Known() {
			s.registration.RegistrationID = prior.RegistrationID
		}
		if s.hasValidated {
			s.report = s.validator.ValidateAll(s.sections, s.store)
		}
	}); err != nil {
		return skippedWith(err)
	}
	s.logger.Debug("orchestrator: prior answers installed",
		"registration_id", int(prior.RegistrationID),
		"answers", len(prior.Answers),
	)
	return succeeded()
}

// apply runs mutate under the lock and notifies listeners. It returns
// ErrClosed once the session is disposed and ErrSuperseded when a newer load
// has started; mutate does not run in either case.
func (s *Session) apply(gen uint64, mutate func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if gen != s.generation {
		s.mu.Unlock()
		return ErrSuperseded
	}
	mutate()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

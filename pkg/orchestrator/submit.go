package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/validation"
)

// SubmitOutcome describes how a Submit call ended.
type SubmitOutcome struct {
	State     SubmitState
	Report    validation.Report
	IsUpdate  bool
	RequestID string
	// Err is a *SubmissionError when State is SubmitFailure.
	Err error
}

// Submit validates the form and, when valid, sends the answers. The first
// call sets the has-validated flag so later edits re-validate on their own.
//
// Validation failures end in SubmitInvalid without contacting the server.
// A submission is an update when a registration id is already known. Only an
// empty error with status 200 or 201 counts as success; anything else ends in
// SubmitFailure with the message kept for display. Answers are never
// discarded and nothing is retried.
//
// The returned error is reserved for misuse: a closed session, no loaded form
// (including a load that ended with no form available) or a submission
// already in flight.
func (s *Session) Submit(ctx context.Context) (SubmitOutcome, error) {
	if ctx == nil {
		return SubmitOutcome{}, errors.New("orchestrator: context is required")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return SubmitOutcome{}, ErrClosed
	}
	if s.status != StatusLoaded || len(s.sections) == 0 {
		s.mu.Unlock()
		return SubmitOutcome{}, ErrNotLoaded
	}
	if s.submitState == SubmitSubmitting || s.submitState == SubmitValidating {
		s.mu.Unlock()
		return SubmitOutcome{}, ErrSubmitInProgress
	}
	gen := s.generation
	s.submitState = SubmitValidating
	s.hasValidated = true
	validating := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(validating)

	s.mu.Lock()
	s.report = s.validator.ValidateAll(s.sections, s.store)
	report := s.report
	if !report.Valid {
		s.submitState = SubmitInvalid
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		s.logger.Debug("orchestrator: submit blocked by validation", "invalid", len(report.Invalid()))
		return SubmitOutcome{State: SubmitInvalid, Report: report}, nil
	}

	payload := model.Submission{
		RegistrationID:     s.registration.RegistrationID,
		OfferID:            s.registration.OfferID,
		RegistrationFormID: s.registration.RegistrationFormID,
		Answers:            s.payloadAnswersLocked(),
	}
	isUpdate := payload.RegistrationID.Known()
	requestID := s.requestID()
	s.submitState = SubmitSubmitting
	s.submitErr = ""
	submitting := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(submitting)

	s.logger.Info("orchestrator: submitting registration",
		"request_id", requestID,
		"update", isUpdate,
		"offer_id", payload.OfferID,
		"form_id", payload.RegistrationFormID,
		"answers", len(payload.Answers),
	)

	result, err := s.client.SubmitResponse(ctx, payload, isUpdate)
	outcome := SubmitOutcome{Report: report, IsUpdate: isUpdate, RequestID: requestID}

	if err == nil && result.Succeeded() {
		ok := s.applySubmit(gen, func() {
			s.submitState = SubmitSuccess
			s.submitErr = ""
			if !s.registration.RegistrationID.Known() && result.Form.RegistrationID.Known() {
				s.registration.RegistrationID = result.Form.RegistrationID
			}
		})
		if !ok {
			return outcome, ErrClosed
		}
		s.logger.Info("orchestrator: registration submitted",
			"request_id", requestID,
			"status", result.Form.Status,
		)
		outcome.State = SubmitSuccess
		return outcome, nil
	}

	subErr := &SubmissionError{
		StatusCode: result.Form.Status,
		Message:    failureMessage(result.Error, result.Form.Status, err),
		RequestID:  requestID,
		Err:        err,
	}
	ok := s.applySubmit(gen, func() {
		s.submitState = SubmitFailure
		s.submitErr = subErr.Message
	})
	if !ok {
		return outcome, ErrClosed
	}
	s.logger.Warn("orchestrator: registration submit failed",
		"request_id", requestID,
		"status", subErr.StatusCode,
		"error", subErr.Message,
	)
	outcome.State = SubmitFailure
	outcome.Err = subErr
	return outcome, nil
}

// applySubmit is like apply but tolerates a reload that started during the
// submission: the outcome still belongs to the user's last attempt. Only a
// closed session drops it.
func (s *Session) applySubmit(gen uint64, mutate func()) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if gen != s.generation {
		s.logger.Debug("orchestrator: submission finished after a reload")
	}
	mutate()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return true
}

func (s *Session) payloadAnswersLocked() []model.Answer {
	all := s.store.All()
	if s.includeHidden {
		return all
	}
	active := make(map[int]struct{})
	for _, section := range s.sections {
		for _, question := range section.Questions {
			if s.resolver.IsActive(question, s.store) {
				active[question.ID] = struct{}{}
			}
		}
	}
	out := make([]model.Answer, 0, len(all))
	for _, answer := range all {
		if _, ok := active[answer.QuestionID]; ok {
			out = append(out, answer)
		}
	}
	return out
}

func failureMessage(message string, status int, err error) string {
	if message != "" {
		return message
	}
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("unexpected status %d", status)
}

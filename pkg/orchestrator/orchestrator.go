package orchestrator

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-regform/pkg/answers"
	"github.com/goliatone/go-regform/pkg/client"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/validation"
	"github.com/goliatone/go-regform/pkg/visibility"
)

// Option customises a Session.
type Option func(*Session)

// WithEventID selects the event whose offer and form are loaded. Zero is the
// "no event" sentinel and is the default.
func WithEventID(eventID int) Option {
	return func(s *Session) {
		s.eventID = eventID
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithResolver overrides the visibility rule.
func WithResolver(resolver visibility.Resolver) Option {
	return func(s *Session) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

// WithValidator injects a validation engine. Its resolver is replaced by the
// session's so visibility stays consistent.
func WithValidator(engine *validation.Engine) Option {
	return func(s *Session) {
		if engine != nil {
			s.validator = engine
		}
	}
}

// WithNavigator receives navigation requests (offer selection redirect).
func WithNavigator(navigator Navigator) Option {
	return func(s *Session) {
		s.navigator = navigator
	}
}

// WithListener registers a listener notified after every state transition.
func WithListener(listener Listener) Option {
	return func(s *Session) {
		if listener != nil {
			s.listeners = append(s.listeners, listener)
		}
	}
}

// WithHiddenAnswers submits answers of inactive questions too. By default
// only answers to active questions are sent.
func WithHiddenAnswers(include bool) Option {
	return func(s *Session) {
		s.includeHidden = include
	}
}

// WithRequestIDFunc overrides how submission ids are generated.
func WithRequestIDFunc(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.requestID = fn
		}
	}
}

// Session owns the state of one registration form: schema, answers,
// validation and submission. All mutation goes through its methods; remote
// calls happen without holding the lock and results are applied only if the
// session is still on the same load generation and not closed.
type Session struct {
	client        client.Collaborators
	eventID       int
	logger        *slog.Logger
	resolver      visibility.Resolver
	validator     *validation.Engine
	navigator     Navigator
	listeners     []Listener
	includeHidden bool
	requestID     func() string

	mu           sync.Mutex
	store        *answers.Store
	sections     []model.Section
	registration model.RegistrationState
	status       Status
	loadErr      string
	hasValidated bool
	report       validation.Report
	submitState  SubmitState
	submitErr    string
	generation   uint64
	closed       bool
}

// New constructs a Session backed by collaborators. Call Load to fetch the
// form.
func New(collaborators client.Collaborators, options ...Option) (*Session, error) {
	if collaborators == nil {
		return nil, errors.New("orchestrator: collaborators are required")
	}
	s := &Session{
		client:      collaborators,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		resolver:    visibility.Default,
		requestID:   uuid.NewString,
		store:       answers.NewStore(),
		status:      StatusIdle,
		submitState: SubmitIdle,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.validator == nil {
		s.validator = validation.New(validation.WithLogger(s.logger), validation.WithResolver(s.resolver))
	} else {
		validation.WithResolver(s.resolver)(s.validator)
	}
	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetAnswer records value for questionID. Once a submit attempt has
// validated the form, every edit re-runs validation.
func (s *Session) SetAnswer(questionID int, value any) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.store.Upsert(questionID, value)
	if s.hasValidated {
		s.report = s.validator.ValidateAll(s.sections, s.store)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// Answer returns the current answer for questionID.
func (s *Session) Answer(questionID int) (model.Answer, bool) {
	return s.store.Get(questionID)
}

// Close disposes the session. In-flight fetches complete but their results
// are discarded, and later mutations return ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) snapshotLocked() Snapshot {
	all := s.store.All()
	lookup := make(map[int]string, len(all))
	for _, answer := range all {
		lookup[answer.QuestionID] = answer.Value
	}
	report := validation.Report{
		Results: append([]model.ValidationResult(nil), s.report.Results...),
		Valid:   s.report.Valid,
	}
	return Snapshot{
		Status:       s.status,
		LoadError:    s.loadErr,
		Sections:     cloneSections(s.sections),
		Registration: s.registration,
		Answers:      all,
		HasValidated: s.hasValidated,
		Validation:   report,
		SubmitState:  s.submitState,
		SubmitError:  s.submitErr,
		resolver:     s.resolver,
		lookup:       lookup,
	}
}

func (s *Session) notify(snap Snapshot) {
	for _, listener := range s.listeners {
		listener(snap)
	}
}

func cloneSections(sections []model.Section) []model.Section {
	if sections == nil {
		return nil
	}
	out := make([]model.Section, len(sections))
	for i, section := range sections {
		section.Questions = append([]model.Question(nil), section.Questions...)
		out[i] = section
	}
	return out
}

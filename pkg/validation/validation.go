package validation

import (
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/goliatone/go-regform/pkg/answers"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/visibility"
)

// DefaultRequiredMessage is used when a required question has no
// validation_text of its own.
const DefaultRequiredMessage = "An answer is required."

// MessageSeparator joins multiple violated rules into one error string.
const MessageSeparator = "; "

// Report is the outcome of validating every active question.
type Report struct {
	Results []model.ValidationResult `json:"results"`
	Valid   bool                     `json:"valid"`
}

// ErrorFor returns the error attached to questionID, if the question was
// validated.
func (r Report) ErrorFor(questionID int) (string, bool) {
	for _, result := range r.Results {
		if result.QuestionID == questionID {
			return result.Error, true
		}
	}
	return "", false
}

// Invalid returns only the failing results.
func (r Report) Invalid() []model.ValidationResult {
	var out []model.ValidationResult
	for _, result := range r.Results {
		if !result.Valid() {
			out = append(out, result)
		}
	}
	return out
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes pattern compilation problems to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithResolver overrides the visibility rule used by ValidateAll.
func WithResolver(resolver visibility.Resolver) Option {
	return func(e *Engine) {
		if resolver != nil {
			e.resolver = resolver
		}
	}
}

// Engine validates answers against question rules. Compiled patterns are
// cached, so an Engine should live as long as the form it validates.
type Engine struct {
	logger   *slog.Logger
	resolver visibility.Resolver

	mu       sync.Mutex
	patterns map[string]*compiled
}

type compiled struct {
	re  *regexp.Regexp
	err error
}

// New constructs an Engine.
func New(options ...Option) *Engine {
	e := &Engine{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		resolver: visibility.Default,
		patterns: make(map[string]*compiled),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// ValidateOne checks a single answer. ok reports whether an answer exists.
//
// A required question without an answer, or with an empty value, gets its
// validation_text (or DefaultRequiredMessage). An existing answer that does
// not match validation_regex gets validation_text appended even when that
// text is empty, so the joined error may end in a blank message.
func (e *Engine) ValidateOne(question model.Question, answer model.Answer, ok bool) model.ValidationResult {
	var messages []string

	if question.IsRequired && (!ok || answer.Value == "") {
		msg := question.ValidationText
		if msg == "" {
			msg = DefaultRequiredMessage
		}
		messages = append(messages, msg)
	}

	if ok && question.ValidationRegex != "" && !e.matches(question, answer.Value) {
		messages = append(messages, question.ValidationText)
	}

	return model.ValidationResult{
		QuestionID: question.ID,
		Error:      strings.Join(messages, MessageSeparator),
	}
}

// ValidateAll validates every active question of sections in presentation
// order. Inactive questions produce no result.
func (e *Engine) ValidateAll(sections []model.Section, lookup answers.Lookup) Report {
	report := Report{Valid: true}
	for _, question := range visibility.Filter(sections, lookup, e.resolver) {
		var (
			answer model.Answer
			ok     bool
		)
		if lookup != nil {
			answer, ok = lookup.Get(question.ID)
		}
		result := e.ValidateOne(question, answer, ok)
		if result.Error != "" {
			report.Valid = false
		}
		report.Results = append(report.Results, result)
	}
	return report
}

func (e *Engine) matches(question model.Question, value string) bool {
	re, err := e.pattern(question.ValidationRegex)
	if err != nil {
		return false
	}
	return re.MatchString(value)
}

func (e *Engine) pattern(expr string) (*regexp.Regexp, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.patterns[expr]; ok {
		return entry.re, entry.err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		e.logger.Warn("validation: invalid pattern, answers will not match",
			"pattern", expr,
			"error", err,
		)
	}
	e.patterns[expr] = &compiled{re: re, err: err}
	return re, err
}

var defaultEngine = New()

// ValidateOne validates with a shared default Engine.
func ValidateOne(question model.Question, answer model.Answer, ok bool) model.ValidationResult {
	return defaultEngine.ValidateOne(question, answer, ok)
}

// ValidateAll validates with a shared default Engine.
func ValidateAll(sections []model.Section, lookup answers.Lookup) Report {
	return defaultEngine.ValidateAll(sections, lookup)
}

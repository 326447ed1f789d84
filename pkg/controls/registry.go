package controls

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-regform/pkg/model"
)

// Kind identifies the control a question is answered with.
type Kind string

// Built-in control kinds exposed by the registry.
const (
	KindText          Kind = "text"
	KindCheckbox      Kind = "checkbox"
	KindTextArea      Kind = "textarea"
	KindSelect        Kind = "select"
	KindMultiCheckbox Kind = "multi-checkbox"
	KindFile          Kind = "file"
	KindDate          Kind = "date"
	// KindUnknown is returned for question types no matcher claims. Front
	// ends must render Control.Warning for it instead of dropping the
	// question.
	KindUnknown Kind = "unknown"
)

// TextAreaRows is the default height of long-text controls.
const TextAreaRows = 5

// Matcher decides whether a control kind should handle the supplied question.
type Matcher func(question model.Question) bool

type rule struct {
	kind     Kind
	priority int
	match    Matcher
	order    int
}

// Control describes how one question should be presented.
type Control struct {
	Kind        Kind
	QuestionID  int
	Label       string
	Headline    string
	Placeholder string
	Required    bool
	Options     model.Options
	Rows        int
	Warning     string
}

// Registry selects controls for questions based on registered matchers.
// Higher priority wins; ties fall back to registration order. A question no
// matcher claims resolves to KindUnknown.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with a matcher for every known question
// type registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher for kind with the provided priority. Built-ins use
// priority 10; register above that to override one.
func (r *Registry) Register(kind Kind, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := Kind(strings.TrimSpace(string(kind)))
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		kind:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the control kind for question, or KindUnknown.
func (r *Registry) Resolve(question model.Question) Kind {
	if r == nil {
		return KindUnknown
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(question) {
			return entry.kind
		}
	}
	return KindUnknown
}

// Describe resolves the control for question and fills in its presentation
// attributes.
func (r *Registry) Describe(question model.Question) Control {
	control := Control{
		Kind:        r.Resolve(question),
		QuestionID:  question.ID,
		Label:       question.Description,
		Headline:    question.Headline,
		Placeholder: question.Placeholder,
		Required:    question.IsRequired,
	}
	switch control.Kind {
	case KindSelect, KindMultiCheckbox:
		control.Options = append(model.Options(nil), question.Options...)
	case KindTextArea:
		control.Rows = TextAreaRows
	case KindUnknown:
		control.Warning = UnknownWarning(question.Type)
	}
	return control
}

// UnknownWarning is the message shown in place of a question whose type has
// no control.
func UnknownWarning(questionType model.QuestionType) string {
	return fmt.Sprintf("WARNING: No control found for type %s!", questionType)
}

func typeIs(want model.QuestionType) Matcher {
	return func(question model.Question) bool {
		return question.Type.Normalize() == want
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(KindText, 10, typeIs(model.QuestionTypeShortText))
	// single-choice questions are a yes/no tick box answered "0" or "1".
	r.Register(KindCheckbox, 10, typeIs(model.QuestionTypeSingleChoice))
	r.Register(KindTextArea, 10, typeIs(model.QuestionTypeLongText))
	r.Register(KindSelect, 10, typeIs(model.QuestionTypeMultiChoice))
	r.Register(KindMultiCheckbox, 10, typeIs(model.QuestionTypeMultiCheckbox))
	r.Register(KindFile, 10, typeIs(model.QuestionTypeFile))
	r.Register(KindDate, 10, typeIs(model.QuestionTypeDate))
}

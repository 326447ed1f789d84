package visibility

import (
	"github.com/goliatone/go-regform/pkg/answers"
	"github.com/goliatone/go-regform/pkg/model"
)

// Resolver decides whether a question is currently active, meaning visible
// and therefore subject to validation and submission.
type Resolver interface {
	IsActive(question model.Question, lookup answers.Lookup) bool
}

// ResolverFunc adapts a function into a Resolver.
type ResolverFunc func(question model.Question, lookup answers.Lookup) bool

// IsActive delegates to the underlying function.
func (fn ResolverFunc) IsActive(question model.Question, lookup answers.Lookup) bool {
	return fn(question, lookup)
}

// Default is the dependency rule used by registration forms.
var Default Resolver = ResolverFunc(IsActive)

// IsActive reports whether question should be shown. Questions without a
// dependency are always active. A dependent question is active only when the
// governing question has an answer whose value differs from
// HideForDependentValue; with no governing answer it stays hidden.
func IsActive(question model.Question, lookup answers.Lookup) bool {
	target, ok := question.DependsOn()
	if !ok {
		return true
	}
	if lookup == nil {
		return false
	}
	answer, ok := lookup.Get(target)
	if !ok {
		return false
	}
	return answer.Value != question.HideForDependentValue
}

// Filter returns the active questions of sections in presentation order.
func Filter(sections []model.Section, lookup answers.Lookup, resolver Resolver) []model.Question {
	if resolver == nil {
		resolver = Default
	}
	var out []model.Question
	for _, section := range sections {
		for _, question := range section.Questions {
			if resolver.IsActive(question, lookup) {
				out = append(out, question)
			}
		}
	}
	return out
}

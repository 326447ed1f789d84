package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regform/pkg/answers"
	"github.com/goliatone/go-regform/pkg/model"
)

func intPtr(v int) *int { return &v }

func TestValidateOne_RequiredWithoutAnswer(t *testing.T) {
	q := model.Question{ID: 1, IsRequired: true}
	got := ValidateOne(q, model.Answer{}, false)
	if got.Error != DefaultRequiredMessage {
		t.Fatalf("expected default message, got %q", got.Error)
	}

	q.ValidationText = "Tell us your name"
	got = ValidateOne(q, model.Answer{QuestionID: 1, Value: ""}, true)
	if got.Error != "Tell us your name" {
		t.Fatalf("expected custom message for empty value, got %q", got.Error)
	}
}

func TestValidateOne_RegexMatchIsValid(t *testing.T) {
	q := model.Question{ID: 2, ValidationRegex: `^[0-9]{4}$`, ValidationText: "Four digits"}
	for _, value := range []string{"1234", "0000", "9876"} {
		got := ValidateOne(q, model.Answer{QuestionID: 2, Value: value}, true)
		if got.Error != "" {
			t.Fatalf("value %q matches pattern, got error %q", value, got.Error)
		}
	}

	got := ValidateOne(q, model.Answer{QuestionID: 2, Value: "12a"}, true)
	if got.Error != "Four digits" {
		t.Fatalf("expected regex message, got %q", got.Error)
	}
}

func TestValidateOne_RegexIsUnanchoredSearch(t *testing.T) {
	q := model.Question{ID: 3, ValidationRegex: `@`, ValidationText: "Needs @"}
	got := ValidateOne(q, model.Answer{QuestionID: 3, Value: "me@example.org"}, true)
	if got.Error != "" {
		t.Fatalf("expected unanchored match, got %q", got.Error)
	}
}

func TestValidateOne_NoAnswerSkipsRegex(t *testing.T) {
	q := model.Question{ID: 4, ValidationRegex: `^x$`, ValidationText: "Only x"}
	got := ValidateOne(q, model.Answer{}, false)
	if got.Error != "" {
		t.Fatalf("optional unanswered question must be valid, got %q", got.Error)
	}
}

func TestValidateOne_ConcatenatesMessages(t *testing.T) {
	q := model.Question{ID: 5, IsRequired: true, ValidationRegex: `^.+$`, ValidationText: "Bad"}
	got := ValidateOne(q, model.Answer{QuestionID: 5, Value: ""}, true)
	if got.Error != "Bad; Bad" {
		t.Fatalf("expected both messages, got %q", got.Error)
	}
}

func TestValidateOne_RegexWithoutTextKeepsBlankMessage(t *testing.T) {
	q := model.Question{ID: 6, IsRequired: true, ValidationRegex: `^.+$`}
	got := ValidateOne(q, model.Answer{QuestionID: 6, Value: ""}, true)
	if got.Error != DefaultRequiredMessage+"; " {
		t.Fatalf("expected trailing blank message, got %q", got.Error)
	}

	optional := model.Question{ID: 7, ValidationRegex: `^\d+$`}
	got = ValidateOne(optional, model.Answer{QuestionID: 7, Value: "abc"}, true)
	if got.Error != "" {
		t.Fatalf("single blank message joins to empty string, got %q", got.Error)
	}
}

func TestValidateOne_InvalidPatternNeverMatches(t *testing.T) {
	q := model.Question{ID: 8, ValidationRegex: `([`, ValidationText: "Broken"}
	got := New().ValidateOne(q, model.Answer{QuestionID: 8, Value: "anything"}, true)
	if got.Error != "Broken" {
		t.Fatalf("expected invalid pattern to fail, got %q", got.Error)
	}
}

func TestValidateAll_SkipsInactiveAndIsIdempotent(t *testing.T) {
	sections := []model.Section{
		{ID: 1, Questions: []model.Question{
			{ID: 1, IsRequired: true},
			{ID: 2, IsRequired: true, DependsOnQuestionID: intPtr(1), HideForDependentValue: "no"},
		}},
		{ID: 2, Questions: []model.Question{
			{ID: 3, ValidationRegex: `^\d+$`, ValidationText: "Numbers only"},
		}},
	}
	store := answers.NewStore()
	engine := New()

	first := engine.ValidateAll(sections, store)
	want := Report{
		Results: []model.ValidationResult{
			{QuestionID: 1, Error: DefaultRequiredMessage},
			{QuestionID: 3, Error: ""},
		},
		Valid: false,
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	second := engine.ValidateAll(sections, store)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("validateAll is not idempotent (-first +second):\n%s", diff)
	}

	store.Upsert(1, "yes")
	store.Upsert(3, "42")
	report := engine.ValidateAll(sections, store)
	if report.Valid {
		t.Fatalf("question 2 is now active and unanswered")
	}
	if msg, ok := report.ErrorFor(2); !ok || msg != DefaultRequiredMessage {
		t.Fatalf("expected required error for question 2, got %q (%v)", msg, ok)
	}
	if len(report.Invalid()) != 1 {
		t.Fatalf("expected one invalid result, got %d", len(report.Invalid()))
	}

	store.Upsert(1, "no")
	report = engine.ValidateAll(sections, store)
	if !report.Valid {
		t.Fatalf("expected valid once dependent question hides: %#v", report.Results)
	}
	if _, ok := report.ErrorFor(2); ok {
		t.Fatalf("hidden question must not have a result")
	}
}

package model

import "strings"

// QuestionType names the control a question is answered with.
type QuestionType string

const (
	QuestionTypeShortText     QuestionType = "short-text"
	QuestionTypeSingleChoice  QuestionType = "single-choice"
	QuestionTypeLongText      QuestionType = "long-text"
	QuestionTypeMultiChoice   QuestionType = "multi-choice"
	QuestionTypeMultiCheckbox QuestionType = "multi-checkbox"
	QuestionTypeFile          QuestionType = "file"
	QuestionTypeDate          QuestionType = "date"
)

// Normalize trims the raw type and folds known aliases ("long_text") onto
// their canonical name. Unknown values are returned trimmed but otherwise
// untouched so callers can surface them.
func (t QuestionType) Normalize() QuestionType {
	trimmed := QuestionType(strings.TrimSpace(string(t)))
	if trimmed == "long_text" {
		return QuestionTypeLongText
	}
	return trimmed
}

// Known reports whether the type maps onto a supported control.
func (t QuestionType) Known() bool {
	switch t.Normalize() {
	case QuestionTypeShortText,
		QuestionTypeSingleChoice,
		QuestionTypeLongText,
		QuestionTypeMultiChoice,
		QuestionTypeMultiCheckbox,
		QuestionTypeFile,
		QuestionTypeDate:
		return true
	default:
		return false
	}
}

func (t QuestionType) String() string {
	return string(t)
}

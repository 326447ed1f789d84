package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Option is a single {value,label} entry offered by choice questions.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options decodes either a JSON array of options or a JSON string holding
// that array; the registration API stores option lists as text.
type Options []Option

// UnmarshalJSON accepts `[{...}]`, `"[{...}]"`, `""` and `null`.
func (o *Options) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*o = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return fmt.Errorf("model: decode options string: %w", err)
		}
		encoded = strings.TrimSpace(encoded)
		if encoded == "" {
			*o = nil
			return nil
		}
		data = []byte(encoded)
	}
	var list []Option
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("model: decode options: %w", err)
	}
	*o = list
	return nil
}

// LabelFor returns the label of the option matching value.
func (o Options) LabelFor(value string) (string, bool) {
	for _, opt := range o {
		if opt.Value == value {
			return opt.Label, true
		}
	}
	return "", false
}

// Question is a single form field definition. Questions are read-only once a
// form has been loaded.
type Question struct {
	ID                    int          `json:"id"`
	Type                  QuestionType `json:"type"`
	Order                 int          `json:"order"`
	IsRequired            bool         `json:"is_required"`
	ValidationRegex       string       `json:"validation_regex,omitempty"`
	ValidationText        string       `json:"validation_text,omitempty"`
	DependsOnQuestionID   *int         `json:"depends_on_question_id,omitempty"`
	HideForDependentValue string       `json:"hide_for_dependent_value,omitempty"`
	Options               Options      `json:"options,omitempty"`
	Placeholder           string       `json:"placeholder,omitempty"`
	Description           string       `json:"description,omitempty"`
	Headline              string       `json:"headline,omitempty"`
}

// DependsOn reports the governing question id, if any.
func (q Question) DependsOn() (int, bool) {
	if q.DependsOnQuestionID == nil {
		return 0, false
	}
	return *q.DependsOnQuestionID, true
}

// Section groups questions displayed together.
type Section struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Order       int        `json:"order"`
	Questions   []Question `json:"registration_questions"`
}

// Form is the registration form schema returned by the server.
type Form struct {
	ID       int       `json:"id"`
	EventID  int       `json:"event_id,omitempty"`
	Sections []Section `json:"registration_sections"`
}

// Answer is the user-supplied value for one question. Values are always
// strings; booleans travel as "0"/"1".
type Answer struct {
	QuestionID int    `json:"registration_question_id"`
	Value      string `json:"value"`
}

// ValidationResult carries the verdict for one active question. An empty
// Error means the answer is valid.
type ValidationResult struct {
	QuestionID int    `json:"registration_question_id"`
	Error      string `json:"error"`
}

// Valid reports whether the result carries no error.
func (r ValidationResult) Valid() bool {
	return r.Error == ""
}

// Offer is the subset of the offer payload the engine relies on.
type Offer struct {
	ID                 int    `json:"id"`
	UserID             int    `json:"user_id,omitempty"`
	EventID            int    `json:"event_id,omitempty"`
	OfferDate          string `json:"offer_date,omitempty"`
	ExpiryDate         string `json:"expiry_date,omitempty"`
	PaymentRequired    bool   `json:"payment_required,omitempty"`
	TravelAward        bool   `json:"travel_award,omitempty"`
	AccommodationAward bool   `json:"accommodation_award,omitempty"`
}

// RegistrationState identifies what a submission refers to. RegistrationID
// is unknown for a first registration and known for an update.
type RegistrationState struct {
	RegistrationID     RegistrationID `json:"registration_id"`
	OfferID            int            `json:"offer_id"`
	RegistrationFormID int            `json:"registration_form_id"`
}

// Submission is the payload sent to the submit collaborator.
type Submission struct {
	RegistrationID     RegistrationID `json:"registration_id"`
	OfferID            int            `json:"offer_id"`
	RegistrationFormID int            `json:"registration_form_id"`
	Answers            []Answer       `json:"answers"`
}

// PrepareSections drops sections without questions and sorts the remainder
// (and each section's questions) ascending by order. The input is not
// modified.
func PrepareSections(sections []Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, section := range sections {
		if len(section.Questions) == 0 {
			continue
		}
		questions := append([]Question(nil), section.Questions...)
		sort.SliceStable(questions, func(i, j int) bool {
			return questions[i].Order < questions[j].Order
		})
		section.Questions = questions
		out = append(out, section)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// Questions flattens sections into presentation order.
func Questions(sections []Section) []Question {
	var out []Question
	for _, section := range sections {
		out = append(out, section.Questions...)
	}
	return out
}

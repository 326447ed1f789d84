package render

import (
	"fmt"

	"github.com/goliatone/go-regform/pkg/controls"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/orchestrator"
)

// BannerKind names a page-level message. Each kind is rendered from the
// template of the same name.
type BannerKind string

const (
	BannerLoading           BannerKind = "loading"
	BannerLoadError         BannerKind = "load_error"
	BannerSuccess           BannerKind = "success"
	BannerSubmitFailure     BannerKind = "submit_failure"
	BannerAlreadyRegistered BannerKind = "already_registered"
	BannerValidation        BannerKind = "validation"
	BannerNoForm            BannerKind = "no_form"
)

// Level is the severity a front end styles a banner with.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelDanger  Level = "danger"
)

// ChangeAnswersLabel is the affordance offered after a successful submit.
const ChangeAnswersLabel = "Change your answers"

// Banner is a rendered page-level message.
type Banner struct {
	Kind  BannerKind
	Level Level
	Text  string
}

func (k BannerKind) level() Level {
	switch k {
	case BannerSuccess, BannerAlreadyRegistered:
		return LevelSuccess
	case BannerLoadError, BannerSubmitFailure, BannerValidation, BannerNoForm:
		return LevelDanger
	default:
		return LevelInfo
	}
}

// BannerKinds lists, in display order, the banners a snapshot calls for. A
// loading or failed load shows exactly one banner; a redirected session shows
// none.
func BannerKinds(snap orchestrator.Snapshot) []BannerKind {
	switch snap.Status {
	case orchestrator.StatusLoading:
		return []BannerKind{BannerLoading}
	case orchestrator.StatusError:
		return []BannerKind{BannerLoadError}
	case orchestrator.StatusLoaded:
	default:
		return nil
	}

	var kinds []BannerKind
	if snap.Succeeded() {
		kinds = append(kinds, BannerSuccess)
	}
	if snap.Failed() {
		kinds = append(kinds, BannerSubmitFailure)
	}
	if snap.AlreadyRegistered() {
		kinds = append(kinds, BannerAlreadyRegistered)
	}
	if snap.ShowValidationBanner() && !snap.Succeeded() && len(snap.Sections) > 0 {
		kinds = append(kinds, BannerValidation)
	}
	if snap.NoFormAvailable() {
		kinds = append(kinds, BannerNoForm)
	}
	return kinds
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithEngine supplies a preconfigured template engine.
func WithEngine(engine *Engine) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithEventName names the event in the success banner.
func WithEventName(name string) Option {
	return func(r *Renderer) {
		r.eventName = name
	}
}

// WithInvitationURL links the invitation letter request in the success
// banner.
func WithInvitationURL(url string) Option {
	return func(r *Renderer) {
		r.invitationURL = url
	}
}

// Renderer turns session snapshots into display text.
type Renderer struct {
	engine        *Engine
	eventName     string
	invitationURL string
}

// New constructs a Renderer. Without WithEngine the built-in templates are
// used.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.engine == nil {
		engine, err := NewEngine()
		if err != nil {
			return nil, err
		}
		r.engine = engine
	}
	return r, nil
}

// Banners renders every banner the snapshot calls for.
func (r *Renderer) Banners(snap orchestrator.Snapshot) ([]Banner, error) {
	kinds := BannerKinds(snap)
	if len(kinds) == 0 {
		return nil, nil
	}
	data := map[string]any{
		"event_name":     r.eventName,
		"invitation_url": r.invitationURL,
		"change_label":   ChangeAnswersLabel,
	}
	banners := make([]Banner, 0, len(kinds))
	for _, kind := range kinds {
		switch kind {
		case BannerLoadError:
			data["message"] = snap.LoadError
		case BannerSubmitFailure:
			data["message"] = snap.SubmitError
		}
		text, err := r.engine.RenderTemplate(string(kind), data)
		if err != nil {
			return nil, fmt.Errorf("render: banner %s: %w", kind, err)
		}
		banners = append(banners, Banner{Kind: kind, Level: kind.level(), Text: text})
	}
	return banners, nil
}

// Section renders a section heading with its description as plain text.
func (r *Renderer) Section(section model.Section) (string, error) {
	return r.engine.RenderTemplate("section", map[string]any{
		"name":        PlainText(section.Name),
		"description": PlainText(section.Description),
	})
}

// Question renders the prompt text for a control, including its error when
// one is set. Unknown controls render their warning instead.
func (r *Renderer) Question(control controls.Control, errorText string) (string, error) {
	if control.Kind == controls.KindUnknown {
		return control.Warning, nil
	}
	return r.engine.RenderTemplate("question", map[string]any{
		"headline": PlainText(control.Headline),
		"label":    PlainText(control.Label),
		"required": control.Required,
		"error":    errorText,
	})
}

package tui

import (
	"log/slog"

	"github.com/goliatone/go-regform/pkg/controls"
	"github.com/goliatone/go-regform/pkg/render"
)

// Theme captures message prefixes per banner level.
type Theme struct {
	InfoPrefix    string
	SuccessPrefix string
	ErrorPrefix   string
}

func (t Theme) prefix(level render.Level) string {
	switch level {
	case render.LevelSuccess:
		return t.SuccessPrefix
	case render.LevelDanger:
		return t.ErrorPrefix
	default:
		return t.InfoPrefix
	}
}

// DefaultTheme is used when WithTheme is not supplied.
var DefaultTheme = Theme{InfoPrefix: "» ", SuccessPrefix: "✔ ", ErrorPrefix: "✘ "}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithControls overrides the control registry.
func WithControls(registry *controls.Registry) Option {
	return func(r *Runner) {
		if registry != nil {
			r.controls = registry
		}
	}
}

// WithTextRenderer overrides how banners and prompts are worded.
func WithTextRenderer(text *render.Renderer) Option {
	return func(r *Runner) {
		if text != nil {
			r.text = text
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

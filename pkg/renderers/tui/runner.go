package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-regform/pkg/answers"
	"github.com/goliatone/go-regform/pkg/controls"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/orchestrator"
	"github.com/goliatone/go-regform/pkg/render"
)

// Prompt help shown for controls that accept free text with a convention.
const (
	FileHelp = "Enter a file reference (path or URL)."
	DateHelp = "Enter a date as YYYY-MM-DD."
)

// Runner drives a registration session from the terminal.
type Runner struct {
	driver   PromptDriver
	controls *controls.Registry
	text     *render.Renderer
	logger   *slog.Logger
	theme    Theme
}

// New constructs a Runner with defaults (survey driver, built-in controls and
// templates).
func New(options ...Option) (*Runner, error) {
	r := &Runner{
		controls: controls.NewRegistry(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		theme:    DefaultTheme,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	if r.text == nil {
		text, err := render.New()
		if err != nil {
			return nil, fmt.Errorf("tui: text renderer: %w", err)
		}
		r.text = text
	}
	return r, nil
}

// Run loads the session and walks the user through it. Every active question
// is prompted once; after a rejected submit only the questions with errors are
// asked again, and Run stops with ErrUnanswerable when none of them has a
// control. A failed submit may be retried with the same answers, and a
// successful one may be reopened to change answers. Run returns the last
// submit outcome once the user is done.
func (r *Runner) Run(ctx context.Context, session *orchestrator.Session) (orchestrator.SubmitOutcome, error) {
	if ctx == nil {
		return orchestrator.SubmitOutcome{}, errors.New("tui: context is required")
	}
	if session == nil {
		return orchestrator.SubmitOutcome{}, errors.New("tui: session is required")
	}

	if err := session.Load(ctx); err != nil {
		if showErr := r.showBanners(ctx, session.Snapshot()); showErr != nil {
			r.logger.Debug("tui: show banners", "error", showErr)
		}
		return orchestrator.SubmitOutcome{}, err
	}
	if err := r.ready(ctx, session); err != nil {
		return orchestrator.SubmitOutcome{}, err
	}

	var last orchestrator.SubmitOutcome
	full, fixing := true, false
	for {
		asked, err := r.promptAll(ctx, session, full)
		if err != nil {
			return last, err
		}
		if fixing && asked == 0 {
			return last, ErrUnanswerable
		}

		outcome, err := session.Submit(ctx)
		last = outcome
		if err != nil {
			return outcome, err
		}
		if err := r.showBanners(ctx, session.Snapshot()); err != nil {
			return outcome, err
		}

		switch outcome.State {
		case orchestrator.SubmitInvalid:
			full, fixing = false, true
		case orchestrator.SubmitFailure:
			retry, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Submit again?", Default: true})
			if err != nil || !retry {
				return outcome, err
			}
			full, fixing = false, false
		case orchestrator.SubmitSuccess:
			change, err := r.driver.Confirm(ctx, ConfirmConfig{Message: render.ChangeAnswersLabel + "?"})
			if err != nil || !change {
				return outcome, err
			}
			if err := session.Reset(ctx); err != nil {
				return outcome, err
			}
			if err := r.ready(ctx, session); err != nil {
				return outcome, err
			}
			full, fixing = true, false
		default:
			return outcome, fmt.Errorf("tui: unexpected submit state %q", outcome.State)
		}
	}
}

// ready shows the banners of a freshly loaded session and reports whether
// there is anything to answer.
func (r *Runner) ready(ctx context.Context, session *orchestrator.Session) error {
	snap := session.Snapshot()
	if err := r.showBanners(ctx, snap); err != nil {
		return err
	}
	if snap.NoFormAvailable() {
		return ErrNoForm
	}
	return nil
}

// promptAll prompts the active questions, or only those with errors when
// full is false, and reports how many could actually be answered.
func (r *Runner) promptAll(ctx context.Context, session *orchestrator.Session, full bool) (int, error) {
	asked := 0
	for _, section := range session.Snapshot().Sections {
		headed := false
		for _, question := range section.Questions {
			// Visibility and errors move as answers change, so re-read each time.
			snap := session.Snapshot()
			if !snap.Active(question) {
				continue
			}
			errText := snap.ErrorFor(question.ID)
			if !full && errText == "" {
				continue
			}
			if !headed {
				heading, err := r.text.Section(section)
				if err != nil {
					return asked, err
				}
				if err := r.driver.Info(ctx, heading); err != nil {
					return asked, err
				}
				headed = true
			}
			answered, err := r.promptQuestion(ctx, session, snap, question, errText)
			if err != nil {
				return asked, err
			}
			if answered {
				asked++
			}
		}
	}
	return asked, nil
}

func (r *Runner) promptQuestion(ctx context.Context, session *orchestrator.Session, snap orchestrator.Snapshot, question model.Question, errText string) (bool, error) {
	control := r.controls.Describe(question)
	message, err := r.text.Question(control, errText)
	if err != nil {
		return false, err
	}
	current := ""
	if answer, ok := snap.Get(question.ID); ok {
		current = answer.Value
	}
	r.logger.Debug("tui: prompting question",
		"question_id", question.ID,
		"control", string(control.Kind),
	)

	var value any
	switch control.Kind {
	case controls.KindUnknown:
		r.logger.Warn("tui: question has no control", "question_id", question.ID, "type", question.Type.String())
		return false, r.driver.Info(ctx, r.theme.ErrorPrefix+message)
	case controls.KindCheckbox:
		value, err = r.driver.Confirm(ctx, ConfirmConfig{
			Message: message,
			Default: current == "1",
			Help:    control.Placeholder,
		})
	case controls.KindTextArea:
		value, err = r.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: current,
			Help:    control.Placeholder,
		})
	case controls.KindSelect:
		if len(control.Options) == 0 {
			value, err = r.input(ctx, message, current, control.Placeholder)
			break
		}
		value, err = r.selectOne(ctx, message, current, control)
	case controls.KindMultiCheckbox:
		value, err = r.selectMany(ctx, message, current, control)
	case controls.KindFile:
		value, err = r.input(ctx, message, current, FileHelp)
	case controls.KindDate:
		value, err = r.input(ctx, message, current, DateHelp)
	default:
		value, err = r.input(ctx, message, current, control.Placeholder)
	}
	if err != nil {
		return false, err
	}
	return true, session.SetAnswer(question.ID, value)
}

func (r *Runner) input(ctx context.Context, message, current, help string) (string, error) {
	return r.driver.Input(ctx, InputConfig{Message: message, Default: current, Help: help})
}

func (r *Runner) selectOne(ctx context.Context, message, current string, control controls.Control) (string, error) {
	labels, defaults := optionLabels(control.Options, []string{current})
	defaultIndex := -1
	if len(defaults) > 0 {
		defaultIndex = defaults[0]
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      message,
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         control.Placeholder,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(control.Options) {
		return "", fmt.Errorf("tui: selection %d out of range for question %d", idx, control.QuestionID)
	}
	return control.Options[idx].Value, nil
}

func (r *Runner) selectMany(ctx context.Context, message, current string, control controls.Control) ([]string, error) {
	labels, defaults := optionLabels(control.Options, answers.Split(current))
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  message,
		Options:  labels,
		Defaults: defaults,
		Help:     control.Placeholder,
	})
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(control.Options) {
			return nil, fmt.Errorf("tui: selection %d out of range for question %d", idx, control.QuestionID)
		}
		values = append(values, control.Options[idx].Value)
	}
	return values, nil
}

// optionLabels returns display labels for options plus the indices of the
// options whose values appear in selected.
func optionLabels(options model.Options, selected []string) ([]string, []int) {
	chosen := make(map[string]struct{}, len(selected))
	for _, value := range selected {
		chosen[value] = struct{}{}
	}
	labels := make([]string, len(options))
	var defaults []int
	for i, opt := range options {
		label := render.PlainText(opt.Label)
		if label == "" {
			label = opt.Value
		}
		labels[i] = label
		if _, ok := chosen[opt.Value]; ok {
			defaults = append(defaults, i)
		}
	}
	return labels, defaults
}

func (r *Runner) showBanners(ctx context.Context, snap orchestrator.Snapshot) error {
	banners, err := r.text.Banners(snap)
	if err != nil {
		return err
	}
	for _, banner := range banners {
		if err := r.driver.Info(ctx, r.theme.prefix(banner.Level)+banner.Text); err != nil {
			return err
		}
	}
	return nil
}

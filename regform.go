package regform

import (
	"context"
	"fmt"

	"github.com/goliatone/go-regform/pkg/answers"
	"github.com/goliatone/go-regform/pkg/client"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/orchestrator"
	"github.com/goliatone/go-regform/pkg/validation"
)

// Session aliases orchestrator.Session for callers of the top-level module.
type Session = orchestrator.Session

// Snapshot is the state handed to listeners after every transition.
type Snapshot = orchestrator.Snapshot

// Collaborators is the remote surface a session depends on.
type Collaborators = client.Collaborators

// NewSession exposes the session constructor from the top-level module.
func NewSession(collaborators Collaborators, options ...orchestrator.Option) (*Session, error) {
	return orchestrator.New(collaborators, options...)
}

// NewHTTPSession builds a session talking to the registration API at
// baseURL.
func NewHTTPSession(baseURL string, httpOptions []client.HTTPOption, options ...orchestrator.Option) (*Session, error) {
	api, err := client.NewHTTPClient(baseURL, httpOptions...)
	if err != nil {
		return nil, fmt.Errorf("regform: %w", err)
	}
	return orchestrator.New(api, options...)
}

// NewFixtureSession builds a session served from a YAML or JSON fixture
// file, for demos and offline testing.
func NewFixtureSession(path string, options ...orchestrator.Option) (*Session, *client.FixtureClient, error) {
	fixture, err := client.LoadFixtureFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("regform: %w", err)
	}
	session, err := orchestrator.New(fixture, options...)
	if err != nil {
		return nil, nil, err
	}
	return session, fixture, nil
}

// Validate checks answers against a form without a session. Sections are
// prepared (empty ones dropped, ordered) first.
func Validate(ctx context.Context, form model.Form, given []model.Answer) (validation.Report, error) {
	if err := ctx.Err(); err != nil {
		return validation.Report{}, err
	}
	sections := model.PrepareSections(form.Sections)
	return validation.ValidateAll(sections, answers.NewStore(given...)), nil
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-regform/pkg/model"
)

// Fixture describes canned responses for every collaborator call. Empty
// error strings mean success.
type Fixture struct {
	Offer      *model.Offer `json:"offer"`
	OfferError string       `json:"offer_error"`

	Form       model.Form `json:"form"`
	FormError  string     `json:"form_error"`
	FormStatus int        `json:"form_status"`

	Prior      *PriorResponse `json:"prior"`
	PriorError string         `json:"prior_error"`

	SubmitStatus         int                  `json:"submit_status"`
	SubmitError          string               `json:"submit_error"`
	SubmitRegistrationID model.RegistrationID `json:"submit_registration_id"`
}

// Submitted records a SubmitResponse call served by a FixtureClient.
type Submitted struct {
	Payload  model.Submission
	IsUpdate bool
}

// FixtureClient serves a Fixture. It is safe for concurrent use.
type FixtureClient struct {
	mu        sync.Mutex
	fixture   Fixture
	submitted []Submitted
}

var _ Collaborators = (*FixtureClient)(nil)

// NewFixtureClient wraps an in-memory fixture.
func NewFixtureClient(fixture Fixture) *FixtureClient {
	return &FixtureClient{fixture: fixture}
}

// LoadFixtureFile reads a fixture from a JSON or YAML file on disk.
func LoadFixtureFile(path string) (*FixtureClient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("client: read fixture %s: %w", path, err)
	}
	fixture, err := ParseFixture(data, path)
	if err != nil {
		return nil, err
	}
	return NewFixtureClient(fixture), nil
}

// LoadFixtureFS reads a fixture from fsys.
func LoadFixtureFS(fsys fs.FS, path string) (*FixtureClient, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("client: read fixture %s: %w", path, err)
	}
	fixture, err := ParseFixture(data, path)
	if err != nil {
		return nil, err
	}
	return NewFixtureClient(fixture), nil
}

// ParseFixture decodes JSON, falling back to YAML. YAML documents are
// converted to JSON first so the wire decoders (registration_id as false,
// options as an encoded string) apply to both formats.
func ParseFixture(data []byte, source string) (Fixture, error) {
	var fixture Fixture
	if len(bytes.TrimSpace(data)) == 0 {
		return Fixture{}, fmt.Errorf("client: fixture %s is empty", source)
	}

	if err := json.Unmarshal(data, &fixture); err == nil {
		return fixture, nil
	}

	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return Fixture{}, fmt.Errorf("client: parse fixture %s: invalid JSON or YAML: %w", source, err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return Fixture{}, fmt.Errorf("client: convert fixture %s: %w", source, err)
	}
	fixture = Fixture{}
	if err := json.Unmarshal(asJSON, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("client: decode fixture %s: %w", source, err)
	}
	return fixture, nil
}

// GetOffer returns the fixture offer.
func (c *FixtureClient) GetOffer(ctx context.Context, _ int) (OfferResult, error) {
	if err := ctx.Err(); err != nil {
		return OfferResult{Error: err.Error()}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fixture.OfferError != "" {
		return OfferResult{Error: c.fixture.OfferError}, nil
	}
	if c.fixture.Offer == nil {
		return OfferResult{}, nil
	}
	offer := *c.fixture.Offer
	return OfferResult{Offer: &offer}, nil
}

// GetRegistrationForm returns the fixture form.
func (c *FixtureClient) GetRegistrationForm(ctx context.Context, _, _ int) (FormResult, error) {
	if err := ctx.Err(); err != nil {
		return FormResult{Error: err.Error()}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	status := c.fixture.FormStatus
	if status == 0 {
		status = 200
		if c.fixture.FormError != "" {
			status = 500
		}
	}
	if c.fixture.FormError != "" {
		return FormResult{Error: c.fixture.FormError, StatusCode: status}, nil
	}
	return FormResult{Form: c.fixture.Form, StatusCode: status}, nil
}

// GetRegistrationResponse returns the fixture prior answers.
func (c *FixtureClient) GetRegistrationResponse(ctx context.Context) (ResponseResult, error) {
	if err := ctx.Err(); err != nil {
		return ResponseResult{Error: err.Error()}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fixture.PriorError != "" {
		return ResponseResult{Error: c.fixture.PriorError}, nil
	}
	if c.fixture.Prior == nil {
		return ResponseResult{Error: "no registration response"}, nil
	}
	prior := PriorResponse{
		RegistrationID: c.fixture.Prior.RegistrationID,
		Answers:        append([]model.Answer(nil), c.fixture.Prior.Answers...),
	}
	return ResponseResult{Form: prior}, nil
}

// SubmitResponse records the payload and answers with the fixture status. A
// successful create makes later GetRegistrationResponse calls return the
// submitted answers.
func (c *FixtureClient) SubmitResponse(ctx context.Context, payload model.Submission, isUpdate bool) (SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return SubmitResult{Error: err.Error()}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Answers = append([]model.Answer(nil), payload.Answers...)
	c.submitted = append(c.submitted, Submitted{Payload: payload, IsUpdate: isUpdate})

	status := c.fixture.SubmitStatus
	if status == 0 {
		status = 201
		if isUpdate {
			status = 200
		}
	}
	result := SubmitResult{Error: strings.TrimSpace(c.fixture.SubmitError), Form: SubmitStatus{Status: status}}
	if !result.Succeeded() {
		return result, nil
	}

	id := payload.RegistrationID
	if !id.Known() {
		id = c.fixture.SubmitRegistrationID
	}
	result.Form.RegistrationID = id
	c.fixture.Prior = &PriorResponse{RegistrationID: id, Answers: payload.Answers}
	c.fixture.PriorError = ""
	return result, nil
}

// Submissions returns every payload received so far.
func (c *FixtureClient) Submissions() []Submitted {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Submitted(nil), c.submitted...)
}

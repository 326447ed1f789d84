package testsupport

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regform/pkg/client"
	"github.com/goliatone/go-regform/pkg/model"
)

// Stub implements client.Collaborators with scripted results. Zero-value
// fields produce zero-value results; the *Err fields are returned as Go
// errors to simulate transport failures.
type Stub struct {
	Offer    client.OfferResult
	OfferErr error

	Form    client.FormResult
	FormErr error

	Prior    client.ResponseResult
	PriorErr error
	// PriorGate, when set, blocks GetRegistrationResponse until it is closed.
	PriorGate chan struct{}

	Submit    client.SubmitResult
	SubmitErr error
	// SubmitHook runs before SubmitResponse returns.
	SubmitHook func()

	mu          sync.Mutex
	calls       map[string]int
	submissions []client.Submitted
}

var _ client.Collaborators = (*Stub)(nil)

func (s *Stub) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[name]++
}

// Calls reports how often a collaborator method was invoked.
func (s *Stub) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

// Submissions returns every submit payload received.
func (s *Stub) Submissions() []client.Submitted {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]client.Submitted(nil), s.submissions...)
}

func (s *Stub) GetOffer(_ context.Context, _ int) (client.OfferResult, error) {
	s.record("GetOffer")
	return s.Offer, s.OfferErr
}

func (s *Stub) GetRegistrationForm(_ context.Context, _, _ int) (client.FormResult, error) {
	s.record("GetRegistrationForm")
	return s.Form, s.FormErr
}

func (s *Stub) GetRegistrationResponse(ctx context.Context) (client.ResponseResult, error) {
	s.record("GetRegistrationResponse")
	if s.PriorGate != nil {
		select {
		case <-s.PriorGate:
		case <-ctx.Done():
			return client.ResponseResult{Error: ctx.Err().Error()}, ctx.Err()
		}
	}
	return s.Prior, s.PriorErr
}

func (s *Stub) SubmitResponse(_ context.Context, payload model.Submission, isUpdate bool) (client.SubmitResult, error) {
	s.record("SubmitResponse")
	s.mu.Lock()
	payload.Answers = append([]model.Answer(nil), payload.Answers...)
	s.submissions = append(s.submissions, client.Submitted{Payload: payload, IsUpdate: isUpdate})
	s.mu.Unlock()
	if s.SubmitHook != nil {
		s.SubmitHook()
	}
	return s.Submit, s.SubmitErr
}

// OfferFound returns a successful offer result.
func OfferFound(id int) client.OfferResult {
	return client.OfferResult{Offer: &model.Offer{ID: id}}
}

// FormFound returns a successful form result.
func FormFound(id int, sections ...model.Section) client.FormResult {
	return client.FormResult{StatusCode: 200, Form: model.Form{ID: id, Sections: sections}}
}

// PriorFailed returns a prior-answers result signalling no registration.
func PriorFailed() client.ResponseResult {
	return client.ResponseResult{Error: "no registration response"}
}

// IntPtr returns a pointer to v, for depends_on_question_id.
func IntPtr(v int) *int {
	return &v
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// AssertDiff fails the test with a cmp diff when want and got differ.
func AssertDiff(t *testing.T, label string, want, got any, opts ...cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Fatalf("%s mismatch (-want +got):\n%s", label, diff)
	}
}

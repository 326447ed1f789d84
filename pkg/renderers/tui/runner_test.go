package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regform/pkg/client"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/orchestrator"
	"github.com/goliatone/go-regform/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) sawInfo(fragment string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func newStub(questions ...model.Question) *testsupport.Stub {
	return &testsupport.Stub{
		Offer:  testsupport.OfferFound(5),
		Form:   testsupport.FormFound(9, model.Section{ID: 1, Name: "Details", Order: 1, Questions: questions}),
		Prior:  testsupport.PriorFailed(),
		Submit: client.SubmitResult{Form: client.SubmitStatus{Status: 201}},
	}
}

func run(t *testing.T, stub *testsupport.Stub, driver PromptDriver) (orchestrator.SubmitOutcome, error) {
	t.Helper()
	session, err := orchestrator.New(stub)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	runner, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return runner.Run(context.Background(), session)
}

func TestRun_RepromptsInvalidAnswers(t *testing.T) {
	stub := newStub(
		model.Question{ID: 1, Type: model.QuestionTypeShortText, Order: 1, IsRequired: true, Description: "Name"},
		model.Question{ID: 2, Type: model.QuestionTypeSingleChoice, Order: 2, Description: "Vegetarian"},
	)
	driver := &stubDriver{
		inputs:  []string{"", "Ada"},
		confirm: []bool{true, false},
	}

	outcome, err := run(t, stub, driver)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.State != orchestrator.SubmitSuccess {
		t.Fatalf("expected success, got %s", outcome.State)
	}
	if driver.inputPos != 2 || driver.confirmPos != 2 {
		t.Fatalf("prompts not consumed as expected: inputs=%d confirms=%d", driver.inputPos, driver.confirmPos)
	}
	if !driver.sawInfo("There are one or more validation errors") {
		t.Fatalf("expected validation banner, got %v", driver.infoMessages)
	}
	if !strings.Contains(driver.prompts[2], "An answer is required.") {
		t.Fatalf("re-prompt should carry the error, got %q", driver.prompts[2])
	}
	if stub.Calls("SubmitResponse") != 1 {
		t.Fatalf("invalid attempt must not reach the server")
	}
	want := []model.Answer{{QuestionID: 1, Value: "Ada"}, {QuestionID: 2, Value: "1"}}
	if diff := cmp.Diff(want, stub.Submissions()[0].Payload.Answers); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_SkipsHiddenQuestions(t *testing.T) {
	stub := newStub(
		model.Question{ID: 1, Type: model.QuestionTypeSingleChoice, Order: 1, Description: "Need a visa?"},
		model.Question{
			ID: 2, Type: model.QuestionTypeShortText, Order: 2, IsRequired: true, Description: "Passport number",
			DependsOnQuestionID: testsupport.IntPtr(1), HideForDependentValue: "0",
		},
	)
	driver := &stubDriver{confirm: []bool{false, false}}

	outcome, err := run(t, stub, driver)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.State != orchestrator.SubmitSuccess {
		t.Fatalf("expected success, got %s", outcome.State)
	}
	if driver.inputPos != 0 {
		t.Fatalf("hidden question must not be prompted")
	}
}

func TestRun_ChoiceControls(t *testing.T) {
	options := model.Options{{Value: "a", Label: "Alpha"}, {Value: "b", Label: "Beta"}, {Value: "c", Label: "Gamma"}}
	stub := newStub(
		model.Question{ID: 1, Type: model.QuestionTypeMultiChoice, Order: 1, Options: options},
		model.Question{ID: 2, Type: model.QuestionTypeMultiCheckbox, Order: 2, Options: options},
		model.Question{ID: 3, Type: "long_text", Order: 3},
		model.Question{ID: 4, Type: model.QuestionTypeDate, Order: 4},
	)
	driver := &stubDriver{
		selectIdx: []int{1},
		multiIdx:  [][]int{{0, 2}},
		textAreas: []string{"line one\nline two"},
		inputs:    []string{"2026-08-01"},
		confirm:   []bool{false},
	}

	if _, err := run(t, stub, driver); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []model.Answer{
		{QuestionID: 1, Value: "b"},
		{QuestionID: 2, Value: "a,c"},
		{QuestionID: 3, Value: "line one\nline two"},
		{QuestionID: 4, Value: "2026-08-01"},
	}
	if diff := cmp.Diff(want, stub.Submissions()[0].Payload.Answers); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_UnknownTypeShowsWarning(t *testing.T) {
	stub := newStub(model.Question{ID: 1, Type: "signature", Order: 1})
	driver := &stubDriver{confirm: []bool{false}}

	if _, err := run(t, stub, driver); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !driver.sawInfo(DefaultTheme.ErrorPrefix + "WARNING: No control found for type signature!") {
		t.Fatalf("expected warning, got %v", driver.infoMessages)
	}
}

func TestRun_RequiredUnknownTypeStops(t *testing.T) {
	stub := newStub(
		model.Question{ID: 1, Type: "signature", Order: 1, IsRequired: true},
		model.Question{ID: 2, Type: model.QuestionTypeShortText, Order: 2, IsRequired: true},
	)
	driver := &stubDriver{inputs: []string{"", "Ada"}}

	done := make(chan error, 1)
	go func() {
		_, err := run(t, stub, driver)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrUnanswerable) {
			t.Fatalf("expected ErrUnanswerable, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("runner kept prompting a question it cannot answer")
	}
	if driver.inputPos != 2 {
		t.Fatalf("expected the answerable question to be re-prompted once, got %d inputs", driver.inputPos)
	}
	if got := len(stub.Submissions()); got != 0 {
		t.Fatalf("expected no submissions, got %d", got)
	}
}

func TestRun_RetriesFailedSubmit(t *testing.T) {
	stub := newStub(model.Question{ID: 1, Type: model.QuestionTypeShortText, Order: 1, IsRequired: true})
	stub.Submit = client.SubmitResult{Form: client.SubmitStatus{Status: 500}}
	attempts := 0
	stub.SubmitHook = func() {
		attempts++
		if attempts == 2 {
			stub.Submit = client.SubmitResult{Form: client.SubmitStatus{Status: 201}}
		}
	}
	driver := &stubDriver{inputs: []string{"Ada"}, confirm: []bool{true, false}}

	outcome, err := run(t, stub, driver)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.State != orchestrator.SubmitSuccess {
		t.Fatalf("expected success after retry, got %s", outcome.State)
	}
	if !driver.sawInfo("unexpected status 500, please try again") {
		t.Fatalf("expected failure banner, got %v", driver.infoMessages)
	}
	if driver.inputPos != 1 {
		t.Fatalf("retry must reuse answers without prompting")
	}
}

func TestRun_ChangeAnswersAfterSuccess(t *testing.T) {
	stub := newStub(model.Question{ID: 1, Type: model.QuestionTypeShortText, Order: 1, IsRequired: true})
	stub.Submit = client.SubmitResult{Form: client.SubmitStatus{Status: 201, RegistrationID: 77}}
	driver := &stubDriver{inputs: []string{"Ada", "Grace"}, confirm: []bool{true, false}}

	if _, err := run(t, stub, driver); err != nil {
		t.Fatalf("run: %v", err)
	}
	subs := stub.Submissions()
	if len(subs) != 2 {
		t.Fatalf("expected two submissions, got %d", len(subs))
	}
	if subs[0].IsUpdate || !subs[1].IsUpdate {
		t.Fatalf("expected create then update, got %v then %v", subs[0].IsUpdate, subs[1].IsUpdate)
	}
	if subs[1].Payload.RegistrationID != 77 || subs[1].Payload.Answers[0].Value != "Grace" {
		t.Fatalf("unexpected update payload %#v", subs[1].Payload)
	}
	if !driver.sawInfo("You have already registered") {
		t.Fatalf("expected already-registered notice after reset")
	}
}

func TestRun_LoadErrorShowsBanner(t *testing.T) {
	stub := &testsupport.Stub{Offer: client.OfferResult{Error: "No offer found"}}
	driver := &stubDriver{}

	_, err := run(t, stub, driver)
	var loadErr *orchestrator.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if !driver.sawInfo("No offer found") {
		t.Fatalf("expected error banner, got %v", driver.infoMessages)
	}
}

func TestRun_NoForm(t *testing.T) {
	stub := newStub()
	driver := &stubDriver{}

	if _, err := run(t, stub, driver); !errors.Is(err, ErrNoForm) {
		t.Fatalf("expected ErrNoForm, got %v", err)
	}
	if !driver.sawInfo("No registration form available") {
		t.Fatalf("expected no-form banner, got %v", driver.infoMessages)
	}
}

type abortingDriver struct {
	stubDriver
}

func (d *abortingDriver) Input(context.Context, InputConfig) (string, error) {
	return "", ErrAborted
}

func TestRun_AbortStops(t *testing.T) {
	stub := newStub(model.Question{ID: 1, Type: model.QuestionTypeShortText, Order: 1})

	if _, err := run(t, stub, &abortingDriver{}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if stub.Calls("SubmitResponse") != 0 {
		t.Fatalf("nothing may be submitted after an aborted prompt")
	}
}

func TestValidIndices(t *testing.T) {
	if diff := cmp.Diff([]int{0, 2}, validIndices(3, []int{0, -1, 2, 7})); diff != "" {
		t.Fatalf("indices mismatch (-want +got):\n%s", diff)
	}
	if got := validIndices(0, []int{0}); got != nil {
		t.Fatalf("expected no indices for empty options, got %v", got)
	}
}

func TestTranslateSurveyErr(t *testing.T) {
	if err := translateSurveyErr(terminal.InterruptErr); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	other := errors.New("boom")
	if err := translateSurveyErr(other); err != other {
		t.Fatalf("expected other errors unchanged, got %v", err)
	}
}

package visibility

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regform/pkg/answers"
	"github.com/goliatone/go-regform/pkg/model"
)

func intPtr(v int) *int { return &v }

func TestIsActive_NoDependency(t *testing.T) {
	t.Parallel()

	q := model.Question{ID: 1}
	if !IsActive(q, answers.NewStore()) {
		t.Fatalf("question without dependency must be active")
	}
	if !IsActive(q, nil) {
		t.Fatalf("question without dependency must be active with nil lookup")
	}
}

func TestIsActive_HideForDependentValue(t *testing.T) {
	t.Parallel()

	q := model.Question{ID: 1, DependsOnQuestionID: intPtr(2), HideForDependentValue: "no"}
	store := answers.NewStore()

	if IsActive(q, store) {
		t.Fatalf("expected inactive while governing answer is absent")
	}

	store.Upsert(2, "no")
	if IsActive(q, store) {
		t.Fatalf("expected inactive when governing answer matches hide value")
	}

	store.Upsert(2, "yes")
	if !IsActive(q, store) {
		t.Fatalf("expected active when governing answer differs from hide value")
	}
}

func TestIsActive_EmptyHideValue(t *testing.T) {
	t.Parallel()

	q := model.Question{ID: 1, DependsOnQuestionID: intPtr(2)}
	store := answers.NewStore(model.Answer{QuestionID: 2, Value: ""})
	if IsActive(q, store) {
		t.Fatalf("empty answer equals empty hide value, expected inactive")
	}
	store.Upsert(2, true)
	if !IsActive(q, store) {
		t.Fatalf("expected active once governing checkbox is ticked")
	}
}

func TestFilter_UsesResolverAndKeepsOrder(t *testing.T) {
	t.Parallel()

	sections := []model.Section{
		{ID: 1, Questions: []model.Question{{ID: 1}, {ID: 2, DependsOnQuestionID: intPtr(1), HideForDependentValue: "0"}}},
		{ID: 2, Questions: []model.Question{{ID: 3}}},
	}
	store := answers.NewStore(model.Answer{QuestionID: 1, Value: "1"})

	got := ids(Filter(sections, store, nil))
	if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
		t.Fatalf("active questions mismatch (-want +got):\n%s", diff)
	}

	onlyOdd := ResolverFunc(func(q model.Question, _ answers.Lookup) bool { return q.ID%2 == 1 })
	got = ids(Filter(sections, store, onlyOdd))
	if diff := cmp.Diff([]int{1, 3}, got); diff != "" {
		t.Fatalf("custom resolver mismatch (-want +got):\n%s", diff)
	}
}

func TestLint_ReportsMissingTargetsAndCycles(t *testing.T) {
	t.Parallel()

	sections := []model.Section{{
		ID: 1,
		Questions: []model.Question{
			{ID: 1},
			{ID: 2, DependsOnQuestionID: intPtr(99)},
			{ID: 3, DependsOnQuestionID: intPtr(4)},
			{ID: 4, DependsOnQuestionID: intPtr(5)},
			{ID: 5, DependsOnQuestionID: intPtr(3)},
			{ID: 6, DependsOnQuestionID: intPtr(3)},
			{ID: 7, DependsOnQuestionID: intPtr(7)},
			{ID: 8, DependsOnQuestionID: intPtr(1)},
		},
	}}

	issues := Lint(sections)
	type summary struct {
		Kind IssueKind
		ID   int
		Path []int
	}
	got := make([]summary, 0, len(issues))
	for _, issue := range issues {
		got = append(got, summary{issue.Kind, issue.QuestionID, issue.Path})
	}
	want := []summary{
		{IssueMissingTarget, 2, []int{2, 99}},
		{IssueSelfReference, 7, []int{7}},
		{IssueCycle, 3, []int{3, 4, 5, 3}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lint issues mismatch (-want +got):\n%s", diff)
	}

	again := Lint(sections)
	if len(again) != len(issues) {
		t.Fatalf("lint must be deterministic")
	}
}

func ids(questions []model.Question) []int {
	out := make([]int, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.ID)
	}
	return out
}

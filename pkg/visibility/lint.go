package visibility

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-regform/pkg/model"
)

// IssueKind classifies dependency problems found in a loaded form.
type IssueKind string

const (
	IssueMissingTarget IssueKind = "missing-target"
	IssueSelfReference IssueKind = "self-reference"
	IssueCycle         IssueKind = "cycle"
)

// Issue describes one dependency problem. Path lists the question ids
// involved, starting at QuestionID.
type Issue struct {
	Kind       IssueKind
	QuestionID int
	Path       []int
	Message    string
}

// Lint inspects the dependency graph of sections. It reports dependency
// targets that were not loaded with the form and cycles between dependent
// questions. Results are ordered by question id so repeated runs match.
//
// Issues never change IsActive: a question in a cycle still follows the
// direct-answer rule, which keeps resolution deterministic.
func Lint(sections []model.Section) []Issue {
	edges := make(map[int]int)
	known := make(map[int]struct{})
	for _, question := range model.Questions(sections) {
		known[question.ID] = struct{}{}
		if target, ok := question.DependsOn(); ok {
			edges[question.ID] = target
		}
	}

	ids := make([]int, 0, len(edges))
	for id := range edges {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var issues []Issue
	reported := make(map[int]struct{})
	for _, id := range ids {
		target := edges[id]
		if target == id {
			issues = append(issues, Issue{
				Kind:       IssueSelfReference,
				QuestionID: id,
				Path:       []int{id},
				Message:    fmt.Sprintf("question %d depends on itself", id),
			})
			reported[id] = struct{}{}
			continue
		}
		if _, ok := known[target]; !ok {
			issues = append(issues, Issue{
				Kind:       IssueMissingTarget,
				QuestionID: id,
				Path:       []int{id, target},
				Message:    fmt.Sprintf("question %d depends on question %d which is not part of the form", id, target),
			})
		}
	}

	for _, id := range ids {
		if _, done := reported[id]; done {
			continue
		}
		path := walk(id, edges)
		if len(path) == 0 {
			continue
		}
		if path[0] != id {
			// id leads into a cycle but is not part of it; the cycle is
			// reported from its smallest member.
			continue
		}
		for _, member := range path {
			reported[member] = struct{}{}
		}
		closed := append(path, id)
		issues = append(issues, Issue{
			Kind:       IssueCycle,
			QuestionID: id,
			Path:       closed,
			Message:    fmt.Sprintf("questions %v form a dependency cycle", closed),
		})
	}
	return issues
}

// walk follows dependency edges from start and returns the cycle it ends in,
// rotated to begin at the cycle's smallest id. It returns nil when the chain
// terminates.
func walk(start int, edges map[int]int) []int {
	seen := make(map[int]int)
	var chain []int
	current := start
	for {
		if idx, ok := seen[current]; ok {
			cycle := append([]int(nil), chain[idx:]...)
			return rotateToMin(cycle)
		}
		next, ok := edges[current]
		if !ok {
			return nil
		}
		seen[current] = len(chain)
		chain = append(chain, current)
		current = next
	}
}

func rotateToMin(cycle []int) []int {
	if len(cycle) == 0 {
		return cycle
	}
	minIdx := 0
	for i, id := range cycle {
		if id < cycle[minIdx] {
			minIdx = i
		}
	}
	return append(append([]int(nil), cycle[minIdx:]...), cycle[:minIdx]...)
}

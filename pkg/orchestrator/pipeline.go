package orchestrator

import (
	"context"
	"fmt"
	"sync"
)

// StepOutcome classifies how a pipeline step finished.
type StepOutcome int

const (
	// StepSucceeded means dependents may run.
	StepSucceeded StepOutcome = iota
	// StepSkipped means the step did not run, or chose to do nothing.
	StepSkipped
	// StepFailed means the step ran and failed; dependents are skipped.
	StepFailed
)

func (o StepOutcome) String() string {
	switch o {
	case StepSucceeded:
		return "succeeded"
	case StepSkipped:
		return "skipped"
	case StepFailed:
		return "failed"
	default:
		return fmt.Sprintf("StepOutcome(%d)", int(o))
	}
}

// StepResult is returned by every step.
type StepResult struct {
	Outcome StepOutcome
	Err     error
}

func succeeded() StepResult { return StepResult{Outcome: StepSucceeded} }

func skipped() StepResult { return StepResult{Outcome: StepSkipped} }

func skippedWith(err error) StepResult { return StepResult{Outcome: StepSkipped, Err: err} }

func failed(err error) StepResult { return StepResult{Outcome: StepFailed, Err: err} }

// Step is a named unit of work. A step runs only after every step named in
// After has succeeded; otherwise it is skipped. Background steps run in their
// own goroutine once their predecessors succeed, and nothing may depend on
// them.
type Step struct {
	Name       string
	After      []string
	Background bool
	Run        func(ctx context.Context) StepResult
}

// Pipeline runs steps in declaration order.
type Pipeline struct {
	steps []Step
}

// NewPipeline validates step declarations: names must be unique, and
// predecessors must be declared earlier and not run in the background.
func NewPipeline(steps ...Step) (*Pipeline, error) {
	declared := make(map[string]Step, len(steps))
	for _, step := range steps {
		if step.Name == "" {
			return nil, fmt.Errorf("orchestrator: pipeline step name is required")
		}
		if step.Run == nil {
			return nil, fmt.Errorf("orchestrator: pipeline step %q has no run func", step.Name)
		}
		if _, dup := declared[step.Name]; dup {
			return nil, fmt.Errorf("orchestrator: duplicate pipeline step %q", step.Name)
		}
		for _, dep := range step.After {
			prev, ok := declared[dep]
			if !ok {
				return nil, fmt.Errorf("orchestrator: step %q runs after undeclared step %q", step.Name, dep)
			}
			if prev.Background {
				return nil, fmt.Errorf("orchestrator: step %q cannot wait on background step %q", step.Name, dep)
			}
		}
		declared[step.Name] = step
	}
	return &Pipeline{steps: append([]Step(nil), steps...)}, nil
}

// Run executes the pipeline and waits for background steps before
// returning. Results are keyed by step name.
func (p *Pipeline) Run(ctx context.Context) map[string]StepResult {
	results := make(map[string]StepResult, len(p.steps))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, step := range p.steps {
		mu.Lock()
		ready := true
		for _, dep := range step.After {
			if results[dep].Outcome != StepSucceeded {
				ready = false
				break
			}
		}
		if !ready {
			results[step.Name] = skipped()
			mu.Unlock()
			continue
		}
		mu.Unlock()

		if step.Background {
			wg.Add(1)
			go func(step Step) {
				defer wg.Done()
				result := step.Run(ctx)
				mu.Lock()
				results[step.Name] = result
				mu.Unlock()
			}(step)
			continue
		}

		result := step.Run(ctx)
		mu.Lock()
		results[step.Name] = result
		mu.Unlock()
	}

	wg.Wait()
	return results
}

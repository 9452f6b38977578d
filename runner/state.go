package runner

import (
	"sync"
	"time"

	"github.com/hupe1980/procuremesh/hosting"
)

// runState collects the steps of a single run. Each run gets its own state,
// so concurrent runs never share step numbers. Safe for concurrent use
// because tool observations may arrive from provider goroutines.
type runState struct {
	mu    sync.Mutex
	steps []Step
}

// record appends a step, assigning the next 1-based step number and a
// timestamp.
func (s *runState) record(step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step.StepNumber = len(s.steps) + 1
	step.Timestamp = time.Now().UTC()
	s.steps = append(s.steps, step)
}

// observeTool records a tool invocation reported by the hosting provider.
func (s *runState) observeTool(obs hosting.ToolObservation) {
	step := Step{
		Action:     "tool_call",
		ToolName:   obs.Name,
		ToolParams: obs.Params,
		ToolResult: obs.Result,
	}
	if obs.Err != "" {
		step.Reasoning = "tool failed: " + obs.Err
		if step.ToolResult == nil {
			step.ToolResult = obs.Err
		}
	}
	s.record(step)
}

// snapshot returns a copy of the recorded steps.
func (s *runState) snapshot() []Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Step(nil), s.steps...)
}

package runner

import (
	"fmt"
	"time"
)

// Step is one recorded action of a run. Step numbers are 1-based and
// strictly monotonic within the run.
type Step struct {
	StepNumber int            `json:"step_number"`
	Action     string         `json:"action"`
	Reasoning  string         `json:"reasoning"`
	ToolName   string         `json:"tool_name,omitempty"`
	ToolParams map[string]any `json:"tool_params,omitempty"`
	ToolResult any            `json:"tool_result,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Result is the outcome of one purchase request run. A Result is always
// produced; failures are reported through Success and ErrorMessage instead
// of an error return. TotalSteps always equals len(Steps).
type Result struct {
	Success        bool          `json:"success"`
	Recommendation string        `json:"recommendation,omitempty"`
	Reasoning      string        `json:"reasoning,omitempty"`
	TotalSteps     int           `json:"total_steps"`
	ExecutionTime  time.Duration `json:"execution_time"`
	Steps          []Step        `json:"steps"`
	ErrorMessage   string        `json:"error_message,omitempty"`
}

// String returns a short one-line summary.
func (r *Result) String() string {
	if r.Success {
		return fmt.Sprintf("success after %d steps in %s", r.TotalSteps, r.ExecutionTime.Round(time.Millisecond))
	}
	return fmt.Sprintf("failed after %d steps in %s: %s", r.TotalSteps, r.ExecutionTime.Round(time.Millisecond), r.ErrorMessage)
}

// Package report renders purchase request results for humans.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/procuremesh/runner"
)

const maxCellLen = 80

// Markdown renders a result as a markdown report: outcome, recommendation,
// reasoning and the full step trail. Pure function of the result.
func Markdown(res *runner.Result) string {
	var b strings.Builder

	b.WriteString("# Purchase Request Report\n\n")

	if res.Success {
		b.WriteString("**Outcome:** success\n\n")
		b.WriteString("## Recommendation\n\n")
		b.WriteString(res.Recommendation)
		b.WriteString("\n\n")
		if res.Reasoning != "" {
			b.WriteString("## Reasoning\n\n")
			b.WriteString(res.Reasoning)
			b.WriteString("\n\n")
		}
	} else {
		b.WriteString("**Outcome:** failed\n\n")
		b.WriteString("## Error\n\n")
		b.WriteString(res.ErrorMessage)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "**Steps:** %d  \n**Execution time:** %s\n\n",
		res.TotalSteps, res.ExecutionTime.Round(time.Millisecond))

	if len(res.Steps) > 0 {
		b.WriteString("## Step Trail\n\n")
		b.WriteString("| # | Action | Tool | Params | Result |\n")
		b.WriteString("|---|--------|------|--------|--------|\n")
		for _, step := range res.Steps {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
				step.StepNumber,
				cell(step.Action),
				cell(step.ToolName),
				cell(compactJSON(step.ToolParams)),
				cell(compactJSON(step.ToolResult)),
			)
		}
	}

	return b.String()
}

// compactJSON renders a value as single-line JSON, falling back to %v.
func compactJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// cell escapes pipes and truncates long values for table layout.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	if len(s) > maxCellLen {
		s = s[:maxCellLen-3] + "..."
	}
	return s
}

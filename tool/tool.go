// Package tool implements the tool calling subsystem that exposes structured
// business capabilities to an execution context with schema validated
// arguments, consistent error handling and metadata for model guidance.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/procuremesh/internal/util"
	"github.com/hupe1980/procuremesh/logging"
)

// Error codes attached to ToolError values. NOT_FOUND marks a recoverable
// lookup miss that the execution context is expected to reason about; the
// remaining codes mark argument or implementation failures.
const (
	CodeNotFound    = "NOT_FOUND"
	CodeValidation  = "VALIDATION_ERROR"
	CodeExecution   = "EXECUTION_ERROR"
	CodeUnknownTool = "UNKNOWN_TOOL"
)

// Tool defines the interface for the named operations the business query
// service exposes over the invocation channel.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions (snake_case names)
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully, returning *ToolError for tool-level failures
//   - Be thread-safe if used concurrently
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// This description is provided to the model to help it understand when and
	// how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool with structured arguments. Arguments are parsed
	// from JSON and validated against the tool's schema before execution.
	Call(callCtx *CallContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution. It is a
// normal, recoverable tool-call failure as opposed to a channel transport
// failure: the execution context receives it as a structured result.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// CallContext carries per-invocation metadata into a tool implementation:
// the ambient cancellation context, the call identifier correlating the
// model's request with the execution, and a logger.
type CallContext struct {
	ctx    context.Context
	callID string
	logger logging.Logger
}

// NewCallContext constructs a CallContext bound to ctx and callID.
// A nil logger is substituted with a NoOpLogger.
func NewCallContext(ctx context.Context, callID string, logger logging.Logger) *CallContext {
	return &CallContext{ctx: ctx, callID: callID, logger: logging.OrNoOp(logger)}
}

// Context returns the context associated with the tool invocation.
func (c *CallContext) Context() context.Context { return c.ctx }

// CallID returns the call identifier associated with the tool invocation.
func (c *CallContext) CallID() string { return c.callID }

// Logger returns the logger associated with the tool invocation.
func (c *CallContext) Logger() logging.Logger { return c.logger }

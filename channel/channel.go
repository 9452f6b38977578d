// Package channel abstracts how tool invocations travel between an execution
// context and the tools that serve them. A Channel failure is a transport
// problem; failures inside a tool stay tool-level and are returned as
// *tool.ToolError values through Invoke's error, never as TransportError.
package channel

import "context"

// Definition describes one invocable tool for declaration to an execution
// context.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Channel delivers tool declarations and tool invocations.
type Channel interface {
	// Tools lists the tool definitions reachable over this channel.
	Tools() ([]Definition, error)

	// Invoke runs the named tool with the given arguments and returns its
	// result. Tool-level failures come back as *tool.ToolError values;
	// a *TransportError means the channel itself broke.
	Invoke(ctx context.Context, name string, args map[string]any) (any, error)
}

// TransportError reports a failure of the channel itself, as opposed to a
// failure inside a tool.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "channel transport error during " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

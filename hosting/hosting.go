// Package hosting defines how agent execution contexts are acquired from a
// model provider, driven and released. Providers own remote resources, so a
// Release must follow every successful AcquireContext exactly once.
package hosting

import (
	"context"

	"github.com/hupe1980/procuremesh/channel"
	"github.com/hupe1980/procuremesh/core"
)

// RunStatus is the terminal state of a submitted run.
type RunStatus string

const (
	// RunStatusCompleted means the run produced a final response.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed means the run terminated without a usable response.
	RunStatusFailed RunStatus = "failed"
)

// ToolObservation reports one tool invocation made during a run. Err is the
// error string of a tool-level failure, empty on success.
type ToolObservation struct {
	Name   string
	Params map[string]any
	Result any
	Err    string
}

// ContextSpec describes the execution context to acquire.
type ContextSpec struct {
	// Name identifies the agent, e.g. "purchase-request-agent".
	Name string
	// Instructions is the system prompt governing the run.
	Instructions string
	// Channel serves the tool invocations the model requests.
	Channel channel.Channel
	// Observer, when set, is called synchronously after every tool
	// invocation. Used for step recording.
	Observer func(obs ToolObservation)
}

// Outcome is the result of a submitted run.
type Outcome struct {
	Status RunStatus
	// Messages holds the conversation produced by the run, in order.
	Messages []core.Content
	// FailureMessage carries the provider's failure description when
	// Status is RunStatusFailed.
	FailureMessage string
}

// ExecutionContext is a live, provider-backed agent context. It is not safe
// for concurrent Submit calls.
type ExecutionContext interface {
	// ID returns the provider-assigned context identifier.
	ID() string

	// Submit runs a task to completion, driving tool invocations through
	// the configured channel.
	Submit(ctx context.Context, task string) (*Outcome, error)

	// Release frees the provider resources behind this context. It must
	// be called exactly once.
	Release(ctx context.Context) error
}

// Provider acquires execution contexts.
type Provider interface {
	AcquireContext(ctx context.Context, spec ContextSpec) (ExecutionContext, error)
}

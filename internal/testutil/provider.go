// Package testutil provides test doubles shared across package tests.
package testutil

import (
	"context"
	"sync/atomic"

	"github.com/hupe1980/procuremesh/core"
	"github.com/hupe1980/procuremesh/hosting"
)

// ScriptedProvider implements hosting.Provider for tests. The Script drives
// the run: it receives the acquired context spec (with the live channel and
// observer) and the submitted task, and returns the run outcome.
type ScriptedProvider struct {
	Script func(ctx context.Context, spec hosting.ContextSpec, task string) (*hosting.Outcome, error)

	// ReleaseErr, when set, is returned by every Release call.
	ReleaseErr error

	// Releases counts Release calls across all acquired contexts.
	Releases atomic.Int32
}

// AcquireContext implements hosting.Provider.
func (p *ScriptedProvider) AcquireContext(_ context.Context, spec hosting.ContextSpec) (hosting.ExecutionContext, error) {
	return &scriptedContext{id: core.NewID(), provider: p, spec: spec}, nil
}

type scriptedContext struct {
	id       string
	provider *ScriptedProvider
	spec     hosting.ContextSpec
}

func (c *scriptedContext) ID() string { return c.id }

func (c *scriptedContext) Submit(ctx context.Context, task string) (*hosting.Outcome, error) {
	return c.provider.Script(ctx, c.spec, task)
}

func (c *scriptedContext) Release(context.Context) error {
	c.provider.Releases.Add(1)
	return c.provider.ReleaseErr
}

// CompletedOutcome builds a completed outcome whose transcript ends with the
// given assistant text.
func CompletedOutcome(task, finalText string) *hosting.Outcome {
	return &hosting.Outcome{
		Status: hosting.RunStatusCompleted,
		Messages: []core.Content{
			core.NewTextContent("user", task),
			core.NewTextContent("assistant", finalText),
		},
	}
}

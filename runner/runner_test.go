package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/procuremesh/channel"
	"github.com/hupe1980/procuremesh/core"
	"github.com/hupe1980/procuremesh/hosting"
)

type fakeChannel struct{}

func (fakeChannel) Tools() ([]channel.Definition, error) { return nil, nil }

func (fakeChannel) Invoke(context.Context, string, map[string]any) (any, error) {
	return nil, nil
}

type fakeContext struct {
	id           string
	submit       func(ctx context.Context, task string) (*hosting.Outcome, error)
	releaseErr   error
	releasePanic any
	releases     atomic.Int32
}

func (f *fakeContext) ID() string { return f.id }

func (f *fakeContext) Submit(ctx context.Context, task string) (*hosting.Outcome, error) {
	return f.submit(ctx, task)
}

func (f *fakeContext) Release(context.Context) error {
	f.releases.Add(1)
	if f.releasePanic != nil {
		panic(f.releasePanic)
	}
	return f.releaseErr
}

type fakeProvider struct {
	acquireErr error
	execCtx    *fakeContext
	spec       hosting.ContextSpec
}

func (f *fakeProvider) AcquireContext(_ context.Context, spec hosting.ContextSpec) (hosting.ExecutionContext, error) {
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	f.spec = spec
	return f.execCtx, nil
}

func completedOutcome(texts ...string) *hosting.Outcome {
	messages := []core.Content{core.NewTextContent("user", "task")}
	for _, text := range texts {
		messages = append(messages, core.NewTextContent("assistant", text))
	}
	return &hosting.Outcome{Status: hosting.RunStatusCompleted, Messages: messages}
}

func actions(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Action
	}
	return out
}

func TestProcessPurchaseRequest(t *testing.T) {
	execCtx := &fakeContext{id: "ctx-1"}
	provider := &fakeProvider{execCtx: execCtx}

	execCtx.submit = func(ctx context.Context, task string) (*hosting.Outcome, error) {
		// Simulate two tool calls reported through the observer.
		provider.spec.Observer(hosting.ToolObservation{
			Name:   "get_user",
			Params: map[string]any{"user_id": "alice-001"},
			Result: map[string]any{"name": "Alice Johnson"},
		})
		provider.spec.Observer(hosting.ToolObservation{
			Name:   "search_products",
			Params: map[string]any{"name": "laptop"},
			Result: []string{"LAPTOP-001"},
		})
		return completedOutcome("I recommend LAPTOP-001 from tech-supplier-02."), nil
	}

	r := New(provider, fakeChannel{})
	result := r.ProcessPurchaseRequest(context.Background(), "alice-001", "I need a laptop")

	require.True(t, result.Success)
	assert.Equal(t, "I recommend LAPTOP-001 from tech-supplier-02.", result.Recommendation)
	assert.Empty(t, result.ErrorMessage)
	assert.NotEmpty(t, result.Reasoning)

	assert.Equal(t, []string{
		"agent_created",
		"tool_call",
		"tool_call",
		"response_received",
		"cleanup",
	}, actions(result.Steps))

	assert.Equal(t, len(result.Steps), result.TotalSteps)
	for i, step := range result.Steps {
		assert.Equal(t, i+1, step.StepNumber)
		assert.False(t, step.Timestamp.IsZero())
	}

	assert.Equal(t, "get_user", result.Steps[1].ToolName)
	assert.Equal(t, map[string]any{"user_id": "alice-001"}, result.Steps[1].ToolParams)

	assert.Equal(t, int32(1), execCtx.releases.Load())
}

func TestProcessPurchaseRequestTaskFormat(t *testing.T) {
	var gotTask string
	execCtx := &fakeContext{id: "ctx-1", submit: func(_ context.Context, task string) (*hosting.Outcome, error) {
		gotTask = task
		return completedOutcome("ok"), nil
	}}

	r := New(&fakeProvider{execCtx: execCtx}, fakeChannel{})
	r.ProcessPurchaseRequest(context.Background(), "alice-001", "I need a new laptop for development")

	assert.Equal(t,
		"I need help with a purchase request. User ID: alice-001, Request: I need a new laptop for development",
		gotTask,
	)
}

func TestProcessPurchaseRequestNoResponse(t *testing.T) {
	execCtx := &fakeContext{id: "ctx-1", submit: func(context.Context, string) (*hosting.Outcome, error) {
		// Completed run whose transcript holds no assistant text.
		return &hosting.Outcome{
			Status:   hosting.RunStatusCompleted,
			Messages: []core.Content{core.NewTextContent("user", "task")},
		}, nil
	}}

	r := New(&fakeProvider{execCtx: execCtx}, fakeChannel{})
	result := r.ProcessPurchaseRequest(context.Background(), "alice-001", "anything")

	assert.True(t, result.Success)
	assert.Equal(t, NoResponseRecommendation, result.Recommendation)
	assert.Equal(t, int32(1), execCtx.releases.Load())
}

func TestProcessPurchaseRequestAcquireFailure(t *testing.T) {
	r := New(&fakeProvider{acquireErr: errors.New("quota exceeded")}, fakeChannel{})
	result := r.ProcessPurchaseRequest(context.Background(), "alice-001", "anything")

	require.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "acquire execution context")
	assert.Contains(t, result.ErrorMessage, "quota exceeded")
	assert.Equal(t, len(result.Steps), result.TotalSteps)
	assert.NotContains(t, actions(result.Steps), "cleanup")
}

func TestProcessPurchaseRequestSubmitFailure(t *testing.T) {
	execCtx := &fakeContext{id: "ctx-1", submit: func(context.Context, string) (*hosting.Outcome, error) {
		return nil, errors.New("api unreachable")
	}}

	r := New(&fakeProvider{execCtx: execCtx}, fakeChannel{})
	result := r.ProcessPurchaseRequest(context.Background(), "alice-001", "anything")

	require.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "api unreachable")

	// The context is still released exactly once and the cleanup step is
	// part of the recorded run.
	assert.Equal(t, int32(1), execCtx.releases.Load())
	assert.Equal(t, []string{"agent_created", "cleanup"}, actions(result.Steps))
	assert.Equal(t, len(result.Steps), result.TotalSteps)
}

func TestProcessPurchaseRequestOutcomeFailed(t *testing.T) {
	execCtx := &fakeContext{id: "ctx-1", submit: func(context.Context, string) (*hosting.Outcome, error) {
		return &hosting.Outcome{
			Status:         hosting.RunStatusFailed,
			FailureMessage: "content filter triggered",
		}, nil
	}}

	r := New(&fakeProvider{execCtx: execCtx}, fakeChannel{})
	result := r.ProcessPurchaseRequest(context.Background(), "alice-001", "anything")

	require.False(t, result.Success)
	assert.Equal(t, "content filter triggered", result.ErrorMessage)
	assert.Equal(t, int32(1), execCtx.releases.Load())
}

func TestProcessPurchaseRequestSubmitPanic(t *testing.T) {
	execCtx := &fakeContext{id: "ctx-1", submit: func(context.Context, string) (*hosting.Outcome, error) {
		panic("unexpected provider state")
	}}

	r := New(&fakeProvider{execCtx: execCtx}, fakeChannel{})

	var result *Result
	require.NotPanics(t, func() {
		result = r.ProcessPurchaseRequest(context.Background(), "alice-001", "anything")
	})

	require.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "panic during agent run")
	assert.Contains(t, result.ErrorMessage, "unexpected provider state")

	// The panic path still releases the context exactly once.
	assert.Equal(t, int32(1), execCtx.releases.Load())
	assert.Contains(t, actions(result.Steps), "cleanup")
	assert.Equal(t, len(result.Steps), result.TotalSteps)
}

func TestProcessPurchaseRequestReleaseFailure(t *testing.T) {
	execCtx := &fakeContext{
		id:         "ctx-1",
		releaseErr: errors.New("delete rejected"),
		submit: func(context.Context, string) (*hosting.Outcome, error) {
			return completedOutcome("recommendation"), nil
		},
	}

	r := New(&fakeProvider{execCtx: execCtx}, fakeChannel{})
	result := r.ProcessPurchaseRequest(context.Background(), "alice-001", "anything")

	// A cleanup failure never flips a successful run.
	assert.True(t, result.Success)
	assert.Equal(t, "recommendation", result.Recommendation)
	assert.Equal(t, int32(1), execCtx.releases.Load())

	last := result.Steps[len(result.Steps)-1]
	assert.Equal(t, "cleanup", last.Action)
	assert.Contains(t, last.Reasoning, "delete rejected")
}

func TestProcessPurchaseRequestReleasePanic(t *testing.T) {
	execCtx := &fakeContext{
		id:           "ctx-1",
		releasePanic: "connection lost",
		submit: func(context.Context, string) (*hosting.Outcome, error) {
			return completedOutcome("recommendation"), nil
		},
	}

	r := New(&fakeProvider{execCtx: execCtx}, fakeChannel{})

	var result *Result
	require.NotPanics(t, func() {
		result = r.ProcessPurchaseRequest(context.Background(), "alice-001", "anything")
	})

	assert.True(t, result.Success)
	assert.Equal(t, int32(1), execCtx.releases.Load())

	last := result.Steps[len(result.Steps)-1]
	assert.Equal(t, "cleanup", last.Action)
	assert.Contains(t, last.Reasoning, "connection lost")
}

func TestProcessPurchaseRequestTimeout(t *testing.T) {
	execCtx := &fakeContext{id: "ctx-1", submit: func(ctx context.Context, _ string) (*hosting.Outcome, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	r := New(&fakeProvider{execCtx: execCtx}, fakeChannel{}, func(o *Options) {
		o.RunTimeout = 20 * time.Millisecond
	})

	result := r.ProcessPurchaseRequest(context.Background(), "alice-001", "anything")

	require.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, context.DeadlineExceeded.Error())

	// A timed out run still goes through cleanup.
	assert.Equal(t, int32(1), execCtx.releases.Load())
	assert.Contains(t, actions(result.Steps), "cleanup")
}

func TestProcessPurchaseRequestConcurrentRunsKeepSeparateSteps(t *testing.T) {
	execCtx := &fakeContext{id: "ctx-1", submit: func(context.Context, string) (*hosting.Outcome, error) {
		time.Sleep(5 * time.Millisecond)
		return completedOutcome("done"), nil
	}}

	r := New(&fakeProvider{execCtx: execCtx}, fakeChannel{})

	const runs = 8
	results := make([]*Result, runs)

	var wg sync.WaitGroup
	for i := range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.ProcessPurchaseRequest(context.Background(), "alice-001", "anything")
		}()
	}
	wg.Wait()

	for _, result := range results {
		require.NotNil(t, result)
		assert.Equal(t, len(result.Steps), result.TotalSteps)
		for j, step := range result.Steps {
			assert.Equal(t, j+1, step.StepNumber)
		}
	}
}

func TestResultString(t *testing.T) {
	ok := &Result{Success: true, TotalSteps: 5, ExecutionTime: 1200 * time.Millisecond}
	assert.Contains(t, ok.String(), "success after 5 steps")

	failed := &Result{Success: false, TotalSteps: 2, ErrorMessage: "boom"}
	assert.Contains(t, failed.String(), "failed after 2 steps")
	assert.Contains(t, failed.String(), "boom")
}

// Package runner orchestrates purchase request runs: it acquires an agent
// execution context from a hosting provider, submits the task, records every
// step and guarantees the context is released exactly once on every exit
// path, including panics and provider failures.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/procuremesh/channel"
	"github.com/hupe1980/procuremesh/core"
	"github.com/hupe1980/procuremesh/hosting"
	"github.com/hupe1980/procuremesh/logging"
)

// NoResponseRecommendation is the recommendation reported when a run
// completes without any assistant text. Such a run still counts as
// successful.
const NoResponseRecommendation = "No response from agent"

// DefaultInstructions is the system prompt used when no custom instructions
// are configured.
const DefaultInstructions = `You are a procurement assistant that helps employees with purchase requests.

For every request, work through these steps:
1. Look up the requesting user to find their department.
2. Check the department's purchasing policy (allowed categories and purchase strategy).
3. Check the department's remaining budget.
4. Search the product catalog for suitable products.
5. Compare supplier offers (price, delivery time, reliability) according to the department's purchase strategy.
6. Recommend a specific product and supplier, or explain why the request cannot be fulfilled.
7. If the department's policy requires auditing, create an audit record for the decision.

Base every statement on tool results. If a lookup fails, explain what is missing instead of guessing.`

const releaseTimeout = 30 * time.Second

// Options configures a Runner.
type Options struct {
	// AgentName identifies the acquired execution context.
	AgentName string
	// Instructions overrides DefaultInstructions.
	Instructions string
	// RunTimeout bounds one ProcessPurchaseRequest call. Zero means no
	// timeout. A timed out run still goes through context release.
	RunTimeout time.Duration
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Runner processes purchase requests against a hosting provider and a tool
// channel. A Runner is safe for concurrent use; every run keeps its own step
// state.
type Runner struct {
	provider     hosting.Provider
	channel      channel.Channel
	agentName    string
	instructions string
	runTimeout   time.Duration
	logger       logging.Logger
}

// New creates a Runner.
func New(provider hosting.Provider, ch channel.Channel, optFns ...func(o *Options)) *Runner {
	opts := Options{
		AgentName:    "purchase-request-agent",
		Instructions: DefaultInstructions,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		provider:     provider,
		channel:      ch,
		agentName:    opts.AgentName,
		instructions: opts.Instructions,
		runTimeout:   opts.RunTimeout,
		logger:       logging.OrNoOp(opts.Logger),
	}
}

// ProcessPurchaseRequest runs one purchase request to completion. It never
// panics and never returns an error: every failure is reported through the
// Result with Success set to false.
func (r *Runner) ProcessPurchaseRequest(ctx context.Context, userID, requestText string) *Result {
	start := time.Now()
	state := &runState{}

	if r.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.runTimeout)
		defer cancel()
	}

	task := fmt.Sprintf("I need help with a purchase request. User ID: %s, Request: %s", userID, requestText)

	r.logger.Info("runner.run.start", "user_id", userID)

	outcome, err := r.execute(ctx, task, state)

	result := r.assemble(outcome, err, state, start)

	r.logger.Info("runner.run.finished",
		"user_id", userID,
		"success", result.Success,
		"total_steps", result.TotalSteps,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result
}

// execute acquires an execution context, submits the task and releases the
// context. The release is deferred after the recover handler, so on a panic
// the context is released first and the panic is converted to an error
// second. Each of acquire, submit and release appears on every path exactly
// once.
func (r *Runner) execute(ctx context.Context, task string, state *runState) (outcome *hosting.Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("runner.run.panic", "panic", fmt.Sprintf("%v", rec))
			outcome = nil
			err = fmt.Errorf("panic during agent run: %v", rec)
		}
	}()

	spec := hosting.ContextSpec{
		Name:         r.agentName,
		Instructions: r.instructions,
		Channel:      r.channel,
		Observer:     state.observeTool,
	}

	execCtx, err := r.provider.AcquireContext(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("acquire execution context: %w", err)
	}

	defer r.releaseContext(execCtx, state)

	state.record(Step{
		Action:    "agent_created",
		Reasoning: fmt.Sprintf("acquired execution context %s", execCtx.ID()),
	})

	outcome, err = execCtx.Submit(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("submit task: %w", err)
	}

	state.record(Step{
		Action:    "response_received",
		Reasoning: fmt.Sprintf("run finished with status %s", outcome.Status),
	})

	return outcome, nil
}

// releaseContext frees the execution context. Release failures are recorded
// and swallowed so cleanup problems never change the run's outcome, and a
// panicking provider cannot escape the run. It uses a fresh context so a
// timed out or cancelled run still gets cleaned up.
func (r *Runner) releaseContext(execCtx hosting.ExecutionContext, state *runState) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("runner.release.panic", "context_id", execCtx.ID(), "panic", fmt.Sprintf("%v", rec))
			state.record(Step{
				Action:    "cleanup",
				Reasoning: fmt.Sprintf("release of execution context %s panicked: %v", execCtx.ID(), rec),
			})
		}
	}()

	relCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := execCtx.Release(relCtx); err != nil {
		r.logger.Warn("runner.release.failed", "context_id", execCtx.ID(), "error", err.Error())
		state.record(Step{
			Action:    "cleanup",
			Reasoning: fmt.Sprintf("release of execution context %s failed: %v", execCtx.ID(), err),
		})
		return
	}

	state.record(Step{
		Action:    "cleanup",
		Reasoning: fmt.Sprintf("released execution context %s", execCtx.ID()),
	})
}

// assemble turns the run outcome into a Result. It runs after execute has
// returned, so the cleanup step is already recorded and TotalSteps matches
// the step list.
func (r *Runner) assemble(outcome *hosting.Outcome, err error, state *runState, start time.Time) *Result {
	steps := state.snapshot()

	result := &Result{
		TotalSteps:    len(steps),
		Steps:         steps,
		ExecutionTime: time.Since(start),
	}

	switch {
	case err != nil:
		result.Success = false
		result.ErrorMessage = err.Error()
	case outcome.Status == hosting.RunStatusFailed:
		result.Success = false
		result.ErrorMessage = outcome.FailureMessage
		if result.ErrorMessage == "" {
			result.ErrorMessage = "agent run failed"
		}
	default:
		result.Success = true
		result.Reasoning = fmt.Sprintf("Based on agent execution with %d steps", len(steps))

		if text, ok := core.LastAssistantText(outcome.Messages); ok {
			result.Recommendation = text
		} else {
			result.Recommendation = NoResponseRecommendation
		}
	}

	return result
}

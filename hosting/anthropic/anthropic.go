// Package anthropic hosts agent execution contexts on the Anthropic Messages
// API. A context is acquired per run, drives the tool-use loop against the
// configured channel and must be released afterwards.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/hupe1980/procuremesh/channel"
	"github.com/hupe1980/procuremesh/core"
	"github.com/hupe1980/procuremesh/hosting"
	"github.com/hupe1980/procuremesh/logging"
)

// Options configures the Anthropic provider (model id, sampling, turn limit,
// API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	// MaxTurns bounds the request/tool-use round trips of one Submit.
	MaxTurns int
	Logger   logging.Logger
}

// Provider acquires execution contexts backed by the Anthropic Messages API.
type Provider struct {
	client *anthropic.Client
	opts   Options
}

// NewProvider creates a new Anthropic provider using the official client.
func NewProvider(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
		MaxTurns:    15,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Provider{
		client: &client,
		opts:   opts,
	}
}

// NewProviderFromClient creates a new Anthropic provider from an existing client.
func NewProviderFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Provider {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
		MaxTurns:    15,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Provider{
		client: client,
		opts:   opts,
	}
}

// AcquireContext implements hosting.Provider.
func (p *Provider) AcquireContext(ctx context.Context, spec hosting.ContextSpec) (hosting.ExecutionContext, error) {
	tools, err := spec.Channel.Tools()
	if err != nil {
		return nil, fmt.Errorf("anthropic: list tools: %w", err)
	}

	return &executionContext{
		id:     core.NewID(),
		client: p.client,
		opts:   p.opts,
		spec:   spec,
		tools:  buildTools(tools),
		logger: logging.OrNoOp(p.opts.Logger),
	}, nil
}

type executionContext struct {
	id     string
	client *anthropic.Client
	opts   Options
	spec   hosting.ContextSpec
	tools  []anthropic.ToolUnionParam
	logger logging.Logger

	mu       sync.Mutex
	released bool
}

// ID implements hosting.ExecutionContext.
func (e *executionContext) ID() string { return e.id }

// Release implements hosting.ExecutionContext. The Messages API holds no
// server-side agent state, so releasing only invalidates the handle locally.
func (e *executionContext) Release(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.released {
		return fmt.Errorf("anthropic: execution context %s already released", e.id)
	}
	e.released = true

	e.logger.Debug("anthropic.context.released", "context_id", e.id)

	return nil
}

// Submit implements hosting.ExecutionContext. It drives the tool-use loop
// until the model stops requesting tools or MaxTurns is reached.
func (e *executionContext) Submit(ctx context.Context, task string) (*hosting.Outcome, error) {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		return nil, fmt.Errorf("anthropic: execution context %s already released", e.id)
	}
	e.mu.Unlock()

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(task)),
	}
	transcript := []core.Content{core.NewTextContent("user", task)}

	for turn := 0; turn < e.opts.MaxTurns; turn++ {
		params := anthropic.MessageNewParams{
			Model:       e.opts.Model,
			Messages:    messages,
			MaxTokens:   e.opts.MaxTokens,
			Temperature: anthropic.Float(e.opts.Temperature),
			Tools:       e.tools,
		}
		if e.spec.Instructions != "" {
			params.System = []anthropic.TextBlockParam{{Text: e.spec.Instructions}}
		}

		resp, err := e.client.Messages.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("anthropic api error: %w", err)
		}

		assistantBlocks, toolCalls := splitResponse(resp)
		transcript = append(transcript, assistantContent(resp))

		if string(resp.StopReason) != "tool_use" || len(toolCalls) == 0 {
			return &hosting.Outcome{
				Status:   hosting.RunStatusCompleted,
				Messages: transcript,
			}, nil
		}

		messages = append(messages, anthropic.NewAssistantMessage(assistantBlocks...))

		resultBlocks := make([]anthropic.ContentBlockParamUnion, 0, len(toolCalls))
		toolParts := make([]core.Part, 0, len(toolCalls))

		for _, call := range toolCalls {
			result, resultErr := e.invoke(ctx, call)
			if resultErr != nil {
				return nil, resultErr
			}
			resultBlocks = append(resultBlocks, anthropic.NewToolResultBlock(call.ID, result.text, result.isError))
			toolParts = append(toolParts, core.ToolResultPart{
				ToolResult: core.ToolResult{
					ID:       call.ID,
					Name:     call.Name,
					Response: result.text,
					Error:    result.errText,
				},
			})
		}

		messages = append(messages, anthropic.NewUserMessage(resultBlocks...))
		transcript = append(transcript, core.Content{Role: "tool", Parts: toolParts})
	}

	return &hosting.Outcome{
		Status:         hosting.RunStatusFailed,
		Messages:       transcript,
		FailureMessage: fmt.Sprintf("no final response after %d turns", e.opts.MaxTurns),
	}, nil
}

type invokeResult struct {
	text    string
	errText string
	isError bool
}

// invoke runs one tool call through the channel. Tool-level failures become
// error-flagged tool results fed back to the model; only transport failures
// abort the run.
func (e *executionContext) invoke(ctx context.Context, call core.ToolCall) (invokeResult, error) {
	var args map[string]any
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			args = nil
		}
	}

	result, err := e.spec.Channel.Invoke(ctx, call.Name, args)

	obs := hosting.ToolObservation{Name: call.Name, Params: args, Result: result}
	if err != nil {
		obs.Err = err.Error()
	}
	if e.spec.Observer != nil {
		e.spec.Observer(obs)
	}

	if err != nil {
		if isTransport(err) {
			return invokeResult{}, err
		}
		return invokeResult{text: err.Error(), errText: err.Error(), isError: true}, nil
	}

	text := fmt.Sprintf("%v", result)
	if b, jsonErr := json.Marshal(result); jsonErr == nil {
		text = string(b)
	}

	return invokeResult{text: text}, nil
}

// splitResponse extracts re-sendable content blocks and the tool calls the
// model requested.
func splitResponse(resp *anthropic.Message) ([]anthropic.ContentBlockParamUnion, []core.ToolCall) {
	var blocks []anthropic.ContentBlockParamUnion
	var calls []core.ToolCall

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textBlock := block.AsText()
			if textBlock.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(textBlock.Text))
			}
		case "tool_use":
			toolBlock := block.AsToolUse()

			args := ""
			var input any
			if toolBlock.Input != nil {
				if argsBytes, err := json.Marshal(toolBlock.Input); err == nil {
					args = string(argsBytes)
					if err := json.Unmarshal(argsBytes, &input); err != nil {
						input = args
					}
				}
			}

			blocks = append(blocks, anthropic.NewToolUseBlock(toolBlock.ID, input, toolBlock.Name))
			calls = append(calls, core.ToolCall{
				ID:        toolBlock.ID,
				Name:      toolBlock.Name,
				Arguments: args,
			})
		}
	}

	return blocks, calls
}

// assistantContent converts a response into transcript form.
func assistantContent(resp *anthropic.Message) core.Content {
	var parts []core.Part

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textBlock := block.AsText()
			if textBlock.Text != "" {
				parts = append(parts, core.TextPart{Text: textBlock.Text})
			}
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := ""
			if toolBlock.Input != nil {
				if argsBytes, err := json.Marshal(toolBlock.Input); err == nil {
					args = string(argsBytes)
				}
			}
			parts = append(parts, core.ToolCallPart{
				ToolCall: core.ToolCall{
					ID:        toolBlock.ID,
					Name:      toolBlock.Name,
					Arguments: args,
				},
			})
		}
	}

	return core.Content{Role: "assistant", Parts: parts}
}

// buildTools converts channel definitions to Anthropic tool format.
func buildTools(defs []channel.Definition) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(defs))

	for i, def := range defs {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}

		if def.Parameters != nil {
			if properties, exists := def.Parameters["properties"]; exists {
				inputSchema.Properties = properties
			}
			if required, exists := def.Parameters["required"]; exists {
				if reqSlice, ok := required.([]string); ok {
					inputSchema.Required = reqSlice
				} else if reqInterface, ok := required.([]any); ok {
					var reqStrings []string
					for _, r := range reqInterface {
						if s, ok := r.(string); ok {
							reqStrings = append(reqStrings, s)
						}
					}
					inputSchema.Required = reqStrings
				}
			}
		}

		tu := anthropic.ToolUnionParamOfTool(inputSchema, def.Name)
		if def.Description != "" {
			tu.OfTool.Description = anthropic.String(def.Description)
		}
		anthropicTools[i] = tu
	}

	return anthropicTools
}

func isTransport(err error) bool {
	var te *channel.TransportError
	return errors.As(err, &te)
}

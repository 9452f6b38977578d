// Package openai hosts agent execution contexts on the OpenAI Chat
// Completions API (with function/tool calling). It mirrors the Anthropic
// provider's contract: acquire a context per run, submit the task, release.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/procuremesh/channel"
	"github.com/hupe1980/procuremesh/core"
	"github.com/hupe1980/procuremesh/hosting"
	"github.com/hupe1980/procuremesh/logging"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configure the OpenAI provider.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	// MaxTurns bounds the request/tool-call round trips of one Submit.
	MaxTurns int
	Logger   logging.Logger
}

// Provider acquires execution contexts backed by the Chat Completions API.
type Provider struct {
	client *openai.Client
	opts   Options
}

// NewProvider creates a new OpenAI provider using the official client.
func NewProvider(optFns ...func(o *Options)) *Provider {
	opts := defaultedOptions(optFns)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := openai.NewClient(clientOpts...)

	return &Provider{client: &client, opts: opts}
}

// NewProviderFromClient creates a new OpenAI provider from an existing client.
func NewProviderFromClient(client *openai.Client, optFns ...func(o *Options)) *Provider {
	return &Provider{client: client, opts: defaultedOptions(optFns)}
}

func defaultedOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		MaxTurns:            15,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// AcquireContext implements hosting.Provider.
func (p *Provider) AcquireContext(ctx context.Context, spec hosting.ContextSpec) (hosting.ExecutionContext, error) {
	defs, err := spec.Channel.Tools()
	if err != nil {
		return nil, fmt.Errorf("openai: list tools: %w", err)
	}

	return &executionContext{
		id:     core.NewID(),
		client: p.client,
		opts:   p.opts,
		spec:   spec,
		tools:  buildTools(defs),
		logger: logging.OrNoOp(p.opts.Logger),
	}, nil
}

type executionContext struct {
	id     string
	client *openai.Client
	opts   Options
	spec   hosting.ContextSpec
	tools  []openai.ChatCompletionToolParam
	logger logging.Logger

	mu       sync.Mutex
	released bool
}

// ID implements hosting.ExecutionContext.
func (e *executionContext) ID() string { return e.id }

// Release implements hosting.ExecutionContext.
func (e *executionContext) Release(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.released {
		return fmt.Errorf("openai: execution context %s already released", e.id)
	}
	e.released = true

	e.logger.Debug("openai.context.released", "context_id", e.id)

	return nil
}

// Submit implements hosting.ExecutionContext.
func (e *executionContext) Submit(ctx context.Context, task string) (*hosting.Outcome, error) {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		return nil, fmt.Errorf("openai: execution context %s already released", e.id)
	}
	e.mu.Unlock()

	var messages []openai.ChatCompletionMessageParamUnion
	if e.spec.Instructions != "" {
		messages = append(messages, openai.SystemMessage(e.spec.Instructions))
	}
	messages = append(messages, openai.UserMessage(task))

	transcript := []core.Content{core.NewTextContent("user", task)}

	for turn := 0; turn < e.opts.MaxTurns; turn++ {
		params := openai.ChatCompletionNewParams{
			Messages:            messages,
			Model:               e.opts.Model,
			Temperature:         openai.Float(e.opts.Temperature),
			MaxCompletionTokens: openai.Int(e.opts.MaxCompletionTokens),
			Tools:               e.tools,
		}

		resp, err := e.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("openai api error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("openai: no choices returned")
		}

		choice := resp.Choices[0]
		transcript = append(transcript, assistantContent(choice))

		if len(choice.Message.ToolCalls) == 0 {
			return &hosting.Outcome{
				Status:   hosting.RunStatusCompleted,
				Messages: transcript,
			}, nil
		}

		toolCalls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(choice.Message.ToolCalls))
		for _, tc := range choice.Message.ToolCalls {
			toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
				ID:   tc.ID,
				Type: "function",
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		messages = append(
			messages,
			openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
				Role:      "assistant",
				ToolCalls: toolCalls,
			}},
		)

		toolParts := make([]core.Part, 0, len(choice.Message.ToolCalls))
		for _, tc := range choice.Message.ToolCalls {
			result, resultErr := e.invoke(ctx, tc.Function.Name, tc.Function.Arguments)
			if resultErr != nil {
				return nil, resultErr
			}
			messages = append(messages, openai.ToolMessage(result.text, tc.ID))
			toolParts = append(toolParts, core.ToolResultPart{
				ToolResult: core.ToolResult{
					ID:       tc.ID,
					Name:     tc.Function.Name,
					Response: result.text,
					Error:    result.errText,
				},
			})
		}
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
}

// invoke runs one tool call through the channel. Tool-level failures feed
// back to the model as tool messages; transport failures abort the run.
func (e *executionContext) invoke(ctx context.Context, name, rawArgs string) (invokeResult, error) {
	var args map[string]any
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			args = nil
		}
	}

	result, err := e.spec.Channel.Invoke(ctx, name, args)

	obs := hosting.ToolObservation{Name: name, Params: args, Result: result}
	if err != nil {
		obs.Err = err.Error()
	}
	if e.spec.Observer != nil {
		e.spec.Observer(obs)
	}

	if err != nil {
		var te *channel.TransportError
		if errors.As(err, &te) {
			return invokeResult{}, err
		}
		return invokeResult{text: err.Error(), errText: err.Error()}, nil
	}

	text := fmt.Sprintf("%v", result)
	if b, jsonErr := json.Marshal(result); jsonErr == nil {
		text = string(b)
	}

	return invokeResult{text: text}, nil
}

func assistantContent(choice openai.ChatCompletionChoice) core.Content {
	parts := make([]core.Part, 0, len(choice.Message.ToolCalls)+1)

	if choice.Message.Content != "" {
		parts = append(parts, core.TextPart{Text: choice.Message.Content})
	}
	for _, tc := range choice.Message.ToolCalls {
		parts = append(parts, core.ToolCallPart{
			ToolCall: core.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}

	return core.Content{Role: "assistant", Parts: parts}
}

// buildTools converts channel definitions to OpenAI tool format.
func buildTools(defs []channel.Definition) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, len(defs))
	for i, def := range defs {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  def.Parameters,
			},
		}
	}
	return tools
}

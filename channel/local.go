package channel

import (
	"context"
	"fmt"

	"github.com/hupe1980/procuremesh/core"
	"github.com/hupe1980/procuremesh/logging"
	"github.com/hupe1980/procuremesh/tool"
)

// LocalOptions configures a LocalChannel.
type LocalOptions struct {
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// LocalChannel serves tool invocations in-process from a registry of tools.
// Registration order is preserved in Tools. Safe for concurrent use after
// construction.
type LocalChannel struct {
	tools  map[string]tool.Tool
	order  []string
	logger logging.Logger
}

// NewLocalChannel creates a LocalChannel over the given tools. Duplicate tool
// names are rejected.
func NewLocalChannel(tools []tool.Tool, optFns ...func(o *LocalOptions)) (*LocalChannel, error) {
	opts := LocalOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &LocalChannel{
		tools:  make(map[string]tool.Tool, len(tools)),
		logger: logging.OrNoOp(opts.Logger),
	}

	for _, t := range tools {
		if _, dup := c.tools[t.Name()]; dup {
			return nil, fmt.Errorf("channel: duplicate tool name %q", t.Name())
		}
		c.tools[t.Name()] = t
		c.order = append(c.order, t.Name())
	}

	return c, nil
}

// Tools implements Channel.
func (c *LocalChannel) Tools() ([]Definition, error) {
	defs := make([]Definition, 0, len(c.order))
	for _, name := range c.order {
		t := c.tools[name]
		defs = append(defs, Definition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs, nil
}

// Invoke implements Channel. Unknown tool names and panicking tools are
// reported as tool-level failures so the execution context can recover.
func (c *LocalChannel) Invoke(ctx context.Context, name string, args map[string]any) (result any, err error) {
	t, ok := c.tools[name]
	if !ok {
		return nil, tool.NewToolError(name, fmt.Sprintf("unknown tool: %s", name), tool.CodeUnknownTool)
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("channel.invoke.panic", "tool", name, "panic", fmt.Sprintf("%v", r))
			result = nil
			err = tool.NewToolError(name, fmt.Sprintf("tool panicked: %v", r), tool.CodeExecution)
		}
	}()

	callCtx := tool.NewCallContext(ctx, core.NewID(), c.logger)

	return t.Call(callCtx, args)
}

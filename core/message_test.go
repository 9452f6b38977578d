package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastAssistantText(t *testing.T) {
	messages := []Content{
		NewTextContent("user", "I need a laptop"),
		{Role: "assistant", Parts: []Part{
			TextPart{Text: "Let me check the catalog."},
			ToolCallPart{ToolCall: ToolCall{ID: "tc1", Name: "get_user", Arguments: `{"user_id":"alice-001"}`}},
		}},
		{Role: "tool", Parts: []Part{
			ToolResultPart{ToolResult: ToolResult{ID: "tc1", Name: "get_user", Response: "ok"}},
		}},
		{Role: "assistant", Parts: []Part{
			TextPart{Text: "I recommend the Business Laptop."},
		}},
	}

	text, ok := LastAssistantText(messages)
	assert.True(t, ok)
	assert.Equal(t, "I recommend the Business Laptop.", text)
}

func TestLastAssistantText_NoAssistantText(t *testing.T) {
	messages := []Content{
		NewTextContent("user", "hello"),
		{Role: "assistant", Parts: []Part{
			ToolCallPart{ToolCall: ToolCall{ID: "tc1", Name: "search_products"}},
		}},
	}

	_, ok := LastAssistantText(messages)
	assert.False(t, ok)
}

func TestContentAccessors(t *testing.T) {
	c := Content{Role: "assistant", Parts: []Part{
		TextPart{Text: "checking "},
		TextPart{Text: "budget"},
		ToolCallPart{ToolCall: ToolCall{ID: "a", Name: "get_department_budget"}},
		ToolCallPart{ToolCall: ToolCall{ID: "b", Name: "get_supplier_info"}},
	}}

	assert.Equal(t, "checking budget", c.Text())

	calls := c.GetToolCalls()
	assert.Len(t, calls, 2)
	assert.Equal(t, "get_department_budget", calls[0].Name)
	assert.Equal(t, "get_supplier_info", calls[1].Name)
	assert.Empty(t, c.GetToolResults())
}

package core

import "github.com/google/uuid"

// NewID generates a new unique identifier for runs, tool calls and records.
func NewID() string { return uuid.NewString() }

// LastAssistantText scans an ordered message transcript backwards for the
// most recent assistant-authored message containing a text part and returns
// its text. The boolean reports whether such a message was found. Tool call
// and tool result parts are ignored.
func LastAssistantText(messages []Content) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role != "assistant" {
			continue
		}
		for _, p := range msg.Parts {
			if tp, ok := p.(TextPart); ok && tp.Text != "" {
				return tp.Text, true
			}
		}
	}
	return "", false
}

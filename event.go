package mesa

import (
	"encoding/json"
	"time"
)

// Event is a sealed interface representing one turn event in a conversation.
// The unexported marker method prevents external implementations.
// Role() returns the event's role without requiring a type switch.
type Event interface {
	isEvent()
	Role() Role
}

// UserMessage represents an inbound message from the guest.
type UserMessage struct {
	Text      string
	Timestamp time.Time
}

func (UserMessage) isEvent() {}

// Role returns RoleUser.
func (UserMessage) Role() Role { return RoleUser }

// AssistantMessage represents a reply from the model, optionally carrying
// tool calls the model wants executed before the conversation continues.
type AssistantMessage struct {
	Text      string
	ToolCalls []ToolCall
	Timestamp time.Time
}

func (AssistantMessage) isEvent() {}

// Role returns RoleAssistant.
func (AssistantMessage) Role() Role { return RoleAssistant }

// HasToolCalls reports whether the assistant requested any tool executions.
func (m AssistantMessage) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// ToolResultMessage represents the structured result of one tool execution,
// tagged with the originating call's ID so pairing is unambiguous.
type ToolResultMessage struct {
	ToolCallID string
	ToolName   string
	Payload    json.RawMessage
	IsError    bool
	Timestamp  time.Time
}

func (ToolResultMessage) isEvent() {}

// Role returns RoleToolResult.
func (ToolResultMessage) Role() Role { return RoleToolResult }

// ToolCall is a model-issued request to invoke a named tool.
// Arguments are untyped JSON at this layer; the invoked operation validates them.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// LastUserIndex returns the index of the most recent UserMessage in events,
// or -1 if none exists.
func LastUserIndex(events []Event) int {
	for i := len(events) - 1; i >= 0; i-- {
		if _, ok := events[i].(UserMessage); ok {
			return i
		}
	}
	return -1
}

// Interface compliance checks.
var (
	_ Event = UserMessage{}
	_ Event = AssistantMessage{}
	_ Event = ToolResultMessage{}
)

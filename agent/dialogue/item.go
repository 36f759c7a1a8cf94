// Package dialogue holds the per-role conversation history and the bounded
// carry-over used when one role hands the call to another.
package dialogue

import (
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

type Kind string

const (
	KindMessage      Kind = "message"
	KindInstructions Kind = "instructions"
	KindToolCall     Kind = "tool_call"
	KindToolResult   Kind = "tool_result"
)

// Item is one timestamped dialogue record. ID is stable across copies and is
// what de-duplicates items carried between roles.
type Item struct {
	ID         string            `json:"id"`
	Kind       Kind              `json:"kind"`
	Role       schema.RoleType   `json:"role"`
	Content    string            `json:"content,omitempty"`
	ToolCalls  []schema.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	Language   string            `json:"language,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func newItem(kind Kind, role schema.RoleType, content string) Item {
	return Item{
		ID:        uuid.NewString(),
		Kind:      kind,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func Instructions(content string) Item {
	return newItem(KindInstructions, schema.System, content)
}

func UserMessage(content, language string) Item {
	it := newItem(KindMessage, schema.User, content)
	it.Language = language
	return it
}

func AssistantMessage(content string) Item {
	return newItem(KindMessage, schema.Assistant, content)
}

func ToolCall(content string, calls []schema.ToolCall) Item {
	it := newItem(KindToolCall, schema.Assistant, content)
	it.ToolCalls = calls
	return it
}

func ToolResult(callID, content string) Item {
	it := newItem(KindToolResult, schema.Tool, content)
	it.ToolCallID = callID
	return it
}

// Message converts the item for the chat model.
func (it Item) Message() *schema.Message {
	switch it.Kind {
	case KindInstructions:
		return schema.SystemMessage(it.Content)
	case KindToolCall:
		return schema.AssistantMessage(it.Content, it.ToolCalls)
	case KindToolResult:
		return schema.ToolMessage(it.Content, it.ToolCallID)
	default:
		return &schema.Message{Role: it.Role, Content: it.Content}
	}
}

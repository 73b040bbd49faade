package schema

import (
	"encoding/json"
	"strings"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Message is one turn of a conversation. Providers marshal the content
// blocks to their own wire format.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
	Tokens  uint           `json:"tokens,omitempty"`
	Result  ResultType     `json:"result,omitempty"`
}

// ContentBlock holds exactly one of text, a tool call or a tool result
type ContentBlock struct {
	Text       *string     `json:"text,omitempty"`
	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// ToolCall is a tool invocation requested by the model. The ID is assigned
// by the provider and echoed in the result.
type ToolCall struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
}

// ToolResult is the outcome of a tool call, returned to the model. A failed
// call carries the kind of failure so that providers which support it can
// flag the result as an error.
type ToolResult struct {
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
	IsError bool            `json:"is_error,omitempty"`
	Kind    string          `json:"error_kind,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewMessage returns a message with one text block
func NewMessage(role, text string) *Message {
	return &Message{
		Role:    role,
		Content: []ContentBlock{{Text: types.Ptr(text)}},
	}
}

// NewToolResult returns a block answering the call id with v encoded as
// JSON. A value which cannot be encoded is returned as a failed result.
func NewToolResult(id, name string, v any) ContentBlock {
	result := &ToolResult{ID: id, Name: name}
	if data, err := json.Marshal(v); err != nil {
		result.Content, _ = json.Marshal(err.Error())
		result.IsError = true
		result.Kind = "internal"
	} else {
		result.Content = data
	}
	return ContentBlock{ToolResult: result}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Text joins the text blocks of the message with newlines
func (m Message) Text() string {
	var b strings.Builder
	for _, block := range m.Content {
		if block.Text == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(*block.Text)
	}
	return b.String()
}

// ToolCalls returns the calls requested in the message, in order
func (m Message) ToolCalls() []ToolCall {
	result := make([]ToolCall, 0, len(m.Content))
	for _, block := range m.Content {
		if block.ToolCall != nil {
			result = append(result, *block.ToolCall)
		}
	}
	return result
}

// ToolResults returns the results carried in the message, in order
func (m Message) ToolResults() []ToolResult {
	result := make([]ToolResult, 0, len(m.Content))
	for _, block := range m.Content {
		if block.ToolResult != nil {
			result = append(result, *block.ToolResult)
		}
	}
	return result
}

// WantsTools returns true when the model stopped to request tool calls
func (m Message) WantsTools() bool {
	if m.Result == ResultToolCall {
		return true
	}
	for _, block := range m.Content {
		if block.ToolCall != nil {
			return true
		}
	}
	return false
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (m Message) String() string {
	return types.Stringify(m)
}

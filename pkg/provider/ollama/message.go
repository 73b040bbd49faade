package ollama

import (
	"encoding/json"
	"fmt"

	// Packages
	schema "github.com/atagle123/AgentFace/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Message is a chat message in the ollama wire format
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	ToolName  string     `json:"tool_name,omitempty"` // function name when role is tool
}

type ToolCall struct {
	Type     string           `json:"type,omitempty"` // function
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Index     int            `json:"index,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Tool is a function definition offered to the model
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters"`
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// messagesFor converts a conversation into ollama messages. Each tool result
// becomes its own message with the tool role.
func messagesFor(system string, conversation []*schema.Message) ([]*Message, error) {
	result := make([]*Message, 0, len(conversation)+1)
	if system != "" {
		result = append(result, &Message{Role: schema.RoleSystem, Content: system})
	}
	for _, message := range conversation {
		if message == nil {
			continue
		}
		for _, r := range message.ToolResults() {
			result = append(result, &Message{
				Role:     schema.RoleTool,
				Content:  string(r.Content),
				ToolName: r.Name,
			})
		}
		if message.Role == schema.RoleTool {
			continue
		}
		m := &Message{Role: message.Role, Content: message.Text()}
		for i, call := range message.ToolCalls() {
			args := map[string]any{}
			if len(call.Input) > 0 {
				if err := json.Unmarshal(call.Input, &args); err != nil {
					return nil, fmt.Errorf("tool call %q: %w", call.Name, err)
				}
			}
			m.ToolCalls = append(m.ToolCalls, ToolCall{
				Type:     "function",
				Function: ToolCallFunction{Index: i, Name: call.Name, Arguments: args},
			})
		}
		result = append(result, m)
	}
	return result, nil
}

// toolsFor converts tool definitions into ollama function tools
func toolsFor(defs []schema.ToolDefinition) []Tool {
	if len(defs) == 0 {
		return nil
	}
	result := make([]Tool, 0, len(defs))
	for _, def := range defs {
		var parameters any = map[string]any{"type": "object"}
		if def.InputSchema != nil {
			parameters = def.InputSchema
		}
		result = append(result, Tool{
			Type: "function",
			Function: ToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  parameters,
			},
		})
	}
	return result
}

// toSchema converts a response message into a conversation message
func (m Message) toSchema(reason string) (*schema.Message, error) {
	message := &schema.Message{Role: schema.RoleAssistant}
	if m.Content != "" {
		text := m.Content
		message.Content = append(message.Content, schema.ContentBlock{Text: &text})
	}
	for i, call := range m.ToolCalls {
		input, err := json.Marshal(call.Function.Arguments)
		if err != nil {
			return nil, err
		}
		message.Content = append(message.Content, schema.ContentBlock{
			ToolCall: &schema.ToolCall{
				ID:    fmt.Sprintf("call_%d", i),
				Name:  call.Function.Name,
				Input: input,
			},
		})
	}
	switch {
	case len(m.ToolCalls) > 0:
		message.Result = schema.ResultToolCall
	case reason == "length":
		message.Result = schema.ResultMaxTokens
	default:
		message.Result = schema.ResultStop
	}
	return message, nil
}

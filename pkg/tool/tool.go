package tool

import (
	"context"
	"encoding/json"
	"sort"
	"unicode"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Tool is an interface for a tool with a name, description and JSON schema
type Tool interface {
	// Return the name of the tool
	Name() string

	// Return the description of the tool
	Description() string

	// Return the JSON schema for the tool input
	Schema() (*jsonschema.Schema, error)

	// Run the tool with the given input as JSON (may be nil)
	Run(ctx context.Context, input json.RawMessage) (any, error)
}

// Toolkit is a collection of tools with unique names
type Toolkit struct {
	tools map[string]Tool
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewToolkit creates a new toolkit with the given tools.
// Returns an error if any tool has an invalid or duplicate name.
func NewToolkit(tools ...Tool) (*Toolkit, error) {
	tk := &Toolkit{
		tools: make(map[string]Tool),
	}
	if err := tk.Register(tools...); err != nil {
		return nil, err
	}
	return tk, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Tools returns all tools in the toolkit, sorted by name
func (tk *Toolkit) Tools() []Tool {
	result := make([]Tool, 0, len(tk.tools))
	for _, t := range tk.tools {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// Len returns the number of tools in the toolkit
func (tk *Toolkit) Len() int {
	return len(tk.tools)
}

// Register adds one or more tools to the toolkit. Returns ErrBadParameter
// for an invalid name and ErrConflict for a name which is already
// registered. Tools registered before the failing one are kept.
func (tk *Toolkit) Register(tools ...Tool) error {
	for _, t := range tools {
		if t == nil {
			return agentface.ErrBadParameter.With("nil tool")
		}
		name := t.Name()
		if !IsIdentifier(name) {
			return agentface.ErrBadParameter.Withf("invalid tool name: %q", name)
		}
		if _, exists := tk.tools[name]; exists {
			return agentface.ErrConflict.Withf("duplicate tool name: %q", name)
		}
		tk.tools[name] = t
	}
	return nil
}

// Lookup returns a tool by name, or nil if not found
func (tk *Toolkit) Lookup(name string) Tool {
	return tk.tools[name]
}

// Run executes a tool by name with the given input.
// The input should be json.RawMessage or nil.
// Returns an error if the tool is not found, the input does not match the schema,
// or the tool execution fails.
func (tk *Toolkit) Run(ctx context.Context, name string, input any) (any, error) {
	tool := tk.Lookup(name)
	if tool == nil {
		return nil, agentface.ErrNotFound.Withf("tool not found: %q", name)
	}
	return Run(ctx, tool, input)
}

// Definitions returns the model-facing definitions of all tools
func (tk *Toolkit) Definitions() ([]schema.ToolDefinition, error) {
	return Definitions(tk.Tools()...)
}

// Meta returns the listing metadata of all tools
func (tk *Toolkit) Meta() ([]schema.ToolMeta, error) {
	result := make([]schema.ToolMeta, 0, len(tk.tools))
	for _, t := range tk.Tools() {
		meta := schema.ToolMeta{Name: t.Name(), Description: t.Description()}
		if s, err := t.Schema(); err != nil {
			return nil, err
		} else if s != nil {
			data, err := json.Marshal(s)
			if err != nil {
				return nil, err
			}
			meta.Schema = data
		}
		result = append(result, meta)
	}
	return result, nil
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (tk *Toolkit) String() string {
	names := make([]string, 0, len(tk.tools))
	for _, t := range tk.Tools() {
		names = append(names, t.Name())
	}
	return types.Stringify(names)
}

///////////////////////////////////////////////////////////////////////////////
// FUNCTIONS

// Run validates input against the tool schema and runs the tool
func Run(ctx context.Context, tool Tool, input any) (any, error) {
	// Convert input to json.RawMessage
	var rawInput json.RawMessage
	if input != nil {
		switch v := input.(type) {
		case json.RawMessage:
			rawInput = v
		case []byte:
			rawInput = json.RawMessage(v)
		default:
			data, err := json.Marshal(input)
			if err != nil {
				return nil, agentface.ErrBadParameter.Withf("failed to marshal input: %v", err)
			}
			rawInput = json.RawMessage(data)
		}
	}

	// Validate input against schema if provided
	if len(rawInput) > 0 {
		schema, err := tool.Schema()
		if err != nil {
			return nil, agentface.ErrBadParameter.Withf("schema generation failed: %v", err)
		}
		if schema != nil {
			var mapInput map[string]any
			if err := json.Unmarshal(rawInput, &mapInput); err != nil {
				return nil, agentface.ErrBadParameter.Withf("failed to unmarshal JSON input: %v", err)
			}
			resolved, err := schema.Resolve(nil)
			if err != nil {
				return nil, agentface.ErrBadParameter.Withf("schema resolution failed: %v", err)
			}
			if err := resolved.Validate(mapInput); err != nil {
				return nil, agentface.ErrBadParameter.Withf("input validation failed: %v", err)
			}
		}
	}

	// Run the tool with raw JSON
	return tool.Run(ctx, rawInput)
}

// Definitions returns the model-facing definitions for the given tools
func Definitions(tools ...Tool) ([]schema.ToolDefinition, error) {
	result := make([]schema.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		s, err := t.Schema()
		if err != nil {
			return nil, agentface.ErrBadParameter.Withf("tool %q: %v", t.Name(), err)
		}
		result = append(result, schema.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: s,
		})
	}
	return result, nil
}

// IsIdentifier returns true if the string starts with a letter or
// underscore and contains only letters, digits and underscores
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

package agentface

import (
	"context"

	// Packages
	opt "github.com/atagle123/AgentFace/pkg/opt"
	schema "github.com/atagle123/AgentFace/pkg/schema"
)

// Generator is a chat model which can answer a conversation and request
// tool calls. Implementations must not retain the conversation or options
// between calls.
type Generator interface {
	// Return the model name
	Name() string

	// Generate the next assistant message for the conversation. The returned
	// message has Result set to schema.ResultToolCall when it requests tools.
	Generate(ctx context.Context, conversation []*schema.Message, tools []schema.ToolDefinition, opts ...opt.Opt) (*schema.Message, error)
}

// Embedder returns one embedding vector per input text
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

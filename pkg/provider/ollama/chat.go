package ollama

import (
	"context"
	"encoding/json"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	opt "github.com/atagle123/AgentFace/pkg/opt"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Model is a named ollama model which generates chat messages and
// embeddings
type Model struct {
	client   *Client
	name     string
	defaults []opt.Opt
}

var _ agentface.Generator = (*Model)(nil)
var _ agentface.Embedder = (*Model)(nil)

// Chat Response
type Response struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Message   Message   `json:"message"`
	Done      bool      `json:"done"`
	Reason    string    `json:"done_reason,omitempty"`
	Metrics
}

// Metrics
type Metrics struct {
	TotalDuration      time.Duration `json:"total_duration,omitempty"`
	LoadDuration       time.Duration `json:"load_duration,omitempty"`
	PromptEvalCount    int           `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration time.Duration `json:"prompt_eval_duration,omitempty"`
	EvalCount          int           `json:"eval_count,omitempty"`
	EvalDuration       time.Duration `json:"eval_duration,omitempty"`
}

type reqChat struct {
	Model    string         `json:"model"`
	Messages []*Message     `json:"messages"`
	Tools    []Tool         `json:"tools,omitempty"`
	Format   any            `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
	Stream   bool           `json:"stream"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r Response) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Name returns the model name
func (m *Model) Name() string {
	return m.name
}

// Generate the next assistant message for the conversation
func (m *Model) Generate(ctx context.Context, conversation []*schema.Message, tools []schema.ToolDefinition, opts ...opt.Opt) (*schema.Message, error) {
	response, err := m.client.Chat(ctx, m.name, conversation, tools, append(append([]opt.Opt{}, m.defaults...), opts...)...)
	if err != nil {
		return nil, err
	}
	message, err := response.Message.toSchema(response.Reason)
	if err != nil {
		return nil, err
	}
	message.Tokens = uint(response.EvalCount)
	return message, nil
}

// Chat sends a conversation to the named model and returns the complete
// response
func (ollama *Client) Chat(ctx context.Context, model string, conversation []*schema.Message, tools []schema.ToolDefinition, opts ...opt.Opt) (*Response, error) {
	if model == "" {
		return nil, agentface.ErrBadParameter.With("missing model name")
	}

	// Apply options
	o, err := opt.Apply(opts...)
	if err != nil {
		return nil, err
	}

	// Messages
	messages, err := messagesFor(o.GetString(opt.SystemPromptKey), conversation)
	if err != nil {
		return nil, agentface.ErrBadParameter.With(err)
	}

	// Request
	req, err := client.NewJSONRequest(reqChat{
		Model:    model,
		Messages: messages,
		Tools:    toolsFor(tools),
		Format:   formatFor(o.GetString(opt.FormatKey)),
		Options:  optionsFor(o.Has(opt.TemperatureKey), o.GetFloat64(opt.TemperatureKey), o.GetUint(opt.MaxTokensKey)),
		Stream:   false,
	})
	if err != nil {
		return nil, err
	}

	// Response
	var response Response
	if err := ollama.DoWithContext(ctx, req, &response, client.OptPath("chat")); err != nil {
		return nil, err
	}

	// Return success
	return &response, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// formatFor returns "json", a JSON schema, or nil
func formatFor(format string) any {
	switch {
	case format == "":
		return nil
	case json.Valid([]byte(format)) && format[0] == '{':
		return json.RawMessage(format)
	default:
		return format
	}
}

func optionsFor(hasTemperature bool, temperature float64, maxTokens uint) map[string]any {
	options := make(map[string]any, 2)
	if hasTemperature {
		options["temperature"] = temperature
	}
	if maxTokens > 0 {
		options["num_predict"] = maxTokens
	}
	if len(options) == 0 {
		return nil
	}
	return options
}

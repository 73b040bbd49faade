package agent

import (
	"context"
	"encoding/json"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	logger "github.com/atagle123/AgentFace/pkg/logger"
	opt "github.com/atagle123/AgentFace/pkg/opt"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	types "github.com/mutablelogic/go-server/pkg/types"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Runner executes tasks with a fixed model and set of tools
type Runner struct {
	model    agentface.Generator
	tools    map[string]tool.Tool
	defs     []schema.ToolDefinition
	maxSteps uint
	system   string
	tracer   trace.Tracer
}

// Response is the outcome of a run
type Response struct {
	Text  string `json:"text"`
	Steps uint   `json:"steps"`
	Calls []Call `json:"calls,omitempty"`
}

// Call records a tool call made during a run
type Call struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	Input    json.RawMessage `json:"input,omitempty"`
	Result   tool.Result     `json:"result"`
	Duration time.Duration   `json:"duration"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r Response) String() string {
	return types.Stringify(r)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Definitions returns the tool definitions offered to the model
func (r *Runner) Definitions() []schema.ToolDefinition {
	return r.defs
}

// Run answers the task and returns the final text
func (r *Runner) Run(ctx context.Context, task string, opts ...opt.Opt) (string, error) {
	response, err := r.Execute(ctx, task, opts...)
	if err != nil {
		return "", err
	}
	return response.Text, nil
}

// Execute answers the task, calling tools as the model requests them, and
// returns the final text with a record of every tool call. Each call starts
// a new conversation. Errors from the model are returned unchanged, and tool
// failures are passed back to the model as structured results.
func (r *Runner) Execute(ctx context.Context, task string, opts ...opt.Opt) (_ *Response, err error) {
	ctx, endSpan := otel.StartSpan(r.tracer, ctx, "AgentRun",
		attribute.String("model", r.model.Name()),
		attribute.Int("tools", len(r.defs)),
	)
	defer func() { endSpan(err) }()

	if r.system != "" {
		opts = append([]opt.Opt{opt.WithSystemPrompt(r.system)}, opts...)
	}

	log := logger.FromContext(ctx)
	response := new(Response)
	conversation := []*schema.Message{schema.NewMessage(schema.RoleUser, task)}
	for response.Steps < r.maxSteps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Generate the next message
		response.Steps++
		message, err := r.model.Generate(ctx, conversation, r.defs, opts...)
		if err != nil {
			return nil, err
		}
		conversation = append(conversation, message)

		// Return the answer when no tools are requested
		calls := message.ToolCalls()
		if !message.WantsTools() || len(calls) == 0 {
			response.Text = message.Text()
			return response, nil
		}

		// Run each tool and feed back the results
		results := &schema.Message{Role: schema.RoleTool}
		for _, call := range calls {
			record := r.call(ctx, call)
			log.DebugContext(ctx, "tool call", "step", response.Steps, "tool", call.Name, "status", record.Result.Status, "duration", record.Duration)
			response.Calls = append(response.Calls, record)
			results.Content = append(results.Content, resultBlock(call, record.Result))
		}
		conversation = append(conversation, results)
	}

	// Exhausted the number of steps
	return nil, agentface.ErrMaxSteps.Withf("%d steps", r.maxSteps)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (r *Runner) call(ctx context.Context, call schema.ToolCall) Call {
	start := time.Now()
	var result tool.Result
	if t, exists := r.tools[call.Name]; exists {
		result = tool.NewResult(tool.Run(ctx, t, call.Input))
	} else {
		result = tool.NewResult(nil, agentface.ErrNotFound.Withf("tool %q", call.Name))
	}
	return Call{
		ID:       call.ID,
		Name:     call.Name,
		Input:    call.Input,
		Result:   result,
		Duration: time.Since(start),
	}
}

func resultBlock(call schema.ToolCall, result tool.Result) schema.ContentBlock {
	block := schema.NewToolResult(call.ID, call.Name, result)
	if !result.OK() {
		block.ToolResult.IsError = true
		block.ToolResult.Kind = result.Kind
	}
	return block
}

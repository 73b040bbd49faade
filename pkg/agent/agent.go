/*
agent wraps a chat model and a collection of tools. A Runner, created by
Setup, answers a task by letting the model call tools until it returns a
final answer.
*/
package agent

import (
	"sync"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Agent holds a model and a growable collection of tools
type Agent struct {
	sync.Mutex
	model    agentface.Generator
	tools    []tool.Tool
	maxSteps uint
	system   string
	tracer   trace.Tracer
}

// Opt configures an agent
type Opt func(*Agent) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultMaxSteps = 20
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns an agent for the model
func New(model agentface.Generator, opts ...Opt) (*Agent, error) {
	if model == nil {
		return nil, agentface.ErrBadParameter.With("missing model")
	}
	agent := &Agent{
		model:    model,
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		if err := opt(agent); err != nil {
			return nil, err
		}
	}
	return agent, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithMaxSteps limits the number of model turns in a run
func WithMaxSteps(n uint) Opt {
	return func(a *Agent) error {
		if n == 0 {
			return agentface.ErrBadParameter.With("max steps must be at least one")
		}
		a.maxSteps = n
		return nil
	}
}

// WithSystemPrompt sets the system prompt sent with every run
func WithSystemPrompt(value string) Opt {
	return func(a *Agent) error {
		a.system = value
		return nil
	}
}

// WithTracer sets the tracer for runs
func WithTracer(tracer trace.Tracer) Opt {
	return func(a *Agent) error {
		a.tracer = tracer
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Model returns the model of the agent
func (a *Agent) Model() agentface.Generator {
	return a.model
}

// AddTools appends tools to the collection. Duplicates are kept.
func (a *Agent) AddTools(tools ...tool.Tool) {
	a.Lock()
	defer a.Unlock()
	for _, t := range tools {
		if t != nil {
			a.tools = append(a.tools, t)
		}
	}
}

// Tools returns a copy of the tool collection, in the order added
func (a *Agent) Tools() []tool.Tool {
	a.Lock()
	defer a.Unlock()
	return append([]tool.Tool(nil), a.tools...)
}

// Setup returns a runner bound to the model and a snapshot of the current
// tools. Tools added afterwards are not seen by the runner. When two tools
// share a name the first one added is used.
func (a *Agent) Setup() (*Runner, error) {
	a.Lock()
	defer a.Unlock()

	runner := &Runner{
		model:    a.model,
		tools:    make(map[string]tool.Tool, len(a.tools)),
		maxSteps: a.maxSteps,
		system:   a.system,
		tracer:   a.tracer,
	}
	bound := make([]tool.Tool, 0, len(a.tools))
	for _, t := range a.tools {
		if _, exists := runner.tools[t.Name()]; exists {
			continue
		}
		runner.tools[t.Name()] = t
		bound = append(bound, t)
	}
	defs, err := tool.Definitions(bound...)
	if err != nil {
		return nil, err
	}
	runner.defs = defs
	return runner, nil
}

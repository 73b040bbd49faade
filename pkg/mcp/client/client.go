// Package client connects to an MCP tool server and exposes the remote
// tools as local tools.
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	version "github.com/atagle123/AgentFace/pkg/version"
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client is a session with an MCP server
type Client struct {
	session *mcp.ClientSession
	tracer  trace.Tracer
}

// Opt is a functional option for the client
type Opt func(*options) error

type options struct {
	name, version string
	http          *http.Client
	tracer        trace.Tracer
}

// remote is a tool served by the MCP server
type remote struct {
	client      *Client
	name        string
	description string
	schema      *jsonschema.Schema
}

var _ tool.Tool = (*remote)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	defaultName = "agentface"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New connects to the streamable HTTP endpoint of an MCP server, for
// example http://127.0.0.1:8000/mcp
func New(ctx context.Context, endpoint string, opts ...Opt) (*Client, error) {
	if endpoint == "" {
		return nil, agentface.ErrBadParameter.With("endpoint is required")
	}
	o, err := apply(opts...)
	if err != nil {
		return nil, err
	}
	return connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:   endpoint,
		HTTPClient: o.http,
	}, o)
}

// Connect starts a session over an existing transport
func Connect(ctx context.Context, transport mcp.Transport, opts ...Opt) (*Client, error) {
	o, err := apply(opts...)
	if err != nil {
		return nil, err
	}
	return connect(ctx, transport, o)
}

// WithHTTPClient sets the HTTP client for the streamable transport
func WithHTTPClient(client *http.Client) Opt {
	return func(o *options) error {
		o.http = client
		return nil
	}
}

// WithClientInfo sets the name and version sent in the handshake
func WithClientInfo(name, version string) Opt {
	return func(o *options) error {
		if name == "" {
			return agentface.ErrBadParameter.With("client name is required")
		}
		o.name, o.version = name, version
		return nil
	}
}

// WithTracer sets the tracer for tool call spans
func WithTracer(tracer trace.Tracer) Opt {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// Close ends the session
func (c *Client) Close() error {
	return c.session.Close()
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ListTools returns the tools of the server. Calling a returned tool calls
// it on the server.
func (c *Client) ListTools(ctx context.Context) ([]tool.Tool, error) {
	var result []tool.Tool
	for t, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, agentface.ErrIOFailure.Withf("list tools: %v", err)
		}
		schema, err := toSchema(t.InputSchema)
		if err != nil {
			return nil, agentface.ErrBadParameter.Withf("tool %q: %v", t.Name, err)
		}
		result = append(result, &remote{
			client:      c,
			name:        t.Name,
			description: t.Description,
			schema:      schema,
		})
	}
	return result, nil
}

// Call runs a tool on the server. Transport failures are returned as an
// error, tool failures as a failed result.
func (c *Client) Call(ctx context.Context, name string, args json.RawMessage) (_ tool.Result, err error) {
	ctx, endSpan := otel.StartSpan(c.tracer, ctx, "CallRemoteTool",
		attribute.String("tool", name),
	)
	defer func() { endSpan(err) }()

	params := &mcp.CallToolParams{Name: name}
	if len(args) > 0 {
		params.Arguments = args
	} else {
		params.Arguments = map[string]any{}
	}
	resp, err := c.session.CallTool(ctx, params)
	if err != nil {
		return tool.Result{}, agentface.ErrIOFailure.Withf("call %q: %v", name, err)
	}
	return decode(resp), nil
}

///////////////////////////////////////////////////////////////////////////////
// TOOL INTERFACE

func (t *remote) Name() string {
	return t.name
}

func (t *remote) Description() string {
	return t.description
}

func (t *remote) Schema() (*jsonschema.Schema, error) {
	return t.schema, nil
}

func (t *remote) Run(ctx context.Context, input json.RawMessage) (any, error) {
	result, err := t.client.Call(ctx, t.name, input)
	if err != nil {
		return nil, err
	} else if !result.OK() {
		return nil, result.Err()
	}
	return result.Value, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func apply(opts ...Opt) (*options, error) {
	o := &options{name: defaultName, version: version.Version()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func connect(ctx context.Context, transport mcp.Transport, o *options) (*Client, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: o.name, Version: o.version}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, agentface.ErrIOFailure.Withf("connect: %v", err)
	}
	return &Client{session: session, tracer: o.tracer}, nil
}

// toSchema converts the wire form of an input schema
func toSchema(v any) (*jsonschema.Schema, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

// decode returns the structured result of a call, falling back to the text
// content for servers which do not send one
func decode(resp *mcp.CallToolResult) tool.Result {
	var result tool.Result
	if resp.StructuredContent != nil {
		if data, err := json.Marshal(resp.StructuredContent); err == nil {
			result = tool.DecodeResult(data)
		}
	} else {
		var text []string
		for _, content := range resp.Content {
			if t, ok := content.(*mcp.TextContent); ok {
				text = append(text, t.Text)
			}
		}
		result = tool.DecodeResult([]byte(strings.Join(text, "\n")))
	}
	if resp.IsError && result.OK() {
		message, _ := result.Value.(string)
		if message == "" {
			message = "tool call failed"
		}
		return tool.Result{Status: tool.StatusError, Kind: agentface.ErrInternalServerError.Kind(), Message: message}
	}
	return result
}

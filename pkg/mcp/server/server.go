// Package server aggregates tool namespaces into one toolkit and serves it
// over MCP streamable HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	logger "github.com/atagle123/AgentFace/pkg/logger"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	chi "github.com/go-chi/chi/v5"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Server exposes a toolkit as an MCP server
type Server struct {
	toolkit *tool.Toolkit
	server  *mcp.Server
	tracer  trace.Tracer
	log     *slog.Logger
}

// Opt is a functional option for the server
type Opt func(*Server) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	Path        = "/mcp"
	DefaultAddr = "127.0.0.1:8000"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns an MCP server with the tools of the given namespaces. A tool
// name which is registered twice fails the construction with ErrConflict.
func New(name, version string, opts ...Opt) (*Server, error) {
	toolkit, err := tool.NewToolkit()
	if err != nil {
		return nil, err
	}
	s := &Server{toolkit: toolkit}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.server = mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, &mcp.ServerOptions{
		Logger: s.log,
	})
	for _, t := range s.toolkit.Tools() {
		schema, err := t.Schema()
		if err != nil {
			return nil, agentface.ErrBadParameter.Withf("tool %q: %v", t.Name(), err)
		} else if schema == nil || schema.Type != "object" {
			return nil, agentface.ErrBadParameter.Withf("tool %q: input schema must be an object", t.Name())
		}
		s.server.AddTool(&mcp.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: schema,
		}, s.handler(t))
	}
	return s, nil
}

// WithNamespace imports the tools of each namespace
func WithNamespace(namespaces ...*tool.Namespace) Opt {
	return func(s *Server) error {
		return s.toolkit.Import(namespaces...)
	}
}

// WithTracer sets the tracer for tool call spans
func WithTracer(tracer trace.Tracer) Opt {
	return func(s *Server) error {
		s.tracer = tracer
		return nil
	}
}

// WithLogger sets the logger for protocol activity
func WithLogger(log *slog.Logger) Opt {
	return func(s *Server) error {
		s.log = log
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Toolkit returns the aggregated tools
func (s *Server) Toolkit() *tool.Toolkit {
	return s.toolkit
}

// MCP returns the underlying protocol server
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Handler returns the streamable HTTP handler
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{
		Logger: s.log,
	})
}

// Router returns a router serving the handler at /mcp
func (s *Server) Router(middleware ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware...)
	r.Handle(Path, s.Handler())
	return r
}

// Call runs a tool by name and returns its structured result
func (s *Server) Call(ctx context.Context, name string, args json.RawMessage) tool.Result {
	t := s.toolkit.Lookup(name)
	if t == nil {
		return tool.NewResult(nil, agentface.ErrNotFound.Withf("tool %q", name))
	}
	return s.call(ctx, t, args)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (s *Server) handler(t tool.Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args json.RawMessage
		if req.Params != nil {
			args = req.Params.Arguments
		}
		result := s.call(ctx, t, args)
		data, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
			StructuredContent: json.RawMessage(data),
			IsError:           !result.OK(),
		}, nil
	}
}

func (s *Server) call(ctx context.Context, t tool.Tool, args json.RawMessage) tool.Result {
	var err error
	ctx, endSpan := otel.StartSpan(s.tracer, ctx, "CallTool",
		attribute.String("tool", t.Name()),
	)
	defer func() { endSpan(err) }()

	// An empty object and no arguments are the same call
	if string(args) == "{}" || string(args) == "null" {
		args = nil
	}

	start := time.Now()
	value, err := tool.Run(ctx, t, args)
	result := tool.NewResult(value, err)
	logger.FromContext(ctx).Debug("tool call", "tool", t.Name(), "status", result.Status, "error_kind", result.Kind, "duration", time.Since(start))
	return result
}

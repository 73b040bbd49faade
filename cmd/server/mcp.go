package main

import (
	// Packages
	graphviz "github.com/atagle123/AgentFace/pkg/graphviz"
	manim "github.com/atagle123/AgentFace/pkg/manim"
	mathtool "github.com/atagle123/AgentFace/pkg/mathtool"
	server "github.com/atagle123/AgentFace/pkg/mcp/server"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	version "github.com/atagle123/AgentFace/pkg/version"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Tools configures the tool namespaces
type Tools struct {
	Diagrams string `name:"diagrams" env:"DIAGRAMS_DIR" default:"diagrams" help:"Folder for saved diagrams"`
	Dot      string `name:"dot" env:"DOT_EXECUTABLE" default:"dot" help:"Graphviz executable"`
	Media    string `name:"media" env:"MEDIA_DIR" default:"media" help:"Folder for rendered animations"`
	Manim    string `name:"manim" env:"MANIM_EXECUTABLE" default:"manim" help:"Manim executable"`
}

type MCPCmd struct {
	Tools `embed:""`
	HTTP  `embed:""`
	Addr  string `name:"addr" env:"MCP_ADDR" default:"${mcp_addr}" help:"Listen address"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *MCPCmd) Run(globals *Globals) error {
	mcp, err := cmd.Server(globals)
	if err != nil {
		return err
	}
	globals.log.InfoContext(globals.ctx, "tools", "count", mcp.Toolkit().Len(), "path", server.Path)
	return cmd.HTTP.Serve(globals, "mcp", cmd.Addr, mcp.Router(globals.middleware()...))
}

// Namespaces returns the sub_server, graphviz_server and manim_server
// namespaces
func (cmd *Tools) Namespaces(globals *Globals) ([]*tool.Namespace, error) {
	maths, err := mathtool.NewNamespace()
	if err != nil {
		return nil, err
	}
	diagrams, err := cmd.diagrams(globals)
	if err != nil {
		return nil, err
	}
	graphs, err := diagrams.Namespace()
	if err != nil {
		return nil, err
	}
	m, err := manim.New(cmd.Media, manim.WithExecutable(cmd.Manim), manim.WithTracer(globals.tracer))
	if err != nil {
		return nil, err
	}
	animations, err := m.Namespace()
	if err != nil {
		return nil, err
	}
	return []*tool.Namespace{maths, graphs, animations}, nil
}

// Server returns the MCP server for the namespaces. A tool name which
// appears twice is an error.
func (cmd *Tools) Server(globals *Globals) (*server.Server, error) {
	namespaces, err := cmd.Namespaces(globals)
	if err != nil {
		return nil, err
	}
	return server.New(globals.execName, version.Version(),
		server.WithNamespace(namespaces...),
		server.WithTracer(globals.tracer),
		server.WithLogger(globals.log),
	)
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (cmd *Tools) diagrams(globals *Globals) (*graphviz.Diagrams, error) {
	return graphviz.New(cmd.Diagrams,
		graphviz.WithRenderer(&graphviz.Exec{Path: cmd.Dot}),
		graphviz.WithTracer(globals.tracer),
	)
}

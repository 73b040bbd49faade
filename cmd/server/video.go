package main

import (
	"fmt"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	agent "github.com/atagle123/AgentFace/pkg/agent"
	httphandler "github.com/atagle123/AgentFace/pkg/httphandler"
	mcpclient "github.com/atagle123/AgentFace/pkg/mcp/client"
	shim "github.com/atagle123/AgentFace/pkg/shim"
	version "github.com/atagle123/AgentFace/pkg/version"
	video "github.com/atagle123/AgentFace/pkg/video"
	chi "github.com/go-chi/chi/v5"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type VideoCmd struct {
	Ollama      `embed:""`
	Store       `embed:""`
	HTTP        `embed:""`
	Addr        string `name:"addr" env:"VIDEO_ADDR" default:"${video_addr}" help:"Listen address"`
	Config      string `name:"config" env:"VIDEO_CONFIG" type:"existingfile" optional:"" help:"Generator configuration (YAML)"`
	Agent       bool   `name:"agent" help:"Generate with the manim agent instead of the external generator"`
	MCP         string `name:"mcp" env:"MCP_URL" default:"http://${mcp_addr}/mcp" help:"Tool server endpoint, used by the manim agent"`
	MaxSteps    uint   `name:"max-steps" default:"20" help:"Maximum number of model turns for the manim agent"`
	Concurrency int    `name:"concurrency" default:"1" help:"Number of requests which run at once"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *VideoCmd) Run(globals *Globals) error {
	defaults, err := cmd.defaults()
	if err != nil {
		return err
	}
	store, err := cmd.Store.open(globals)
	if err != nil {
		return err
	}
	server, err := cmd.Ollama.server(globals, defaults.Model, defaults.HelperModel)
	if err != nil {
		return err
	}

	// Choose the generator
	var generator video.Generator
	if cmd.Agent {
		generator, err = cmd.agent(globals, server.Client().Model(defaults.Model))
	} else {
		generator, err = video.NewPipeline(defaults, globals.tracer)
	}
	if err != nil {
		return err
	}

	// The shim starts the model server on the first request
	stage, err := shim.New("video", server, shim.WithConcurrency(cmd.Concurrency), shim.WithTracer(globals.tracer))
	if err != nil {
		return err
	}
	defer stage.Exit()

	router := globals.router()
	router.Route(apiPrefix, func(r chi.Router) {
		httphandler.RegisterVideo(r, stage, generator, store, version.Version())
	})
	return cmd.HTTP.Serve(globals, "video", cmd.Addr, router)
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (cmd *VideoCmd) defaults() (video.Defaults, error) {
	if cmd.Config == "" {
		return video.NewDefaults(), nil
	}
	return video.LoadDefaults(cmd.Config)
}

// agent returns a generator which drives the manim agent with the tools of
// the tool server. The session stays open while the server runs.
func (cmd *VideoCmd) agent(globals *Globals, model agentface.Generator) (video.Generator, error) {
	client, err := mcpclient.New(globals.ctx, cmd.MCP,
		mcpclient.WithClientInfo(globals.execName, version.Version()),
		mcpclient.WithTracer(globals.tracer),
	)
	if err != nil {
		return nil, fmt.Errorf("tool server %q: %w", cmd.MCP, err)
	}
	go func() {
		<-globals.ctx.Done()
		client.Close()
	}()
	tools, err := client.ListTools(globals.ctx)
	if err != nil {
		return nil, err
	}
	manim, err := agent.NewManimAgent(model, agent.WithMaxSteps(cmd.MaxSteps), agent.WithTracer(globals.tracer))
	if err != nil {
		return nil, err
	}
	manim.AddTools(tools...)
	return video.NewAgentGenerator(manim)
}

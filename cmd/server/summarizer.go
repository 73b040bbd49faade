package main

import (
	"time"

	// Packages
	httphandler "github.com/atagle123/AgentFace/pkg/httphandler"
	modelserver "github.com/atagle123/AgentFace/pkg/modelserver"
	ollama "github.com/atagle123/AgentFace/pkg/provider/ollama"
	shim "github.com/atagle123/AgentFace/pkg/shim"
	summarize "github.com/atagle123/AgentFace/pkg/summarize"
	version "github.com/atagle123/AgentFace/pkg/version"
	chi "github.com/go-chi/chi/v5"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Ollama configures the local model server a stage uses
type Ollama struct {
	Endpoint   string        `name:"ollama" env:"OLLAMA_URL" default:"${ollama}" help:"Ollama endpoint"`
	Executable string        `name:"ollama-exec" env:"OLLAMA_EXECUTABLE" default:"ollama" help:"Ollama executable, started when the endpoint does not answer"`
	Timeout    time.Duration `name:"ollama-timeout" default:"2m" help:"Time to wait for the model server"`
}

type SummarizerCmd struct {
	Ollama      `embed:""`
	HTTP        `embed:""`
	Addr        string `name:"addr" env:"SUMMARIZER_ADDR" default:"${summarizer_addr}" help:"Listen address"`
	Model       string `name:"model" env:"SUMMARIZER_MODEL" default:"${summary_model}" help:"Summary model"`
	Embedder    string `name:"embedder" env:"EMBEDDING_MODEL" default:"${embedder}" help:"Embedding model"`
	TopK        int    `name:"top-k" default:"3" help:"Number of passages retrieved for each query"`
	NoExtractor bool   `name:"no-extractor" help:"Index passages without per-passage summaries"`
	Concurrency int    `name:"concurrency" default:"1" help:"Number of requests which run at once"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *SummarizerCmd) Run(globals *Globals) error {
	server, err := cmd.Ollama.server(globals, cmd.Model, cmd.Embedder)
	if err != nil {
		return err
	}

	// Summarization pipeline
	client := server.Client()
	pipeline, err := summarize.NewPipeline(
		client.Model(cmd.Model, summarize.ModelOpts()...),
		client.Model(cmd.Embedder),
		summarize.WithTopK(cmd.TopK),
		summarize.WithSummaryExtractor(!cmd.NoExtractor),
		summarize.WithTracer(globals.tracer),
	)
	if err != nil {
		return err
	}

	// The shim starts the model server on the first request
	stage, err := shim.New("summarizer", server, shim.WithConcurrency(cmd.Concurrency), shim.WithTracer(globals.tracer))
	if err != nil {
		return err
	}
	defer stage.Exit()

	router := globals.router()
	router.Route(apiPrefix, func(r chi.Router) {
		httphandler.RegisterSummarizer(r, stage, pipeline, version.Version())
	})
	return cmd.HTTP.Serve(globals, "summarizer", cmd.Addr, router)
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// server returns a supervisor for the model server which pulls the models
func (cmd *Ollama) server(globals *Globals, models ...string) (*modelserver.Server, error) {
	client, err := ollama.New(cmd.Endpoint, clientOpts(globals)...)
	if err != nil {
		return nil, err
	}
	return modelserver.New(client,
		modelserver.WithExecutable(cmd.Executable, "serve"),
		modelserver.WithTimeout(cmd.Timeout, modelserver.DefaultInterval),
		modelserver.WithModels(models...),
	)
}

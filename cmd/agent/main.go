package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	// Packages
	kong "github.com/alecthomas/kong"
	agentface "github.com/atagle123/AgentFace"
	logger "github.com/atagle123/AgentFace/pkg/logger"
	ollama "github.com/atagle123/AgentFace/pkg/provider/ollama"
	openai "github.com/atagle123/AgentFace/pkg/provider/openai"
	godotenv "github.com/joho/godotenv"
	client "github.com/mutablelogic/go-client"
	otel "go.opentelemetry.io/otel"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	// Debugging
	Debug     bool   `name:"debug" help:"Enable debug output"`
	Verbose   bool   `name:"verbose" help:"Enable verbose output"`
	LogFormat string `name:"log-format" enum:"text,json" default:"text" help:"Log format"`
	Trace     bool   `name:"trace" help:"Log a line for every finished span"`

	// Model
	Model `embed:"" prefix:""`

	// Context
	ctx    context.Context
	log    *slog.Logger
	tracer trace.Tracer
}

type Model struct {
	Name           string `name:"model" env:"AGENT_MODEL" help:"Model name"`
	OllamaEndpoint string `name:"ollama" env:"OLLAMA_URL" help:"Ollama endpoint"`
	APIKey         string `name:"api-key" env:"GROQ_API_KEY" help:"API key for an OpenAI-compatible endpoint, which is used instead of Ollama when set"`
	Endpoint       string `name:"endpoint" env:"OPENAI_BASE_URL" default:"${groq}" help:"OpenAI-compatible endpoint"`
}

type CLI struct {
	Globals

	Run     RunCmd     `cmd:"" default:"withargs" help:"Run a prompt with the tools of the tool server"`
	Tools   ToolsCmd   `cmd:"" help:"List the tools of the tool server"`
	Video   VideoCmd   `cmd:"" help:"Render an animation with the manim agent"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	defaultOllamaModel = "llama3.2:3b"
	tracerName         = "github.com/atagle123/AgentFace/cmd/agent"
)

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	// Environment from .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	// Create a cli parser
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("Agent command line interface"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{
			"groq": openai.GroqEndpoint,
			"mcp":  defaultMCP,
		},
	)

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Logging and tracing
	level := slog.LevelWarn
	if cli.Debug {
		level = slog.LevelDebug
	} else if cli.Verbose {
		level = slog.LevelInfo
	}
	log, err := logger.New(os.Stderr, cli.LogFormat, level)
	cmd.FatalIfErrorf(err)
	cli.Globals.log = log
	cli.Globals.ctx = logger.ToContext(ctx, log)
	if cli.Trace {
		provider := logger.NewTracerProvider(log)
		defer provider.Shutdown(context.Background())
		otel.SetTracerProvider(provider)
	}
	cli.Globals.tracer = otel.Tracer(tracerName)

	// Run the command
	if err := cmd.Run(&cli.Globals); err != nil {
		cmd.FatalIfErrorf(err)
		return
	}
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func execName() string {
	// The name of the executable
	name, err := os.Executable()
	if err != nil {
		panic(err)
	} else {
		return filepath.Base(name)
	}
}

func clientOpts(globals *Globals) []client.ClientOpt {
	result := []client.ClientOpt{}
	if globals.Debug {
		result = append(result, client.OptTrace(os.Stderr, globals.Verbose))
	}
	return result
}

// generator returns the configured model: an OpenAI-compatible endpoint
// when an API key is set, otherwise Ollama
func (globals *Globals) generator() (agentface.Generator, error) {
	if globals.APIKey != "" {
		return openai.New(globals.Name, openai.WithAPIKey(globals.APIKey), openai.WithEndpoint(globals.Endpoint))
	}
	client, err := ollama.New(globals.OllamaEndpoint, clientOpts(globals)...)
	if err != nil {
		return nil, err
	}
	name := globals.Name
	if name == "" {
		name = defaultOllamaModel
	}
	return client.Model(name), nil
}

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
	logger "github.com/atagle123/AgentFace/pkg/logger"
	server "github.com/atagle123/AgentFace/pkg/mcp/server"
	ollama "github.com/atagle123/AgentFace/pkg/provider/ollama"
	summarize "github.com/atagle123/AgentFace/pkg/summarize"
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
	LogLevel  string `name:"log-level" default:"info" help:"Log level (debug, info, warn, error)"`

	// Context
	ctx      context.Context
	log      *slog.Logger
	tracer   trace.Tracer
	execName string
}

type CLI struct {
	Globals

	// Servers
	MCP        MCPCmd        `cmd:"" name:"mcp" help:"Serve the tools over MCP" group:"SERVER"`
	Web        WebCmd        `cmd:"" help:"Serve the PDF to video web application" group:"SERVER"`
	Summarizer SummarizerCmd `cmd:"" help:"Serve the summarization stage" group:"SERVER"`
	Video      VideoCmd      `cmd:"" help:"Serve the video generation stage" group:"SERVER"`

	// Tools
	Tools    ToolsCmd    `cmd:"" help:"List the tools which the MCP server serves" group:"TOOLS"`
	Diagrams DiagramsCmd `cmd:"" help:"Manage saved diagrams" group:"TOOLS"`

	Version VersionCmd `cmd:"" help:"Print version information"`
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	tracerName = "github.com/atagle123/AgentFace/cmd/server"
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
		kong.Description("AgentFace servers: tools, web application and pipeline stages"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{
			"mcp_addr":        server.DefaultAddr,
			"web_addr":        "127.0.0.1:7860",
			"summarizer_addr": "127.0.0.1:8001",
			"video_addr":      "127.0.0.1:8002",
			"ollama":          ollama.DefaultEndpoint,
			"summary_model":   summarize.DefaultModel,
			"embedder":        summarize.DefaultEmbedder,
		},
	)

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Logging and tracing
	level, err := logger.ParseLevel(cli.LogLevel)
	cmd.FatalIfErrorf(err)
	if cli.Debug {
		level = slog.LevelDebug
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
	cli.Globals.execName = execName()

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

package main

import (
	"fmt"
	"os"

	// Packages
	agent "github.com/atagle123/AgentFace/pkg/agent"
	mcpclient "github.com/atagle123/AgentFace/pkg/mcp/client"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	table "github.com/atagle123/AgentFace/pkg/ui/table"
	version "github.com/atagle123/AgentFace/pkg/version"
	glamour "github.com/charmbracelet/glamour"
	termenv "github.com/muesli/termenv"
	term "golang.org/x/term"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type ToolServer struct {
	MCP     string `name:"mcp" env:"MCP_URL" default:"${mcp}" help:"Tool server endpoint"`
	NoTools bool   `name:"no-tools" help:"Run without the tools of the tool server"`
}

type RunCmd struct {
	ToolServer `embed:""`
	Prompt     string `name:"prompt" default:"sum me two numbers 123 and 234" help:"Prompt for the agent"`
	MaxSteps   uint   `name:"max-steps" default:"20" help:"Maximum number of model turns"`
}

type ToolsCmd struct {
	ToolServer `embed:""`
}

type VersionCmd struct{}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	defaultMCP  = "http://127.0.0.1:8000/mcp"
	markdownPad = 4
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *RunCmd) Run(globals *Globals) error {
	model, err := globals.generator()
	if err != nil {
		return err
	}
	a, err := agent.New(model, agent.WithMaxSteps(cmd.MaxSteps), agent.WithTracer(globals.tracer))
	if err != nil {
		return err
	}

	// Add the tools of the tool server
	tools, closeFn, err := cmd.tools(globals)
	if err != nil {
		return err
	}
	defer closeFn()
	a.AddTools(tools...)

	// Run the prompt
	runner, err := a.Setup()
	if err != nil {
		return err
	}
	globals.log.InfoContext(globals.ctx, "run", "model", model.Name(), "tools", len(tools))
	response, err := runner.Run(globals.ctx, cmd.Prompt)
	if err != nil {
		return err
	}
	return printMarkdown(response)
}

func (cmd *ToolsCmd) Run(globals *Globals) error {
	tools, closeFn, err := cmd.tools(globals)
	if err != nil {
		return err
	}
	defer closeFn()
	fmt.Println(table.Render(toolTable(tools)))
	return nil
}

func (cmd *VersionCmd) Run(globals *Globals) error {
	fmt.Println(string(version.JSON(execName())))
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// tools connects to the tool server and returns its tools, with a function
// which closes the session
func (cmd *ToolServer) tools(globals *Globals) ([]tool.Tool, func(), error) {
	if cmd.NoTools {
		return nil, func() {}, nil
	}
	client, err := mcpclient.New(globals.ctx, cmd.MCP,
		mcpclient.WithClientInfo(execName(), version.Version()),
		mcpclient.WithTracer(globals.tracer),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("tool server %q: %w", cmd.MCP, err)
	}
	tools, err := client.ListTools(globals.ctx)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return tools, func() { client.Close() }, nil
}

// printMarkdown renders text with glamour on a terminal, or prints it
// unchanged otherwise
func printMarkdown(text string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println(text)
		return nil
	}
	style := "dark"
	if !termenv.HasDarkBackground() {
		style = "light"
	}
	opts := []glamour.TermRendererOption{glamour.WithStylePath(style)}
	if w := table.Width(); w > markdownPad*2 {
		opts = append(opts, glamour.WithWordWrap(w-markdownPad))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return err
	}
	out, err := renderer.Render(text)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// toolTable lists tools by name
type toolTable []tool.Tool

func (t toolTable) Header() []string {
	return []string{"Name", "Description"}
}

func (t toolTable) Len() int {
	return len(t)
}

func (t toolTable) Row(i int) []any {
	return []any{table.Bold{Value: t[i].Name()}, table.Truncate(t[i].Description(), 80)}
}

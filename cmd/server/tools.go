package main

import (
	"fmt"

	// Packages
	graphviz "github.com/atagle123/AgentFace/pkg/graphviz"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	table "github.com/atagle123/AgentFace/pkg/ui/table"
	version "github.com/atagle123/AgentFace/pkg/version"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type ToolsCmd struct {
	Tools    `embed:""`
	Markdown bool `name:"markdown" help:"Print a markdown table"`
}

type DiagramsCmd struct {
	List   DiagramsListCmd   `cmd:"" default:"withargs" help:"List saved diagrams, newest first"`
	Delete DiagramsDeleteCmd `cmd:"" help:"Delete a saved diagram"`
}

type DiagramsListCmd struct {
	Tools `embed:""`
	Limit int `name:"limit" default:"10" help:"Maximum number of diagrams"`
}

type DiagramsDeleteCmd struct {
	Tools `embed:""`
	Name  string `arg:"" help:"File name of the diagram"`
}

type VersionCmd struct{}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *ToolsCmd) Run(globals *Globals) error {
	mcp, err := cmd.Server(globals)
	if err != nil {
		return err
	}
	data := toolTable(mcp.Toolkit().Tools())
	if cmd.Markdown {
		fmt.Println(table.RenderMarkdown(data))
	} else {
		fmt.Println(table.Render(data))
	}
	return nil
}

func (cmd *DiagramsListCmd) Run(globals *Globals) error {
	diagrams, err := cmd.diagrams(globals)
	if err != nil {
		return err
	}
	entries, err := diagrams.Store().List(cmd.Limit)
	if err != nil {
		return err
	}
	fmt.Println(table.Render(diagramTable(entries)))
	return nil
}

func (cmd *DiagramsDeleteCmd) Run(globals *Globals) error {
	diagrams, err := cmd.diagrams(globals)
	if err != nil {
		return err
	}
	if err := diagrams.Store().Delete(cmd.Name); err != nil {
		return err
	}
	globals.log.InfoContext(globals.ctx, "deleted", "diagram", cmd.Name)
	return nil
}

func (cmd *VersionCmd) Run(globals *Globals) error {
	fmt.Println(string(version.JSON(globals.execName)))
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// TABLES

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

type diagramTable []graphviz.Entry

func (t diagramTable) Header() []string {
	return []string{"Name", "Created", "Size"}
}

func (t diagramTable) Len() int {
	return len(t)
}

func (t diagramTable) Row(i int) []any {
	return []any{table.Bold{Value: t[i].Name}, t[i].Created.Format("2006-01-02 15:04:05"), table.Size(t[i].Size)}
}

package main

import (
	"fmt"
	"os"

	// Packages
	agent "github.com/atagle123/AgentFace/pkg/agent"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type VideoCmd struct {
	ToolServer `embed:""`
	Prompt     string `arg:"" help:"Description of the animation"`
	File       string `name:"file" type:"existingfile" help:"PDF document which the animation explains" optional:""`
	MaxSteps   uint   `name:"max-steps" default:"20" help:"Maximum number of model turns"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *VideoCmd) Run(globals *Globals) error {
	model, err := globals.generator()
	if err != nil {
		return err
	}
	manim, err := agent.NewManimAgent(model, agent.WithMaxSteps(cmd.MaxSteps), agent.WithTracer(globals.tracer))
	if err != nil {
		return err
	}

	// Add the tools of the tool server
	tools, closeFn, err := cmd.tools(globals)
	if err != nil {
		return err
	}
	defer closeFn()
	manim.AddTools(tools...)

	// Read the document
	var document []byte
	if cmd.File != "" {
		if document, err = os.ReadFile(cmd.File); err != nil {
			return err
		}
	}

	// Render and print the path of the video
	path, err := manim.Generate(globals.ctx, document, cmd.Prompt)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

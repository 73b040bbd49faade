package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	pdf "github.com/atagle123/AgentFace/pkg/pdf"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ManimAgent is an agent which produces an animation with the manim tools
// and returns the path of the rendered video
type ManimAgent struct {
	*Agent
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const manimSystemPrompt = `You produce short explanatory animations with Manim.
First call the tool which returns the animation rules and follow them.
Then write a complete scene and render it with the tool which executes Manim code.
If rendering fails, read the error, fix the code and try again.
When a video has been rendered, call the tool which returns the scene path with the rendered path.
Finish with a one sentence description of the animation.`

// Tool name suffixes which report the path of a rendered video
var videoPathTools = []string{"return_scene_path", "execute_manim_code"}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewManimAgent returns an agent for the model with the animation system
// prompt, which can be replaced with WithSystemPrompt
func NewManimAgent(model agentface.Generator, opts ...Opt) (*ManimAgent, error) {
	agent, err := New(model, append([]Opt{WithSystemPrompt(manimSystemPrompt)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &ManimAgent{agent}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Generate runs the prompt, with the text of the document prepended when
// one is supplied, and returns the path of the last video rendered during
// the run. Returns ErrNotFound when no video was rendered.
func (m *ManimAgent) Generate(ctx context.Context, document []byte, prompt string) (string, error) {
	task, err := manimTask(document, prompt)
	if err != nil {
		return "", err
	}

	// Run with the current tools
	runner, err := m.Setup()
	if err != nil {
		return "", err
	}
	response, err := runner.Execute(ctx, task)
	if err != nil {
		return "", err
	}

	// Return the last path reported by a successful tool call
	if path := VideoPath(response); path != "" {
		return path, nil
	}
	return "", agentface.ErrNotFound.With("no video was rendered")
}

// VideoPath returns the path reported by the last successful call to a
// tool which renders or returns a video, or empty string
func VideoPath(response *Response) string {
	for i := len(response.Calls) - 1; i >= 0; i-- {
		call := response.Calls[i]
		if !call.Result.OK() || !isVideoTool(call.Name) {
			continue
		}
		if path := pathOf(call.Result.Value); path != "" {
			return path
		}
	}
	return ""
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func manimTask(document []byte, prompt string) (string, error) {
	if len(document) == 0 {
		return prompt, nil
	}
	text, err := pdf.ExtractText(document)
	if err != nil {
		return "", err
	} else if text == "" {
		return "", agentface.ErrBadParameter.With("could not extract text from PDF")
	}
	return fmt.Sprintf("Document:\n%s\n\nTask: %s", strings.TrimSpace(text), prompt), nil
}

func isVideoTool(name string) bool {
	for _, suffix := range videoPathTools {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// pathOf returns the "path" field of a tool result value
func pathOf(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	var v struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return ""
	}
	return v.Path
}

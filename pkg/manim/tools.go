package manim

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	jsonschema "github.com/google/jsonschema-go/jsonschema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type rulesTool struct{}
type scenePath struct{ *Manim }
type execute struct{ *Manim }
type cleanup struct{ *Manim }

var _ tool.Tool = (*rulesTool)(nil)
var _ tool.Tool = (*scenePath)(nil)
var _ tool.Tool = (*execute)(nil)
var _ tool.Tool = (*cleanup)(nil)

///////////////////////////////////////////////////////////////////////////////
// REQUEST / RESPONSE TYPES

// RulesRequest is the (empty) input for rules_manim_animation
type RulesRequest struct{}

// ScenePathRequest is the input for return_scene_path
type ScenePathRequest struct {
	Path string `json:"scene_path" jsonschema:"The path to the rendered video file"`
}

// ScenePathResponse is the result of return_scene_path
type ScenePathResponse struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// ExecuteRequest is the input for execute_manim_code
type ExecuteRequest struct {
	Code  string `json:"manim_code" jsonschema:"Complete Manim Python source defining at least one Scene class"`
	Scene string `json:"scene_name,omitempty" jsonschema:"Name of the Scene class to render (default: all scenes)"`
}

// CleanupRequest is the input for cleanup_manim_temp_dir
type CleanupRequest struct {
	Directory string `json:"directory" jsonschema:"Render directory returned by execute_manim_code"`
}

// CleanupResponse is the result of cleanup_manim_temp_dir
type CleanupResponse struct {
	Directory string `json:"directory"`
	Deleted   bool   `json:"deleted"`
	Message   string `json:"message"`
}

///////////////////////////////////////////////////////////////////////////////
// TOOL INTERFACE

func (*rulesTool) Name() string {
	return "rules_manim_animation"
}

func (*rulesTool) Description() string {
	return "Return the rules for writing Manim scenes. Read them before writing any scene code."
}

func (*rulesTool) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[RulesRequest](nil)
}

func (*rulesTool) Run(context.Context, json.RawMessage) (any, error) {
	return Rules, nil
}

func (*scenePath) Name() string {
	return "return_scene_path"
}

func (*scenePath) Description() string {
	return "Report the path of the rendered Manim video as the final result."
}

func (*scenePath) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[ScenePathRequest](nil)
}

func (t *scenePath) Run(_ context.Context, input json.RawMessage) (any, error) {
	var req ScenePathRequest
	if err := decode(input, &req); err != nil {
		return nil, err
	} else if req.Path == "" {
		return nil, agentface.ErrBadParameter.With("scene_path is required")
	}
	path, err := t.within(req.Path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, agentface.ErrNotFound.Withf("scene %q", req.Path)
	} else if err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	} else if !info.Mode().IsRegular() {
		return nil, agentface.ErrBadParameter.Withf("%q is not a file", req.Path)
	}
	return &ScenePathResponse{Path: path, Size: info.Size()}, nil
}

func (*execute) Name() string {
	return "execute_manim_code"
}

func (*execute) Description() string {
	return "Render Manim Python code into a video and return the path of the video and its render directory. " +
		"On failure the Manim error output is returned."
}

func (*execute) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[ExecuteRequest](nil)
}

func (t *execute) Run(ctx context.Context, input json.RawMessage) (any, error) {
	var req ExecuteRequest
	if err := decode(input, &req); err != nil {
		return nil, err
	}
	return t.Execute(ctx, req.Code, req.Scene)
}

func (*cleanup) Name() string {
	return "cleanup_manim_temp_dir"
}

func (*cleanup) Description() string {
	return "Remove a render directory created by execute_manim_code."
}

func (*cleanup) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[CleanupRequest](nil)
}

func (t *cleanup) Run(_ context.Context, input json.RawMessage) (any, error) {
	var req CleanupRequest
	if err := decode(input, &req); err != nil {
		return nil, err
	}
	resp := &CleanupResponse{Directory: req.Directory}
	switch err := t.Cleanup(req.Directory); {
	case err == nil:
		resp.Deleted = true
		resp.Message = "Cleanup successful for directory: " + req.Directory
	case errors.Is(err, agentface.ErrNotFound):
		resp.Message = "Directory not found: " + req.Directory
	default:
		return nil, err
	}
	return resp, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func decode(input json.RawMessage, v any) error {
	if len(input) == 0 {
		return agentface.ErrBadParameter.With("missing input")
	}
	if err := json.Unmarshal(input, v); err != nil {
		return agentface.ErrBadParameter.Withf("failed to unmarshal input: %v", err)
	}
	return nil
}

/*
video generates explanatory videos for a topic. Pipeline runs an external
multi-stage generator (planning, scene code, rendering and concatenation)
as a subprocess; AgentGenerator drives a manim agent instead. Both return
the real location of the produced video.
*/
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	agent "github.com/atagle123/AgentFace/pkg/agent"
	logger "github.com/atagle123/AgentFace/pkg/logger"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Generator produces a video for a topic
type Generator interface {
	Generate(ctx context.Context, req schema.VideoRequest) (*schema.VideoResponse, error)
}

// Pipeline runs the external video generator
type Pipeline struct {
	defaults Defaults
	tracer   trace.Tracer
}

// AgentGenerator produces videos with a manim agent
type AgentGenerator struct {
	agent *agent.ManimAgent
}

var _ Generator = (*Pipeline)(nil)
var _ Generator = (*AgentGenerator)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	statusRendered     = schema.VideoStatusRendered
	statusPlannedOnly  = schema.VideoStatusPlanned
	statusRenderedOnly = schema.VideoStatusRender
	statusCombinedOnly = schema.VideoStatusCombined

	combinedSuffix = "_combined.mp4"
	maxOutput      = 4096
)

const agentPrompt = `Create a short explanatory animation about: %s

Use this context for the explanation:
%s`

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewPipeline returns a pipeline with the configuration
func NewPipeline(defaults Defaults, tracer trace.Tracer) (*Pipeline, error) {
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{defaults: defaults, tracer: tracer}, nil
}

// NewAgentGenerator returns a generator which uses the agent
func NewAgentGenerator(agent *agent.ManimAgent) (*AgentGenerator, error) {
	if agent == nil {
		return nil, agentface.ErrBadParameter.With("missing agent")
	}
	return &AgentGenerator{agent: agent}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Defaults returns the configuration of the pipeline
func (p *Pipeline) Defaults() Defaults {
	return p.defaults
}

// Generate runs every stage of the generator for the topic. The output of
// each request is kept under a directory named by its session. When the
// configuration stops early the status names the last stage run and no
// path is returned.
func (p *Pipeline) Generate(ctx context.Context, req schema.VideoRequest) (_ *schema.VideoResponse, err error) {
	ctx, endSpan := otel.StartSpan(p.tracer, ctx, "GenerateVideo",
		attribute.String("topic", req.Topic),
		attribute.String("session", req.Session),
	)
	defer func() { endSpan(err) }()

	if strings.TrimSpace(req.Topic) == "" {
		return nil, agentface.ErrBadParameter.With("missing topic")
	}

	// Output directory for the session
	output := p.defaults.OutputDir
	if req.Session != "" {
		if strings.ContainsAny(req.Session, `/\`) || req.Session == "." || req.Session == ".." {
			return nil, agentface.ErrBadParameter.Withf("invalid session: %q", req.Session)
		}
		output = filepath.Join(output, req.Session)
	}
	if output, err = filepath.Abs(output); err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	} else if err := os.MkdirAll(output, 0o755); err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	}

	// Run the generator
	if err := p.run(ctx, p.args(req, output)); err != nil {
		return nil, err
	}

	// Stopped early
	response := &schema.VideoResponse{Session: req.Session, Status: p.defaults.Status()}
	if response.Status != statusRendered {
		return response, nil
	}

	// Locate the combined video
	if response.Path, err = combined(output); err != nil {
		return nil, err
	}
	return response, nil
}

// Generate asks the agent for an animation about the topic
func (g *AgentGenerator) Generate(ctx context.Context, req schema.VideoRequest) (*schema.VideoResponse, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, agentface.ErrBadParameter.With("missing topic")
	}
	path, err := g.agent.Generate(ctx, nil, fmt.Sprintf(agentPrompt, req.Topic, req.Context))
	if err != nil {
		return nil, err
	}
	return &schema.VideoResponse{Session: req.Session, Path: path, Status: statusRendered}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (p *Pipeline) args(req schema.VideoRequest, output string) []string {
	d := p.defaults
	var args []string
	if d.Script != "" {
		args = append(args, d.Script)
	}
	helper := d.HelperModel
	if helper == "" {
		helper = d.Model
	}
	args = append(args,
		"--model", "ollama/"+d.Model,
		"--helper_model", "ollama/"+helper,
		"--output_dir", output,
		"--topic", req.Topic,
		"--context", req.Context,
		"--max_retries", fmt.Sprint(d.MaxRetries),
		"--max_scene_concurrency", fmt.Sprint(max(d.MaxSceneConcurrency, 1)),
	)
	flags := []struct {
		set  bool
		name string
	}{
		{d.Verbose, "--verbose"},
		{d.UseRAG, "--use_rag"},
		{d.UseContextLearning, "--use_context_learning"},
		{d.UseVisualFixCode, "--use_visual_fix_code"},
		{d.OnlyPlan, "--only_plan"},
		{d.OnlyRender, "--only_render"},
		{d.OnlyGenVid, "--only_gen_vid"},
		{d.OnlyCombine, "--only_combine"},
	}
	for _, flag := range flags {
		if flag.set {
			args = append(args, flag.name)
		}
	}
	values := []struct {
		name, value string
	}{
		{"--context_learning_path", d.ContextLearningPath},
		{"--chroma_db_path", d.ChromaDBPath},
		{"--manim_docs_path", d.ManimDocsPath},
		{"--embedding_model", d.EmbeddingModel},
	}
	for _, v := range values {
		if v.value != "" {
			args = append(args, v.name, v.value)
		}
	}
	return args
}

func (p *Pipeline) run(ctx context.Context, args []string) error {
	path, err := exec.LookPath(p.defaults.Executable)
	if err != nil {
		return agentface.ErrRenderEngineMissing.Withf("%q: %v", p.defaults.Executable, err)
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = p.defaults.Workdir
	cmd.Stdout = &out
	cmd.Stderr = &out
	if p.defaults.Workdir != "" {
		cmd.Env = append(os.Environ(), "PYTHONPATH="+p.defaults.Workdir+string(os.PathListSeparator)+os.Getenv("PYTHONPATH"))
	}

	logger.FromContext(ctx).InfoContext(ctx, "video generator", "executable", path, "args", len(args))
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if ctx.Err() != nil {
			return ctx.Err()
		} else if errors.As(err, &exitErr) {
			return agentface.ErrIOFailure.Withf("video generator failed: %s", tail(out.String()))
		}
		return agentface.ErrIOFailure.With(err)
	}
	return nil
}

// combined returns the newest combined video under dir, or the newest video
// when none is marked as combined
func combined(dir string) (string, error) {
	var best, fallback string
	var bestTime, fallbackTime int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".mp4" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		mod := info.ModTime().UnixNano()
		if strings.HasSuffix(path, combinedSuffix) {
			if best == "" || mod > bestTime {
				best, bestTime = path, mod
			}
		} else if fallback == "" || mod > fallbackTime {
			fallback, fallbackTime = path, mod
		}
		return nil
	})
	if err != nil {
		return "", agentface.ErrIOFailure.With(err)
	}
	switch {
	case best != "":
		return best, nil
	case fallback != "":
		return fallback, nil
	}
	return "", agentface.ErrIOFailure.Withf("no video produced in %q", dir)
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxOutput {
		return s[len(s)-maxOutput:]
	}
	return s
}

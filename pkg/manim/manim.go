// Package manim renders Manim scenes and serves the scene-authoring rules.
// The tools are served in the "manim_server" namespace.
package manim

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Manim renders scenes into per-call directories under a media root
type Manim struct {
	root       string
	executable string
	quality    string
	tracer     trace.Tracer
}

// Opt is a functional option for Manim
type Opt func(*Manim) error

// Render is the outcome of a successful render
type Render struct {
	Path      string `json:"path"`
	Directory string `json:"directory"`
	Output    string `json:"output,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	Namespace         = "manim_server"
	DefaultExecutable = "manim"
	DefaultQuality    = "l"
	sceneFile         = "scene.py"
	dirPattern        = "scene_*"
	maxOutput         = 4096
)

//go:embed rules.md
var Rules string

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a renderer with the media root dir, which is created if it
// does not exist
func New(dir string, opts ...Opt) (*Manim, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, agentface.ErrBadParameter.Withf("media folder %q: %v", dir, err)
	}
	m := &Manim{
		root:       root,
		executable: DefaultExecutable,
		quality:    DefaultQuality,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, agentface.ErrIOFailure.Withf("media folder %q: %v", dir, err)
	}
	return m, nil
}

// WithExecutable sets the manim executable, found on PATH when not absolute
func WithExecutable(path string) Opt {
	return func(m *Manim) error {
		if path = strings.TrimSpace(path); path != "" {
			m.executable = path
		}
		return nil
	}
}

// WithQuality sets the render quality flag: l, m, h, p or k
func WithQuality(quality string) Opt {
	return func(m *Manim) error {
		switch quality {
		case "l", "m", "h", "p", "k":
			m.quality = quality
		case "":
		default:
			return agentface.ErrBadParameter.Withf("invalid quality %q", quality)
		}
		return nil
	}
}

// WithTracer sets the tracer for render spans
func WithTracer(tracer trace.Tracer) Opt {
	return func(m *Manim) error {
		m.tracer = tracer
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Root returns the media root
func (m *Manim) Root() string {
	return m.root
}

// Tools returns the manim tools
func (m *Manim) Tools() []tool.Tool {
	return []tool.Tool{
		&rulesTool{},
		&scenePath{m},
		&execute{m},
		&cleanup{m},
	}
}

// Namespace returns the manim tools in the "manim_server" namespace
func (m *Manim) Namespace() (*tool.Namespace, error) {
	return tool.NewNamespace(Namespace, m.Tools()...)
}

// Execute writes the code to scene.py in a new directory under the media
// root, renders it and returns the path of the video. With an empty scene
// name every scene in the file is rendered and the newest video returned.
func (m *Manim) Execute(ctx context.Context, code, scene string) (_ *Render, err error) {
	if strings.TrimSpace(code) == "" {
		return nil, agentface.ErrBadParameter.With("manim code is required")
	}
	bin, err := exec.LookPath(m.executable)
	if err != nil {
		return nil, agentface.ErrRenderEngineMissing.Withf("manim executable %q: %v", m.executable, err)
	}

	ctx, endSpan := otel.StartSpan(m.tracer, ctx, "RenderScene",
		attribute.String("scene", scene),
	)
	defer func() { endSpan(err) }()

	dir, err := os.MkdirTemp(m.root, dirPattern)
	if err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	}
	if err := os.WriteFile(filepath.Join(dir, sceneFile), []byte(code), 0o644); err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	}

	args := []string{"-q" + m.quality, "--media_dir", filepath.Join(dir, "media"), sceneFile}
	if scene != "" {
		args = append(args, scene)
	} else {
		args = append(args, "-a")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "PYTHONPATH="+dir)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The scene failed to render: report the output back to the author
			return nil, agentface.ErrBadParameter.Withf("manim failed in %s: %s", dir, tail(stderr.String()+stdout.String()))
		}
		return nil, agentface.ErrIOFailure.Withf("manim: %v", err)
	}

	path, err := newestVideo(dir)
	if err != nil {
		return nil, err
	}
	return &Render{
		Path:      path,
		Directory: dir,
		Output:    tail(stdout.String()),
	}, nil
}

// Cleanup removes a render directory. The directory must be under the
// media root. Returns ErrNotFound when it does not exist.
func (m *Manim) Cleanup(directory string) error {
	dir, err := m.within(directory)
	if err != nil {
		return err
	}
	if info, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return agentface.ErrNotFound.Withf("directory %q", directory)
	} else if err != nil {
		return agentface.ErrIOFailure.With(err)
	} else if !info.IsDir() {
		return agentface.ErrBadParameter.Withf("%q is not a directory", directory)
	}
	if err := os.RemoveAll(dir); err != nil {
		return agentface.ErrIOFailure.With(err)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// within resolves a path and checks it is strictly inside the media root
func (m *Manim) within(path string) (string, error) {
	if path == "" {
		return "", agentface.ErrBadParameter.With("path is required")
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(m.root, abs)
	}
	abs = filepath.Clean(abs)
	rel, err := filepath.Rel(m.root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", agentface.ErrBadParameter.Withf("%q is outside the media folder", path)
	}
	return abs, nil
}

// newestVideo returns the most recently written mp4 under dir, ignoring
// partial movie files
func newestVideo(dir string) (string, error) {
	var path string
	var modtime time.Time
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == "partial_movie_files" {
			return filepath.SkipDir
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".mp4") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if path == "" || info.ModTime().After(modtime) {
			path, modtime = p, info.ModTime()
		}
		return nil
	})
	if err != nil {
		return "", agentface.ErrIOFailure.With(err)
	}
	if path == "" {
		return "", agentface.ErrIOFailure.Withf("no video was produced in %s", dir)
	}
	return path, nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxOutput {
		return "..." + s[len(s)-maxOutput:]
	}
	return s
}

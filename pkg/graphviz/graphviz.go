// Package graphviz renders diagrams with Graphviz and keeps them in a
// shared diagrams folder. The tools are served in the "graphviz_server"
// namespace.
package graphviz

import (
	"context"
	"encoding/base64"
	"os"
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

// Diagrams renders DOT source and saves the output to a store
type Diagrams struct {
	store    *Store
	renderer Renderer
	tracer   trace.Tracer
	now      func() time.Time
}

// Opt is a functional option for Diagrams
type Opt func(*Diagrams) error

// RenderOptions control the output of a rendering
type RenderOptions struct {
	Format   string
	Engine   string
	Base64   bool
	Save     bool
	Filename string // Without extension; generated from Prefix when empty
	Prefix   string
}

// DiagramResponse is the result of a rendering
type DiagramResponse struct {
	Format  string `json:"format"`
	Path    string `json:"path,omitempty"`
	DataURI string `json:"data_uri,omitempty"`
	Message string `json:"message,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	Namespace       = "graphviz_server"
	timestampFormat = "20060102_150405"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns diagram tools which save to the folder dir
func New(dir string, opts ...Opt) (*Diagrams, error) {
	store, err := NewStore(dir)
	if err != nil {
		return nil, err
	}
	d := &Diagrams{
		store:    store,
		renderer: &Exec{},
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// WithRenderer replaces the Graphviz executable renderer
func WithRenderer(r Renderer) Opt {
	return func(d *Diagrams) error {
		if r == nil {
			return agentface.ErrBadParameter.With("renderer is required")
		}
		d.renderer = r
		return nil
	}
}

// WithTracer sets the tracer for rendering spans
func WithTracer(tracer trace.Tracer) Opt {
	return func(d *Diagrams) error {
		d.tracer = tracer
		return nil
	}
}

// WithClock sets the clock used for generated file names
func WithClock(now func() time.Time) Opt {
	return func(d *Diagrams) error {
		if now == nil {
			return agentface.ErrBadParameter.With("clock is required")
		}
		d.now = now
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Store returns the diagrams folder
func (d *Diagrams) Store() *Store {
	return d.store
}

// Tools returns the diagram tools
func (d *Diagrams) Tools() []tool.Tool {
	return []tool.Tool{
		&createDiagram{d},
		&simpleGraph{d},
		&flowchart{d},
		&listDiagrams{d},
		&deleteDiagram{d},
	}
}

// Namespace returns the diagram tools in the "graphviz_server" namespace
func (d *Diagrams) Namespace() (*tool.Namespace, error) {
	return tool.NewNamespace(Namespace, d.Tools()...)
}

// Render lays out the DOT source, then saves the output, encodes it as a
// data URI, or both. With neither requested the output is written to a
// temporary file.
func (d *Diagrams) Render(ctx context.Context, source string, opts RenderOptions) (_ *DiagramResponse, err error) {
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}
	if opts.Engine == "" {
		opts.Engine = DefaultEngine
	}
	if err := Validate(opts.Engine, opts.Format); err != nil {
		return nil, err
	}

	ctx, endSpan := otel.StartSpan(d.tracer, ctx, "RenderDiagram",
		attribute.String("engine", opts.Engine),
		attribute.String("format", opts.Format),
	)
	defer func() { endSpan(err) }()

	data, err := d.renderer.Render(ctx, source, opts.Engine, opts.Format)
	if err != nil {
		return nil, err
	}

	resp := &DiagramResponse{Format: opts.Format}
	switch {
	case opts.Save && opts.Filename != "":
		if resp.Path, err = d.store.Write(opts.Filename, opts.Format, data); err != nil {
			return nil, err
		}
	case opts.Save:
		name := opts.Prefix + d.now().Format(timestampFormat)
		if resp.Path, err = d.store.Create(name, opts.Format, data); err != nil {
			return nil, err
		}
	case !opts.Base64:
		if resp.Path, err = writeTemp(opts.Format, data); err != nil {
			return nil, err
		}
	}
	if opts.Save {
		resp.Message = "Diagram saved to: " + resp.Path
	}
	if opts.Base64 {
		resp.DataURI = "data:" + MimeType(opts.Format) + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
	return resp, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func writeTemp(format string, data []byte) (string, error) {
	f, err := os.CreateTemp("", "diagram_*."+format)
	if err != nil {
		return "", agentface.ErrIOFailure.With(err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", agentface.ErrIOFailure.With(err)
	}
	return f.Name(), nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

package graphviz

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"slices"
	"strings"

	// Packages
	agentface "github.com/atagle123/AgentFace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Renderer lays out DOT source with a Graphviz engine and returns the
// rendered output in the requested format
type Renderer interface {
	Render(ctx context.Context, source, engine, format string) ([]byte, error)
}

// Exec renders by running the Graphviz "dot" executable
type Exec struct {
	// Path to the executable, found on PATH when empty
	Path string
}

var _ Renderer = (*Exec)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultExecutable = "dot"
	DefaultEngine     = "dot"
	DefaultFormat     = "png"
)

var (
	engines = []string{"dot", "neato", "fdp", "sfdp", "circo", "twopi", "osage", "patchwork"}
	formats = []string{"png", "svg", "pdf", "ps", "dot", "jpg", "jpeg", "gif", "json"}
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Render runs "dot -K<engine> -T<format>" with the source on stdin
func (r *Exec) Render(ctx context.Context, source, engine, format string) ([]byte, error) {
	if err := Validate(engine, format); err != nil {
		return nil, err
	}

	path := r.Path
	if path == "" {
		path = DefaultExecutable
	}
	bin, err := exec.LookPath(path)
	if err != nil {
		return nil, agentface.ErrRenderEngineMissing.Withf("graphviz executable %q: %v", path, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-K"+engine, "-T"+format)
	cmd.Stdin = strings.NewReader(source)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Graphviz exits non-zero on a syntax error in the source
			return nil, agentface.ErrBadParameter.Withf("graphviz: %s", strings.TrimSpace(stderr.String()))
		}
		return nil, agentface.ErrIOFailure.Withf("graphviz: %v", err)
	}
	return stdout.Bytes(), nil
}

// Validate checks the layout engine and the output format
func Validate(engine, format string) error {
	if !slices.Contains(engines, engine) {
		return agentface.ErrBadParameter.Withf("unsupported layout engine %q", engine)
	}
	if !slices.Contains(formats, format) {
		return agentface.ErrBadParameter.Withf("unsupported output format %q", format)
	}
	return nil
}

// MimeType returns the media type used in data URIs for a format
func MimeType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "jpg":
		return "image/jpeg"
	case "pdf":
		return "application/pdf"
	case "ps":
		return "application/postscript"
	case "dot":
		return "text/vnd.graphviz"
	case "json":
		return "application/json"
	default:
		return "image/" + format
	}
}

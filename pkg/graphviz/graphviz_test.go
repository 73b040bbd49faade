package graphviz_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	graphviz "github.com/atagle123/AgentFace/pkg/graphviz"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// fakeRenderer records the DOT source and returns it as the rendering
type fakeRenderer struct {
	sync.Mutex
	sources []string
}

func (r *fakeRenderer) Render(_ context.Context, source, engine, format string) ([]byte, error) {
	r.Lock()
	defer r.Unlock()
	r.sources = append(r.sources, source)
	return []byte(engine + "/" + format + "\n" + source), nil
}

func (r *fakeRenderer) last() string {
	r.Lock()
	defer r.Unlock()
	if len(r.sources) == 0 {
		return ""
	}
	return r.sources[len(r.sources)-1]
}

func newToolkit(t *testing.T) (*tool.Toolkit, *graphviz.Diagrams, *fakeRenderer) {
	t.Helper()
	renderer := new(fakeRenderer)
	clock := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	diagrams, err := graphviz.New(t.TempDir(), graphviz.WithRenderer(renderer), graphviz.WithClock(func() time.Time { return clock }))
	if err != nil {
		t.Fatal(err)
	}
	tk, err := tool.NewToolkit(diagrams.Tools()...)
	if err != nil {
		t.Fatal(err)
	}
	return tk, diagrams, renderer
}

func files(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

///////////////////////////////////////////////////////////////////////////////
// DOT

func Test_dot_001(t *testing.T) {
	assert := assert.New(t)
	dot, err := graphviz.Graph{
		Nodes:     []string{"A", "B"},
		Edges:     []graphviz.Edge{{From: "A", To: "B", Label: "go"}, {To: "B"}},
		Title:     "Flow",
		NodeAttrs: map[string]string{"shape": "box", "color": "blue"},
	}.DOT()
	assert.NoError(err)
	assert.Equal(strings.Join([]string{
		`digraph G {`,
		`    label="Flow";`,
		`    labelloc="t";`,
		`    node [color="blue", shape="box"];`,
		`    "A";`,
		`    "B";`,
		`    "A" -> "B" [label="go"];`,
		`}`,
	}, "\n"), dot)
}

func Test_dot_002(t *testing.T) {
	assert := assert.New(t)
	dot, err := graphviz.Graph{
		Type:  graphviz.GraphUndirected,
		Edges: []graphviz.Edge{{From: "x", To: `say "hi"`}},
	}.DOT()
	assert.NoError(err)
	assert.Contains(dot, `"x" -- "say \"hi\"";`)

	dot, err = graphviz.Graph{
		Edges: []graphviz.Edge{{From: `a\`, To: `C:\tmp`, Label: `\"`}},
	}.DOT()
	assert.NoError(err)
	assert.Contains(dot, `"a\\" -> "C:\\tmp" [label="\\\""];`)

	_, err = graphviz.Graph{Type: "tree"}.DOT()
	assert.Error(err)
}

func Test_dot_003(t *testing.T) {
	assert := assert.New(t)
	dot := graphviz.Flowchart{
		Steps:       []graphviz.Step{{ID: "start"}, {ID: "check", Label: "OK?", Shape: "diamond"}, {Label: "orphan"}},
		Connections: []graphviz.Edge{{From: "start", To: "check"}, {From: "check"}},
	}.DOT()
	assert.Equal(strings.Join([]string{
		`digraph flowchart {`,
		`    rankdir=TD;`,
		`    "start" [label="start", shape="box"];`,
		`    "check" [label="OK?", shape="diamond"];`,
		`    "start" -> "check";`,
		`}`,
	}, "\n"), dot)
}

///////////////////////////////////////////////////////////////////////////////
// TOOLS

func Test_graphviz_001(t *testing.T) {
	assert := assert.New(t)
	tk, diagrams, _ := newToolkit(t)

	// A simple graph with one edge creates exactly one file
	result, err := tk.Run(context.Background(), "create_simple_graph", json.RawMessage(`{
		"nodes": ["A", "B"],
		"edges": [{"from": "A", "to": "B"}],
		"save_to_folder": true
	}`))
	assert.NoError(err)
	resp := result.(*graphviz.DiagramResponse)
	assert.Equal([]string{"simple_graph_20250601_123000.png"}, files(t, diagrams.Store().Dir()))
	assert.Equal(filepath.Join(diagrams.Store().Dir(), "simple_graph_20250601_123000.png"), resp.Path)
	assert.True(strings.HasPrefix(resp.DataURI, "data:image/png;base64,"))
}

func Test_graphviz_002(t *testing.T) {
	assert := assert.New(t)
	tk, _, renderer := newToolkit(t)

	// An edge missing "from" is skipped
	_, err := tk.Run(context.Background(), "create_simple_graph", json.RawMessage(`{
		"nodes": ["A", "B"],
		"edges": [{"to": "B"}, {"from": "A", "to": "B"}],
		"save_to_folder": false
	}`))
	assert.NoError(err)
	assert.Equal(1, strings.Count(renderer.last(), "->"))
	assert.Contains(renderer.last(), `"A" -> "B";`)
}

func Test_graphviz_003(t *testing.T) {
	assert := assert.New(t)
	tk, diagrams, _ := newToolkit(t)
	for _, name := range []string{"first", "second", "third"} {
		_, err := tk.Run(context.Background(), "create_graphviz_diagram", map[string]any{
			"dot_source": "digraph { a -> b }",
			"filename":   name,
		})
		assert.NoError(err)
	}
	dir := diagrams.Store().Dir()
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"first.png", "second.png", "third.png"} {
		mtime := base.Add(time.Duration(i) * time.Minute)
		assert.NoError(os.Chtimes(filepath.Join(dir, name), mtime, mtime))
	}

	// Only the newest with a limit of one
	result, err := tk.Run(context.Background(), "list_saved_diagrams", map[string]any{"limit": 1})
	assert.NoError(err)
	list := result.(*graphviz.ListResponse)
	assert.Equal(1, list.Count)
	assert.Equal("third.png", list.Diagrams[0].Name)

	// All, newest first
	result, err = tk.Run(context.Background(), "list_saved_diagrams", nil)
	assert.NoError(err)
	list = result.(*graphviz.ListResponse)
	if assert.Equal(3, list.Count) {
		assert.Equal("second.png", list.Diagrams[1].Name)
		assert.Equal("first.png", list.Diagrams[2].Name)
	}
}

func Test_graphviz_004(t *testing.T) {
	assert := assert.New(t)
	tk, diagrams, _ := newToolkit(t)

	// Not found is a result, not an error
	result, err := tk.Run(context.Background(), "delete_diagram", map[string]any{"filename": "nonexistent.png"})
	assert.NoError(err)
	resp := result.(*graphviz.DeleteResponse)
	assert.False(resp.Deleted)
	assert.Equal("Diagram 'nonexistent.png' not found in the diagrams folder.", resp.Message)

	// Path separators are rejected
	_, err = tk.Run(context.Background(), "delete_diagram", map[string]any{"filename": "../secret.png"})
	assert.ErrorIs(err, agentface.ErrBadParameter)

	// A directory is not a file
	assert.NoError(os.Mkdir(filepath.Join(diagrams.Store().Dir(), "sub"), 0o755))
	_, err = tk.Run(context.Background(), "delete_diagram", map[string]any{"filename": "sub"})
	assert.ErrorIs(err, agentface.ErrBadParameter)

	// Delete a saved diagram
	_, err = tk.Run(context.Background(), "create_graphviz_diagram", map[string]any{"dot_source": "graph { a }", "filename": "keep"})
	assert.NoError(err)
	result, err = tk.Run(context.Background(), "delete_diagram", map[string]any{"filename": "keep.png"})
	assert.NoError(err)
	assert.True(result.(*graphviz.DeleteResponse).Deleted)
	assert.NoFileExists(filepath.Join(diagrams.Store().Dir(), "keep.png"))
}

func Test_graphviz_005(t *testing.T) {
	assert := assert.New(t)
	tk, diagrams, _ := newToolkit(t)

	// Generated names within the same second do not overwrite
	for range 2 {
		_, err := tk.Run(context.Background(), "create_flowchart", map[string]any{
			"steps":       []map[string]any{{"id": "a"}, {"id": "b"}},
			"connections": []map[string]any{{"from": "a", "to": "b"}},
		})
		assert.NoError(err)
	}
	names := files(t, diagrams.Store().Dir())
	assert.Len(names, 2)
	assert.Contains(names, "flowchart_20250601_123000.png")
}

func Test_graphviz_006(t *testing.T) {
	assert := assert.New(t)
	tk, diagrams, _ := newToolkit(t)

	// Neither saved nor encoded goes to a temporary file
	result, err := tk.Run(context.Background(), "create_graphviz_diagram", map[string]any{
		"dot_source":     "digraph { a }",
		"output_format":  "svg",
		"return_base64":  false,
		"save_to_folder": false,
	})
	assert.NoError(err)
	resp := result.(*graphviz.DiagramResponse)
	assert.Empty(resp.DataURI)
	assert.FileExists(resp.Path)
	assert.NoError(os.Remove(resp.Path))
	assert.Empty(files(t, diagrams.Store().Dir()))

	// Unknown engines and formats are invalid input
	_, err = tk.Run(context.Background(), "create_graphviz_diagram", map[string]any{"dot_source": "digraph { a }", "engine": "paint"})
	assert.ErrorIs(err, agentface.ErrBadParameter)
	_, err = tk.Run(context.Background(), "create_graphviz_diagram", map[string]any{"dot_source": "digraph { a }", "output_format": "bmp"})
	assert.ErrorIs(err, agentface.ErrBadParameter)
}

func Test_graphviz_007(t *testing.T) {
	assert := assert.New(t)
	_, diagrams, _ := newToolkit(t)
	ns, err := diagrams.Namespace()
	assert.NoError(err)
	tk, err := tool.NewToolkit()
	assert.NoError(err)
	assert.NoError(tk.Import(ns))
	for _, name := range []string{"create_graphviz_diagram", "create_simple_graph", "create_flowchart", "list_saved_diagrams", "delete_diagram"} {
		assert.NotNil(tk.Lookup(graphviz.Namespace+"_"+name), name)
	}
}

func Test_graphviz_008(t *testing.T) {
	assert := assert.New(t)
	renderer := &graphviz.Exec{Path: "graphviz-is-not-installed"}
	_, err := renderer.Render(context.Background(), "digraph { a }", "dot", "png")
	assert.ErrorIs(err, agentface.ErrRenderEngineMissing)
	assert.Equal("render-engine-missing", agentface.KindOf(err))
}

func Test_graphviz_009(t *testing.T) {
	if _, err := os.Stat("/usr/bin/dot"); err != nil {
		t.Skip("graphviz is not installed")
	}
	assert := assert.New(t)
	diagrams, err := graphviz.New(t.TempDir())
	assert.NoError(err)
	resp, err := diagrams.Render(context.Background(), "digraph { a -> b }", graphviz.RenderOptions{Format: "svg", Save: true, Filename: "ab"})
	assert.NoError(err)
	data, err := os.ReadFile(resp.Path)
	assert.NoError(err)
	assert.Contains(string(data), "<svg")
}

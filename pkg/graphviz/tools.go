package graphviz

import (
	"context"
	"encoding/json"
	"errors"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	jsonschema "github.com/google/jsonschema-go/jsonschema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type createDiagram struct{ *Diagrams }
type simpleGraph struct{ *Diagrams }
type flowchart struct{ *Diagrams }
type listDiagrams struct{ *Diagrams }
type deleteDiagram struct{ *Diagrams }

var _ tool.Tool = (*createDiagram)(nil)
var _ tool.Tool = (*simpleGraph)(nil)
var _ tool.Tool = (*flowchart)(nil)
var _ tool.Tool = (*listDiagrams)(nil)
var _ tool.Tool = (*deleteDiagram)(nil)

///////////////////////////////////////////////////////////////////////////////
// REQUEST / RESPONSE TYPES

// DiagramRequest is the input for create_graphviz_diagram
type DiagramRequest struct {
	Source       string `json:"dot_source" jsonschema:"The DOT notation source code for the graph"`
	OutputFormat string `json:"output_format,omitempty" jsonschema:"Output format: png, svg, pdf, ps or dot (default: png)"`
	Engine       string `json:"engine,omitempty" jsonschema:"Layout engine: dot, neato, fdp, sfdp, circo or twopi (default: dot)"`
	ReturnBase64 *bool  `json:"return_base64,omitempty" jsonschema:"Return the rendering as a base64 data URI (default: true)"`
	SaveToFolder *bool  `json:"save_to_folder,omitempty" jsonschema:"Save the rendering to the diagrams folder (default: true)"`
	Filename     string `json:"filename,omitempty" jsonschema:"File name without extension (default: timestamp)"`
}

// SimpleGraphRequest is the input for create_simple_graph
type SimpleGraphRequest struct {
	Graph
	OutputFormat string `json:"output_format,omitempty" jsonschema:"Output format: png, svg, pdf, ps or dot (default: png)"`
	Engine       string `json:"engine,omitempty" jsonschema:"Layout engine: dot, neato, fdp, sfdp, circo or twopi (default: dot)"`
	SaveToFolder *bool  `json:"save_to_folder,omitempty" jsonschema:"Save the rendering to the diagrams folder (default: true)"`
	Filename     string `json:"filename,omitempty" jsonschema:"File name without extension (default: timestamp)"`
}

// FlowchartRequest is the input for create_flowchart
type FlowchartRequest struct {
	Flowchart
	OutputFormat string `json:"output_format,omitempty" jsonschema:"Output format: png, svg, pdf, ps or dot (default: png)"`
	SaveToFolder *bool  `json:"save_to_folder,omitempty" jsonschema:"Save the rendering to the diagrams folder (default: true)"`
	Filename     string `json:"filename,omitempty" jsonschema:"File name without extension (default: timestamp)"`
}

// ListRequest is the input for list_saved_diagrams
type ListRequest struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of diagrams to list, newest first (default: all)"`
}

// ListResponse is the result of list_saved_diagrams
type ListResponse struct {
	Dir      string  `json:"dir"`
	Count    int     `json:"count"`
	Diagrams []Entry `json:"diagrams"`
	Message  string  `json:"message,omitempty"`
}

// DeleteRequest is the input for delete_diagram
type DeleteRequest struct {
	Filename string `json:"filename" jsonschema:"Name of the diagram file to delete, including the extension"`
}

// DeleteResponse is the result of delete_diagram
type DeleteResponse struct {
	Filename string `json:"filename"`
	Deleted  bool   `json:"deleted"`
	Message  string `json:"message"`
}

///////////////////////////////////////////////////////////////////////////////
// TOOL INTERFACE

func (*createDiagram) Name() string {
	return "create_graphviz_diagram"
}

func (*createDiagram) Description() string {
	return "Create a Graphviz diagram from DOT notation source code. " +
		"Returns a base64 data URI of the rendering and the path of the saved file."
}

func (*createDiagram) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[DiagramRequest](nil)
}

func (t *createDiagram) Run(ctx context.Context, input json.RawMessage) (any, error) {
	var req DiagramRequest
	if err := decode(input, &req); err != nil {
		return nil, err
	}
	if req.Source == "" {
		return nil, agentface.ErrBadParameter.With("dot_source is required")
	}
	return t.Render(ctx, req.Source, RenderOptions{
		Format:   req.OutputFormat,
		Engine:   req.Engine,
		Base64:   boolOr(req.ReturnBase64, true),
		Save:     boolOr(req.SaveToFolder, true),
		Filename: req.Filename,
		Prefix:   "diagram_",
	})
}

func (*simpleGraph) Name() string {
	return "create_simple_graph"
}

func (*simpleGraph) Description() string {
	return "Create a graph from a list of nodes and edges without writing DOT notation. " +
		"Each edge has 'from', 'to' and an optional 'label'; edges missing an end are skipped."
}

func (*simpleGraph) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[SimpleGraphRequest](nil)
}

func (t *simpleGraph) Run(ctx context.Context, input json.RawMessage) (any, error) {
	var req SimpleGraphRequest
	if err := decode(input, &req); err != nil {
		return nil, err
	}
	source, err := req.Graph.DOT()
	if err != nil {
		return nil, agentface.ErrBadParameter.With(err)
	}
	return t.Render(ctx, source, RenderOptions{
		Format:   req.OutputFormat,
		Engine:   req.Engine,
		Base64:   true,
		Save:     boolOr(req.SaveToFolder, true),
		Filename: req.Filename,
		Prefix:   "simple_graph_",
	})
}

func (*flowchart) Name() string {
	return "create_flowchart"
}

func (*flowchart) Description() string {
	return "Create a top-to-bottom flowchart from steps and connections. " +
		"Each step has an 'id', a 'label' and an optional 'shape' (box, ellipse, diamond, circle)."
}

func (*flowchart) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[FlowchartRequest](nil)
}

func (t *flowchart) Run(ctx context.Context, input json.RawMessage) (any, error) {
	var req FlowchartRequest
	if err := decode(input, &req); err != nil {
		return nil, err
	}
	return t.Render(ctx, req.Flowchart.DOT(), RenderOptions{
		Format:   req.OutputFormat,
		Engine:   DefaultEngine,
		Base64:   true,
		Save:     boolOr(req.SaveToFolder, true),
		Filename: req.Filename,
		Prefix:   "flowchart_",
	})
}

func (*listDiagrams) Name() string {
	return "list_saved_diagrams"
}

func (*listDiagrams) Description() string {
	return "List the diagrams saved in the diagrams folder, newest first, with their size and creation time."
}

func (*listDiagrams) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[ListRequest](nil)
}

func (t *listDiagrams) Run(_ context.Context, input json.RawMessage) (any, error) {
	var req ListRequest
	if len(input) > 0 {
		if err := decode(input, &req); err != nil {
			return nil, err
		}
	}
	entries, err := t.store.List(req.Limit)
	if err != nil {
		return nil, err
	}
	resp := &ListResponse{
		Dir:      t.store.Dir(),
		Count:    len(entries),
		Diagrams: entries,
	}
	if len(entries) == 0 {
		resp.Message = "No diagrams found in the diagrams folder."
	}
	return resp, nil
}

func (*deleteDiagram) Name() string {
	return "delete_diagram"
}

func (*deleteDiagram) Description() string {
	return "Delete a diagram file from the diagrams folder."
}

func (*deleteDiagram) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[DeleteRequest](nil)
}

func (t *deleteDiagram) Run(_ context.Context, input json.RawMessage) (any, error) {
	var req DeleteRequest
	if err := decode(input, &req); err != nil {
		return nil, err
	}
	resp := &DeleteResponse{Filename: req.Filename}
	err := t.store.Delete(req.Filename)
	switch {
	case err == nil:
		resp.Deleted = true
		resp.Message = "Successfully deleted diagram: " + req.Filename
	case errors.Is(err, agentface.ErrNotFound):
		// A missing diagram is reported, not raised
		resp.Message = "Diagram '" + req.Filename + "' not found in the diagrams folder."
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

package graphviz

import (
	"fmt"
	"sort"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Edge connects two nodes. Edges missing either end are skipped.
type Edge struct {
	From  string `json:"from,omitempty" jsonschema:"Source node"`
	To    string `json:"to,omitempty" jsonschema:"Target node"`
	Label string `json:"label,omitempty" jsonschema:"Optional edge label"`
}

// Step is a flowchart node
type Step struct {
	ID    string `json:"id,omitempty" jsonschema:"Unique step identifier"`
	Label string `json:"label,omitempty" jsonschema:"Text shown in the step (default: the id)"`
	Shape string `json:"shape,omitempty" jsonschema:"Node shape such as box, ellipse, diamond or circle (default: box)"`
}

// Graph describes a simple graph without DOT notation
type Graph struct {
	Nodes     []string          `json:"nodes" jsonschema:"Node names"`
	Edges     []Edge            `json:"edges" jsonschema:"Edges with from, to and an optional label"`
	Type      string            `json:"graph_type,omitempty" jsonschema:"graph for undirected or digraph for directed (default: digraph)"`
	Title     string            `json:"title,omitempty" jsonschema:"Optional graph title"`
	NodeAttrs map[string]string `json:"node_attrs,omitempty" jsonschema:"Default attributes for all nodes, for example shape=box"`
	EdgeAttrs map[string]string `json:"edge_attrs,omitempty" jsonschema:"Default attributes for all edges, for example style=dashed"`
}

// Flowchart describes steps and their connections
type Flowchart struct {
	Steps       []Step `json:"steps" jsonschema:"Steps with id, label and optional shape"`
	Connections []Edge `json:"connections" jsonschema:"Connections with from and to"`
	Title       string `json:"title,omitempty" jsonschema:"Optional flowchart title"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	GraphDirected   = "digraph"
	GraphUndirected = "graph"
	defaultShape    = "box"
	indent          = "    "
)

// quoter escapes a DOT identifier for use between double quotes
var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// DOT returns the DOT source for the graph
func (g Graph) DOT() (string, error) {
	kind := g.Type
	if kind == "" {
		kind = GraphDirected
	}
	connector := " -> "
	switch kind {
	case GraphDirected:
	case GraphUndirected:
		connector = " -- "
	default:
		return "", fmt.Errorf("invalid graph type %q", g.Type)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s G {\n", kind)
	writeTitle(&b, g.Title)
	if len(g.NodeAttrs) > 0 {
		fmt.Fprintf(&b, "%snode [%s];\n", indent, attrs(g.NodeAttrs))
	}
	if len(g.EdgeAttrs) > 0 {
		fmt.Fprintf(&b, "%sedge [%s];\n", indent, attrs(g.EdgeAttrs))
	}
	for _, node := range g.Nodes {
		fmt.Fprintf(&b, "%s%s;\n", indent, quote(node))
	}
	for _, edge := range g.Edges {
		if edge.From == "" || edge.To == "" {
			continue
		}
		fmt.Fprintf(&b, "%s%s%s%s", indent, quote(edge.From), connector, quote(edge.To))
		if edge.Label != "" {
			fmt.Fprintf(&b, " [label=%s]", quote(edge.Label))
		}
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String(), nil
}

// DOT returns the DOT source for the flowchart, laid out top to bottom
func (f Flowchart) DOT() string {
	var b strings.Builder
	b.WriteString("digraph flowchart {\n")
	b.WriteString(indent + "rankdir=TD;\n")
	writeTitle(&b, f.Title)
	for _, step := range f.Steps {
		if step.ID == "" {
			continue
		}
		label, shape := step.Label, step.Shape
		if label == "" {
			label = step.ID
		}
		if shape == "" {
			shape = defaultShape
		}
		fmt.Fprintf(&b, "%s%s [label=%s, shape=%s];\n", indent, quote(step.ID), quote(label), quote(shape))
	}
	for _, conn := range f.Connections {
		if conn.From == "" || conn.To == "" {
			continue
		}
		fmt.Fprintf(&b, "%s%s -> %s;\n", indent, quote(conn.From), quote(conn.To))
	}
	b.WriteString("}")
	return b.String()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func writeTitle(b *strings.Builder, title string) {
	if title == "" {
		return
	}
	fmt.Fprintf(b, "%slabel=%s;\n", indent, quote(title))
	b.WriteString(indent + "labelloc=\"t\";\n")
}

// attrs formats attributes in key order
func attrs(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+quote(m[k]))
	}
	return strings.Join(parts, ", ")
}

func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

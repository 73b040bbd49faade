package tool

import (
	"context"
	"encoding/json"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	jsonschema "github.com/google/jsonschema-go/jsonschema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Namespace is a named group of tools, which is imported into a toolkit
// with each tool name prefixed by the namespace name.
type Namespace struct {
	name  string
	tools []Tool
}

// prefixed exposes a tool under a namespaced name
type prefixed struct {
	Tool
	name string
}

var _ Tool = (*prefixed)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	NamespaceSeparator = "_"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewNamespace returns a namespace with the given tools. The namespace name
// must be an identifier; an empty name imports tools unprefixed.
func NewNamespace(name string, tools ...Tool) (*Namespace, error) {
	if name != "" && !IsIdentifier(name) {
		return nil, agentface.ErrBadParameter.Withf("invalid namespace: %q", name)
	}
	return &Namespace{name: name, tools: tools}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Name returns the name of the namespace
func (ns *Namespace) Name() string {
	return ns.name
}

// Tools returns the tools in the namespace, with unprefixed names
func (ns *Namespace) Tools() []Tool {
	return ns.tools
}

// Import registers every tool of each namespace into the toolkit under the
// name "<namespace>_<tool>". A name which already exists in the toolkit is
// an ErrConflict, and nothing from the failing namespace is imported.
func (tk *Toolkit) Import(namespaces ...*Namespace) error {
	for _, ns := range namespaces {
		tools := make([]Tool, 0, len(ns.tools))
		seen := make(map[string]bool, len(ns.tools))
		for _, t := range ns.tools {
			if t == nil {
				return agentface.ErrBadParameter.Withf("nil tool in namespace %q", ns.name)
			}
			name := t.Name()
			if ns.name != "" {
				name = ns.name + NamespaceSeparator + name
			}
			if seen[name] || tk.Lookup(name) != nil {
				return agentface.ErrConflict.Withf("duplicate tool name %q in namespace %q", name, ns.name)
			}
			seen[name] = true
			if ns.name == "" {
				tools = append(tools, t)
			} else {
				tools = append(tools, &prefixed{Tool: t, name: name})
			}
		}
		if err := tk.Register(tools...); err != nil {
			return err
		}
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// TOOL INTERFACE

func (t *prefixed) Name() string {
	return t.name
}

func (t *prefixed) Schema() (*jsonschema.Schema, error) {
	return t.Tool.Schema()
}

func (t *prefixed) Run(ctx context.Context, input json.RawMessage) (any, error) {
	return t.Tool.Run(ctx, input)
}

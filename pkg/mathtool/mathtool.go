// Package mathtool provides integer arithmetic tools, served in the
// "sub_server" namespace.
package mathtool

import (
	"context"
	"encoding/json"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	jsonschema "github.com/google/jsonschema-go/jsonschema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type add struct{}
type multiply struct{}

var _ tool.Tool = (*add)(nil)
var _ tool.Tool = (*multiply)(nil)

// OperandsRequest is the input for both arithmetic tools
type OperandsRequest struct {
	A int `json:"a" jsonschema:"First operand"`
	B int `json:"b" jsonschema:"Second operand"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	Namespace = "sub_server"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewTools returns the arithmetic tools
func NewTools() []tool.Tool {
	return []tool.Tool{
		new(add),
		new(multiply),
	}
}

// NewNamespace returns the arithmetic tools in the "sub_server" namespace
func NewNamespace() (*tool.Namespace, error) {
	return tool.NewNamespace(Namespace, NewTools()...)
}

///////////////////////////////////////////////////////////////////////////////
// TOOL INTERFACE

func (*add) Name() string {
	return "add"
}

func (*add) Description() string {
	return "Add two integers and return the sum."
}

func (*add) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[OperandsRequest](nil)
}

func (*add) Run(_ context.Context, input json.RawMessage) (any, error) {
	req, err := decode(input)
	if err != nil {
		return nil, err
	}
	return req.A + req.B, nil
}

func (*multiply) Name() string {
	return "multiply"
}

func (*multiply) Description() string {
	return "Multiply two integers and return the product."
}

func (*multiply) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[OperandsRequest](nil)
}

func (*multiply) Run(_ context.Context, input json.RawMessage) (any, error) {
	req, err := decode(input)
	if err != nil {
		return nil, err
	}
	return req.A * req.B, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func decode(input json.RawMessage) (OperandsRequest, error) {
	var req OperandsRequest
	if len(input) == 0 {
		return req, agentface.ErrBadParameter.With("missing operands")
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return req, agentface.ErrBadParameter.Withf("failed to unmarshal input: %v", err)
	}
	return req, nil
}

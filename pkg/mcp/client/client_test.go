package client_test

import (
	"context"
	"encoding/json"
	"testing"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	mathtool "github.com/atagle123/AgentFace/pkg/mathtool"
	client "github.com/atagle123/AgentFace/pkg/mcp/client"
	server "github.com/atagle123/AgentFace/pkg/mcp/server"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	assert "github.com/stretchr/testify/assert"
)

// missingEngine always fails as if the renderer were not installed
type missingEngine struct{}

type renderRequest struct {
	Source string `json:"source"`
}

func (missingEngine) Name() string        { return "render" }
func (missingEngine) Description() string { return "fails" }
func (missingEngine) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[renderRequest](nil)
}
func (missingEngine) Run(context.Context, json.RawMessage) (any, error) {
	return nil, agentface.ErrRenderEngineMissing.With("dot")
}

func connect(t *testing.T) *client.Client {
	t.Helper()
	math, _ := mathtool.NewNamespace()
	other, _ := tool.NewNamespace("graphviz_server", missingEngine{})
	srv, err := server.New("test", "0.0.0", server.WithNamespace(math, other))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	ct, st := mcp.NewInMemoryTransports()
	ss, err := srv.MCP().Connect(ctx, st, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ss.Close() })
	c, err := client.Connect(ctx, ct, client.WithClientInfo("test", "0.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func Test_client_001(t *testing.T) {
	assert := assert.New(t)
	c := connect(t)

	tools, err := c.ListTools(context.Background())
	assert.NoError(err)
	names := map[string]bool{}
	for _, tl := range tools {
		names[tl.Name()] = true
		schema, err := tl.Schema()
		assert.NoError(err)
		assert.Equal("object", schema.Type)
	}
	assert.Equal(map[string]bool{"sub_server_add": true, "sub_server_multiply": true, "graphviz_server_render": true}, names)
}

func Test_client_002(t *testing.T) {
	assert := assert.New(t)
	c := connect(t)

	result, err := c.Call(context.Background(), "sub_server_multiply", json.RawMessage(`{"a":6,"b":7}`))
	assert.NoError(err)
	assert.True(result.OK())
	assert.EqualValues(42, result.Value)
}

func Test_client_003(t *testing.T) {
	assert := assert.New(t)
	c := connect(t)

	// Failures keep their kind across the wire
	result, err := c.Call(context.Background(), "graphviz_server_render", json.RawMessage(`{"source":"digraph {}"}`))
	assert.NoError(err)
	assert.False(result.OK())
	assert.Equal("render-engine-missing", result.Kind)
	assert.ErrorIs(result.Err(), agentface.ErrRenderEngineMissing)

	// Remote tools return the failure as an error
	tools, err := c.ListTools(context.Background())
	assert.NoError(err)
	tk, err := tool.NewToolkit(tools...)
	assert.NoError(err)
	_, err = tk.Run(context.Background(), "graphviz_server_render", json.RawMessage(`{"source":"digraph {}"}`))
	assert.ErrorIs(err, agentface.ErrRenderEngineMissing)
}

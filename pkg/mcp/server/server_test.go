package server_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	mathtool "github.com/atagle123/AgentFace/pkg/mathtool"
	client "github.com/atagle123/AgentFace/pkg/mcp/client"
	server "github.com/atagle123/AgentFace/pkg/mcp/server"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	assert "github.com/stretchr/testify/assert"
)

// renamed exposes a tool under another name
type renamed struct {
	tool.Tool
	name string
}

func (r *renamed) Name() string { return r.name }

func newServer(t *testing.T) *server.Server {
	t.Helper()
	math, err := mathtool.NewNamespace()
	if err != nil {
		t.Fatal(err)
	}
	srv, err := server.New("test", "0.0.0", server.WithNamespace(math))
	if err != nil {
		t.Fatal(err)
	}
	return srv
}

func Test_server_001(t *testing.T) {
	assert := assert.New(t)
	srv := newServer(t)
	assert.Equal(2, srv.Toolkit().Len())
	assert.NotNil(srv.Toolkit().Lookup("sub_server_add"))

	result := srv.Call(context.Background(), "sub_server_add", json.RawMessage(`{"a":123,"b":234}`))
	assert.True(result.OK())
	assert.Equal(357, result.Value)

	result = srv.Call(context.Background(), "sub_server_add", json.RawMessage(`{"a":"x"}`))
	assert.False(result.OK())
	assert.Equal("invalid-input", result.Kind)

	result = srv.Call(context.Background(), "missing", nil)
	assert.Equal("not-found", result.Kind)
}

func Test_server_002(t *testing.T) {
	assert := assert.New(t)

	// The same namespace twice yields duplicate tool names
	a, _ := mathtool.NewNamespace()
	b, _ := mathtool.NewNamespace()
	_, err := server.New("test", "0.0.0", server.WithNamespace(a, b))
	assert.ErrorIs(err, agentface.ErrConflict)

	// Different namespaces producing the same full name
	x, _ := mathtool.NewNamespace()
	y, _ := tool.NewNamespace("sub", &renamed{Tool: mathtool.NewTools()[0], name: "server_add"})
	_, err = server.New("test", "0.0.0", server.WithNamespace(x), server.WithNamespace(y))
	assert.ErrorIs(err, agentface.ErrConflict)
}

func Test_server_003(t *testing.T) {
	assert := assert.New(t)
	srv := newServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx := context.Background()
	c, err := client.New(ctx, ts.URL+server.Path)
	if !assert.NoError(err) {
		return
	}
	defer c.Close()

	tools, err := c.ListTools(ctx)
	assert.NoError(err)
	assert.Len(tools, 2)

	tk, err := tool.NewToolkit(tools...)
	assert.NoError(err)
	sum, err := tk.Run(ctx, "sub_server_add", json.RawMessage(`{"a":123,"b":234}`))
	assert.NoError(err)
	assert.EqualValues(357, sum)
}

package tool_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	tool "github.com/atagle123/AgentFace/pkg/tool"
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	assert "github.com/stretchr/testify/assert"
)

type stubTool struct {
	name string
}

type echoRequest struct {
	Text string `json:"text" jsonschema:"Text to echo"`
}

func (s *stubTool) Name() string                        { return s.name }
func (s *stubTool) Description() string                 { return "stub" }
func (s *stubTool) Schema() (*jsonschema.Schema, error) { return jsonschema.For[echoRequest](nil) }
func (s *stubTool) Run(_ context.Context, input json.RawMessage) (any, error) {
	var req echoRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, agentface.ErrBadParameter.With(err)
	}
	return s.name + ":" + req.Text, nil
}

func Test_tool_001(t *testing.T) {
	assert := assert.New(t)
	tk, err := tool.NewToolkit(&stubTool{name: "b"}, &stubTool{name: "a"})
	assert.NoError(err)
	assert.Equal(2, tk.Len())
	names := []string{}
	for _, tl := range tk.Tools() {
		names = append(names, tl.Name())
	}
	assert.Equal([]string{"a", "b"}, names)
}

func Test_tool_002(t *testing.T) {
	assert := assert.New(t)
	_, err := tool.NewToolkit(&stubTool{name: "a"}, &stubTool{name: "a"})
	assert.ErrorIs(err, agentface.ErrConflict)

	_, err = tool.NewToolkit(&stubTool{name: "not a name"})
	assert.ErrorIs(err, agentface.ErrBadParameter)
}

func Test_tool_003(t *testing.T) {
	assert := assert.New(t)
	tk, err := tool.NewToolkit(&stubTool{name: "echo"})
	assert.NoError(err)

	result, err := tk.Run(context.Background(), "echo", json.RawMessage(`{"text":"hi"}`))
	assert.NoError(err)
	assert.Equal("echo:hi", result)

	_, err = tk.Run(context.Background(), "echo", json.RawMessage(`{"text":1}`))
	assert.ErrorIs(err, agentface.ErrBadParameter)

	_, err = tk.Run(context.Background(), "missing", nil)
	assert.ErrorIs(err, agentface.ErrNotFound)
}

func Test_namespace_001(t *testing.T) {
	assert := assert.New(t)
	math, err := tool.NewNamespace("sub_server", &stubTool{name: "add"})
	assert.NoError(err)
	graph, err := tool.NewNamespace("graphviz_server", &stubTool{name: "add"})
	assert.NoError(err)

	tk, err := tool.NewToolkit()
	assert.NoError(err)
	assert.NoError(tk.Import(math, graph))
	assert.NotNil(tk.Lookup("sub_server_add"))
	assert.NotNil(tk.Lookup("graphviz_server_add"))

	result, err := tk.Run(context.Background(), "sub_server_add", map[string]any{"text": "x"})
	assert.NoError(err)
	assert.Equal("add:x", result)
}

func Test_namespace_002(t *testing.T) {
	assert := assert.New(t)

	// Two namespaces contributing the same full tool name
	a, _ := tool.NewNamespace("a", &stubTool{name: "b_c"})
	b, _ := tool.NewNamespace("a_b", &stubTool{name: "c"})
	tk, _ := tool.NewToolkit()
	assert.ErrorIs(tk.Import(a, b), agentface.ErrConflict)

	// Unprefixed namespaces with the same tool
	x, _ := tool.NewNamespace("", &stubTool{name: "add"})
	y, _ := tool.NewNamespace("", &stubTool{name: "add"})
	tk, _ = tool.NewToolkit()
	assert.ErrorIs(tk.Import(x, y), agentface.ErrConflict)

	_, err := tool.NewNamespace("bad name")
	assert.ErrorIs(err, agentface.ErrBadParameter)
}

func Test_result_001(t *testing.T) {
	assert := assert.New(t)

	ok := tool.NewResult(42, nil)
	assert.True(ok.OK())
	assert.NoError(ok.Err())

	failed := tool.NewResult(nil, agentface.ErrRenderEngineMissing.With("dot"))
	assert.False(failed.OK())
	assert.Equal("render-engine-missing", failed.Kind)
	assert.ErrorIs(failed.Err(), agentface.ErrRenderEngineMissing)

	data, err := json.Marshal(failed)
	assert.NoError(err)
	decoded := tool.DecodeResult(data)
	assert.Equal(failed.Kind, decoded.Kind)
	assert.ErrorIs(decoded.Err(), agentface.ErrRenderEngineMissing)
	assert.Equal(failed.Message, decoded.Err().Error())

	plain := tool.DecodeResult([]byte(`"hello"`))
	assert.True(plain.OK())
	assert.Equal("hello", plain.Value)

	unknown := tool.NewResult(nil, errors.New("boom"))
	assert.Equal("internal", unknown.Kind)
}

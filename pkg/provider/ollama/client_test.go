package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	// Packages
	opt "github.com/atagle123/AgentFace/pkg/opt"
	ollama "github.com/atagle123/AgentFace/pkg/provider/ollama"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	client "github.com/mutablelogic/go-client"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SET-UP

// fakeServer records the last request body for each path
type fakeServer struct {
	sync.Mutex
	bodies map[string]map[string]any
}

func newFakeServer(t *testing.T) (*fakeServer, *ollama.Client) {
	t.Helper()
	fake := &fakeServer{bodies: make(map[string]map[string]any)}
	ts := httptest.NewServer(http.HandlerFunc(fake.ServeHTTP))
	t.Cleanup(ts.Close)
	c, err := ollama.New(ts.URL+"/api", client.OptTimeout(10*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	return fake, c
}

func (f *fakeServer) body(path string) map[string]any {
	f.Lock()
	defer f.Unlock()
	return f.bodies[path]
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.Lock()
		f.bodies[r.URL.Path] = body
		f.Unlock()
	}

	var response any
	switch r.URL.Path {
	case "/api/version":
		response = map[string]any{"version": "0.12.3"}
	case "/api/tags":
		response = map[string]any{"models": []map[string]any{
			{"name": "llama3.2:3b", "model": "llama3.2:3b", "size": 2019393189},
			{"name": "nomic-embed-text:latest", "model": "nomic-embed-text:latest"},
		}}
	case "/api/pull":
		response = map[string]any{"status": "success"}
	case "/api/embed":
		input, _ := f.body(r.URL.Path)["input"].([]any)
		embeddings := make([][]float64, len(input))
		for i := range input {
			embeddings[i] = []float64{float64(i), 1}
		}
		response = map[string]any{"model": "nomic-embed-text", "embeddings": embeddings}
	case "/api/chat":
		messages, _ := f.body(r.URL.Path)["messages"].([]any)
		last, _ := messages[len(messages)-1].(map[string]any)
		if _, ok := f.body(r.URL.Path)["tools"]; ok && last["role"] == "user" {
			response = map[string]any{
				"model": "llama3.2:3b",
				"done":  true,
				"message": map[string]any{
					"role":    "assistant",
					"content": "",
					"tool_calls": []map[string]any{
						{"function": map[string]any{"name": "sub_server_add", "arguments": map[string]any{"a": 123, "b": 234}}},
					},
				},
			}
		} else {
			response = map[string]any{
				"model":       "llama3.2:3b",
				"done":        true,
				"done_reason": "stop",
				"eval_count":  3,
				"message":     map[string]any{"role": "assistant", "content": "hola"},
			}
		}
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_client_001(t *testing.T) {
	assert := assert.New(t)
	_, c := newFakeServer(t)
	assert.Equal("ollama", c.Name())

	version, err := c.Version(context.TODO())
	assert.NoError(err)
	assert.Equal("0.12.3", version)

	models, err := c.ListModels(context.TODO())
	assert.NoError(err)
	assert.Len(models, 2)

	model, err := c.GetModel(context.TODO(), "llama3.2:3b")
	assert.NoError(err)
	assert.Equal(int64(2019393189), model.Size)

	_, err = c.GetModel(context.TODO(), "devstral:24b")
	assert.Error(err)
}

func Test_client_002(t *testing.T) {
	assert := assert.New(t)
	fake, c := newFakeServer(t)

	assert.NoError(c.PullModel(context.TODO(), "devstral:24b"))
	body := fake.body("/api/pull")
	assert.Equal("devstral:24b", body["model"])
	assert.Equal(false, body["stream"])

	assert.Error(c.PullModel(context.TODO(), ""))
}

func Test_chat_001(t *testing.T) {
	assert := assert.New(t)
	fake, c := newFakeServer(t)
	model := c.Model("llama3.2:3b", opt.WithTemperature(0.1))
	assert.Equal("llama3.2:3b", model.Name())

	message, err := model.Generate(context.TODO(), []*schema.Message{
		schema.NewMessage(schema.RoleUser, "hola que tal"),
	}, nil, opt.WithSystemPrompt("be brief"))
	assert.NoError(err)
	assert.Equal("hola", message.Text())
	assert.Equal(schema.ResultStop, message.Result)
	assert.Equal(uint(3), message.Tokens)

	body := fake.body("/api/chat")
	assert.Equal(false, body["stream"])
	assert.Equal(map[string]any{"temperature": 0.1}, body["options"])
	messages, _ := body["messages"].([]any)
	if assert.Len(messages, 2) {
		assert.Equal("system", messages[0].(map[string]any)["role"])
		assert.Equal("be brief", messages[0].(map[string]any)["content"])
	}
	_, hasTools := body["tools"]
	assert.False(hasTools)
}

func Test_chat_002(t *testing.T) {
	assert := assert.New(t)
	fake, c := newFakeServer(t)
	model := c.Model("llama3.2:3b")

	type operands struct {
		A int `json:"a"`
		B int `json:"b"`
	}
	s, err := jsonschema.For[operands](nil)
	assert.NoError(err)
	tools := []schema.ToolDefinition{{Name: "sub_server_add", Description: "Add two integers", InputSchema: s}}

	// The model asks for a tool call
	conversation := []*schema.Message{schema.NewMessage(schema.RoleUser, "sum me two numbers 123 and 234")}
	message, err := model.Generate(context.TODO(), conversation, tools)
	assert.NoError(err)
	assert.Equal(schema.ResultToolCall, message.Result)
	calls := message.ToolCalls()
	if assert.Len(calls, 1) {
		assert.Equal("sub_server_add", calls[0].Name)
		assert.JSONEq(`{"a":123,"b":234}`, string(calls[0].Input))
	}

	tool, _ := fake.body("/api/chat")["tools"].([]any)
	if assert.Len(tool, 1) {
		function := tool[0].(map[string]any)["function"].(map[string]any)
		assert.Equal("sub_server_add", function["name"])
		assert.Equal("object", function["parameters"].(map[string]any)["type"])
	}

	// The tool result is sent back with the tool role
	conversation = append(conversation, message, &schema.Message{
		Role:    schema.RoleTool,
		Content: []schema.ContentBlock{schema.NewToolResult(calls[0].ID, calls[0].Name, 357)},
	})
	message, err = model.Generate(context.TODO(), conversation, tools)
	assert.NoError(err)
	assert.Equal("hola", message.Text())

	messages, _ := fake.body("/api/chat")["messages"].([]any)
	if assert.Len(messages, 3) {
		assistant := messages[1].(map[string]any)
		assert.Len(assistant["tool_calls"], 1)
		result := messages[2].(map[string]any)
		assert.Equal("tool", result["role"])
		assert.Equal("357", result["content"])
		assert.Equal("sub_server_add", result["tool_name"])
	}
}

func Test_embed_001(t *testing.T) {
	assert := assert.New(t)
	fake, c := newFakeServer(t)
	model := c.Model("nomic-embed-text")

	vectors, err := model.Embed(context.TODO(), []string{"one", "two", "three"})
	assert.NoError(err)
	assert.Len(vectors, 3)
	assert.Equal([]float64{2, 1}, vectors[2])
	assert.Equal("nomic-embed-text", fake.body("/api/embed")["model"])

	vectors, err = model.Embed(context.TODO(), nil)
	assert.NoError(err)
	assert.Nil(vectors)
}

// Test_live_001 talks to a real server when OLLAMA_URL is set
func Test_live_001(t *testing.T) {
	assert := assert.New(t)
	endpoint := os.Getenv("OLLAMA_URL")
	if endpoint == "" {
		t.Skip("OLLAMA_URL not set")
	}
	c, err := ollama.New(endpoint, client.OptTrace(os.Stderr, testing.Verbose()), client.OptTimeout(5*time.Minute))
	assert.NoError(err)
	version, err := c.Version(context.TODO())
	assert.NoError(err)
	assert.NotEmpty(version)
}

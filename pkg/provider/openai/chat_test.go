package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	// Packages
	opt "github.com/atagle123/AgentFace/pkg/opt"
	openai "github.com/atagle123/AgentFace/pkg/provider/openai"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SET-UP

// completions answers with a tool call to the first request which offers
// tools, and with text otherwise
type completions struct {
	sync.Mutex
	last map[string]any
}

func (c *completions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.Lock()
	c.last = body
	c.Unlock()

	messages, _ := body["messages"].([]any)
	last, _ := messages[len(messages)-1].(map[string]any)
	message := map[string]any{"role": "assistant", "content": "<think>hmm</think>\nhola, todo bien"}
	reason := "stop"
	if _, ok := body["tools"]; ok && last["role"] == "user" {
		message = map[string]any{
			"role":    "assistant",
			"content": nil,
			"tool_calls": []map[string]any{{
				"id":       "call_abc",
				"type":     "function",
				"function": map[string]any{"name": "sub_server_add", "arguments": `{"a":123,"b":234}`},
			}},
		}
		reason = "tool_calls"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   body["model"],
		"choices": []map[string]any{{"index": 0, "finish_reason": reason, "message": message}},
		"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
}

func (c *completions) body() map[string]any {
	c.Lock()
	defer c.Unlock()
	return c.last
}

func newClient(t *testing.T) (*completions, *openai.Client) {
	t.Helper()
	handler := new(completions)
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c, err := openai.New("", openai.WithEndpoint(ts.URL+"/v1"), openai.WithAPIKey("test"), openai.WithRetries(0))
	if err != nil {
		t.Fatal(err)
	}
	return handler, c
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_chat_001(t *testing.T) {
	assert := assert.New(t)
	handler, c := newClient(t)
	assert.Equal(openai.DefaultModel, c.Name())

	message, err := c.Generate(context.TODO(), []*schema.Message{
		schema.NewMessage(schema.RoleUser, "hola que tal"),
	}, nil, opt.WithTemperature(0.5), opt.WithMaxTokens(100))
	assert.NoError(err)
	assert.Equal("hola, todo bien", message.Text())
	assert.Equal(schema.ResultStop, message.Result)
	assert.Equal(uint(5), message.Tokens)

	body := handler.body()
	assert.Equal(openai.DefaultModel, body["model"])
	assert.Equal(0.5, body["temperature"])
	assert.Equal(float64(100), body["max_completion_tokens"])
	_, hasTools := body["tools"]
	assert.False(hasTools)
}

func Test_chat_002(t *testing.T) {
	assert := assert.New(t)
	handler, c := newClient(t)

	type operands struct {
		A int `json:"a"`
		B int `json:"b"`
	}
	s, err := jsonschema.For[operands](nil)
	assert.NoError(err)
	tools := []schema.ToolDefinition{{Name: "sub_server_add", Description: "Add two integers", InputSchema: s}}

	conversation := []*schema.Message{schema.NewMessage(schema.RoleUser, "sum me two numbers 123 and 234")}
	message, err := c.Generate(context.TODO(), conversation, tools, opt.WithSystemPrompt("use tools"))
	assert.NoError(err)
	assert.Equal(schema.ResultToolCall, message.Result)
	calls := message.ToolCalls()
	if assert.Len(calls, 1) {
		assert.Equal("call_abc", calls[0].ID)
		assert.Equal("sub_server_add", calls[0].Name)
		assert.JSONEq(`{"a":123,"b":234}`, string(calls[0].Input))
	}

	offered, _ := handler.body()["tools"].([]any)
	if assert.Len(offered, 1) {
		function := offered[0].(map[string]any)["function"].(map[string]any)
		assert.Equal("sub_server_add", function["name"])
		assert.Equal("Add two integers", function["description"])
	}

	// Tool results are returned with the call id
	conversation = append(conversation, message, &schema.Message{
		Role:    schema.RoleTool,
		Content: []schema.ContentBlock{schema.NewToolResult("call_abc", "sub_server_add", 357)},
	})
	message, err = c.Generate(context.TODO(), conversation, tools)
	assert.NoError(err)
	assert.Equal("hola, todo bien", message.Text())

	messages, _ := handler.body()["messages"].([]any)
	if assert.Len(messages, 3) {
		assistant := messages[1].(map[string]any)
		assert.Len(assistant["tool_calls"], 1)
		result := messages[2].(map[string]any)
		assert.Equal("tool", result["role"])
		assert.Equal("call_abc", result["tool_call_id"])
		assert.Equal("357", result["content"])
	}
}

func Test_chat_003(t *testing.T) {
	assert := assert.New(t)
	_, c := newClient(t)
	_, err := c.Generate(context.TODO(), nil, nil, opt.WithTemperature(3))
	assert.Error(err)
}

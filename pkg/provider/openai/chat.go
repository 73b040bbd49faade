package openai

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	opt "github.com/atagle123/AgentFace/pkg/opt"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	openai "github.com/openai/openai-go/v3"
	shared "github.com/openai/openai-go/v3/shared"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

var _ agentface.Generator = (*Client)(nil)

// Reasoning models emit their chain of thought in a think element
var reThink = regexp.MustCompile(`(?s)<think>.*?</think>`)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Generate the next assistant message for the conversation
func (c *Client) Generate(ctx context.Context, conversation []*schema.Message, tools []schema.ToolDefinition, opts ...opt.Opt) (*schema.Message, error) {
	o, err := opt.Apply(append(append([]opt.Opt{}, c.defaults...), opts...)...)
	if err != nil {
		return nil, err
	}

	// Build the request
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
	}
	if params.Messages, err = messagesFor(o.GetString(opt.SystemPromptKey), conversation); err != nil {
		return nil, agentface.ErrBadParameter.With(err)
	}
	if params.Tools, err = toolsFor(tools); err != nil {
		return nil, agentface.ErrBadParameter.With(err)
	}
	if o.Has(opt.TemperatureKey) {
		params.Temperature = openai.Float(o.GetFloat64(opt.TemperatureKey))
	}
	if n := o.GetUint(opt.MaxTokensKey); n > 0 {
		params.MaxCompletionTokens = openai.Int(int64(n))
	}
	if o.GetString(opt.FormatKey) == "json" {
		params.ResponseFormat.OfJSONObject = &shared.ResponseFormatJSONObjectParam{}
	}

	// Send the request
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	} else if len(completion.Choices) == 0 {
		return nil, agentface.ErrInternalServerError.With("empty response")
	}

	// Return the first choice
	message := toSchema(completion.Choices[0])
	message.Tokens = uint(completion.Usage.CompletionTokens)
	return message, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func messagesFor(system string, conversation []*schema.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(conversation)+1)
	if system != "" {
		result = append(result, openai.SystemMessage(system))
	}
	for _, message := range conversation {
		if message == nil {
			continue
		}
		switch message.Role {
		case schema.RoleSystem:
			result = append(result, openai.SystemMessage(message.Text()))
		case schema.RoleUser:
			result = append(result, openai.UserMessage(message.Text()))
		case schema.RoleAssistant:
			assistant := openai.AssistantMessage(message.Text())
			for _, call := range message.ToolCalls() {
				args := string(call.Input)
				if args == "" {
					args = "{}"
				}
				assistant.OfAssistant.ToolCalls = append(assistant.OfAssistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: call.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      call.Name,
							Arguments: args,
						},
					},
				})
			}
			result = append(result, assistant)
		}
		for _, r := range message.ToolResults() {
			result = append(result, openai.ToolMessage(string(r.Content), r.ID))
		}
	}
	return result, nil
}

func toolsFor(defs []schema.ToolDefinition) ([]openai.ChatCompletionToolUnionParam, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	result := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, def := range defs {
		parameters := shared.FunctionParameters{"type": "object"}
		if def.InputSchema != nil {
			data, err := json.Marshal(def.InputSchema)
			if err != nil {
				return nil, err
			}
			parameters = shared.FunctionParameters{}
			if err := json.Unmarshal(data, &parameters); err != nil {
				return nil, err
			}
		}
		function := shared.FunctionDefinitionParam{
			Name:       def.Name,
			Parameters: parameters,
		}
		if def.Description != "" {
			function.Description = openai.String(def.Description)
		}
		result = append(result, openai.ChatCompletionFunctionTool(function))
	}
	return result, nil
}

func toSchema(choice openai.ChatCompletionChoice) *schema.Message {
	message := &schema.Message{Role: schema.RoleAssistant}
	if text := strings.TrimSpace(reThink.ReplaceAllString(choice.Message.Content, "")); text != "" {
		message.Content = append(message.Content, schema.ContentBlock{Text: &text})
	}
	for _, call := range choice.Message.ToolCalls {
		if call.Type != "" && call.Type != "function" {
			continue
		}
		input := json.RawMessage(call.Function.Arguments)
		if !json.Valid(input) {
			input = json.RawMessage("{}")
		}
		message.Content = append(message.Content, schema.ContentBlock{
			ToolCall: &schema.ToolCall{
				ID:    call.ID,
				Name:  call.Function.Name,
				Input: input,
			},
		})
	}
	switch {
	case len(message.ToolCalls()) > 0:
		message.Result = schema.ResultToolCall
	case choice.FinishReason == "length":
		message.Result = schema.ResultMaxTokens
	default:
		message.Result = schema.ResultStop
	}
	return message
}

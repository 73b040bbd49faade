package ollama

import (
	"context"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type reqEmbedding struct {
	Model    string   `json:"model"`
	Input    []string `json:"input"`
	Truncate *bool    `json:"truncate,omitempty"`
}

type embeddingResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
	Metrics
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Embed returns one embedding vector for each text
func (m *Model) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	return m.client.Embed(ctx, m.name, texts)
}

// Embed returns one embedding vector for each text, using the named model
func (ollama *Client) Embed(ctx context.Context, model string, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	// Request
	req, err := client.NewJSONRequest(reqEmbedding{
		Model: model,
		Input: texts,
	})
	if err != nil {
		return nil, err
	}

	// Response
	var response embeddingResponse
	if err := ollama.DoWithContext(ctx, req, &response, client.OptPath("embed")); err != nil {
		return nil, err
	} else if len(response.Embeddings) != len(texts) {
		return nil, agentface.ErrInternalServerError.Withf("expected %d embeddings, got %d", len(texts), len(response.Embeddings))
	}

	// Return success
	return response.Embeddings, nil
}

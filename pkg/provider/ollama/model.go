package ollama

import (
	"context"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	client "github.com/mutablelogic/go-client"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ModelMeta is a model installed on the server
type ModelMeta struct {
	Name       string       `json:"name"`
	Model      string       `json:"model,omitempty"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size,omitempty"`
	Digest     string       `json:"digest,omitempty"`
	Details    ModelDetails `json:"details"`
}

// ModelDetails are the details of the model
type ModelDetails struct {
	ParentModel       string   `json:"parent_model,omitempty"`
	Format            string   `json:"format"`
	Family            string   `json:"family"`
	Families          []string `json:"families"`
	ParameterSize     string   `json:"parameter_size"`
	QuantizationLevel string   `json:"quantization_level"`
}

type listModelsResponse struct {
	Data []ModelMeta `json:"models"`
}

type reqPullModel struct {
	Model    string `json:"model"`
	Insecure bool   `json:"insecure,omitempty"`
	Stream   bool   `json:"stream"`
}

type pullModelResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type versionResponse struct {
	Version string `json:"version"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (m ModelMeta) String() string {
	return types.Stringify(m)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// List all models installed on the server
func (ollama *Client) ListModels(ctx context.Context) ([]ModelMeta, error) {
	var response listModelsResponse
	if err := ollama.DoWithContext(ctx, nil, &response, client.OptPath("tags")); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetModel returns an installed model by name, or ErrNotFound
func (ollama *Client) GetModel(ctx context.Context, name string) (*ModelMeta, error) {
	models, err := ollama.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	for _, model := range models {
		if model.Name == name || model.Model == name {
			return types.Ptr(model), nil
		}
	}
	return nil, agentface.ErrNotFound.Withf("model %q", name)
}

// PullModel downloads a model to the server and returns when the download
// has completed
func (ollama *Client) PullModel(ctx context.Context, name string) error {
	if name == "" {
		return agentface.ErrBadParameter.With("missing model name")
	}

	// Request
	req, err := client.NewJSONRequest(reqPullModel{
		Model:  name,
		Stream: false,
	})
	if err != nil {
		return err
	}

	// Response
	var response pullModelResponse
	if err := ollama.DoWithContext(ctx, req, &response, client.OptPath("pull")); err != nil {
		return err
	} else if response.Error != "" {
		return agentface.ErrIOFailure.Withf("pull %q: %s", name, response.Error)
	} else if response.Status != "success" {
		return agentface.ErrIOFailure.Withf("pull %q: unexpected status %q", name, response.Status)
	}

	// Return success
	return nil
}

// Version returns the version of the server, and is used as a readiness probe
func (ollama *Client) Version(ctx context.Context) (string, error) {
	var response versionResponse
	if err := ollama.DoWithContext(ctx, nil, &response, client.OptPath("version")); err != nil {
		return "", err
	}
	return response.Version, nil
}

/*
ollama implements an API client for a local ollama model server, which is
used for chat generation, embeddings and model management.
https://github.com/ollama/ollama/blob/main/docs/api.md
*/
package ollama

import (
	// Packages
	opt "github.com/atagle123/AgentFace/pkg/opt"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Client struct {
	*client.Client
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	defaultName     = "ollama"
	DefaultEndpoint = "http://127.0.0.1:11434/api"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Create a new client, with an ollama endpoint, which should be something like
// "http://localhost:11434/api"
func New(endPoint string, opts ...client.ClientOpt) (*Client, error) {
	if endPoint == "" {
		endPoint = DefaultEndpoint
	}

	// Create client
	client, err := client.New(append(opts, client.OptEndpoint(endPoint))...)
	if err != nil {
		return nil, err
	}

	// Return the client
	return &Client{client}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Return the name of the provider
func (*Client) Name() string {
	return defaultName
}

// Model returns a generator and embedder bound to the named model. The
// options are applied before the options of each call.
func (ollama *Client) Model(name string, opts ...opt.Opt) *Model {
	return &Model{
		client:   ollama,
		name:     name,
		defaults: opts,
	}
}

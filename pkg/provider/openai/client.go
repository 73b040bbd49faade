/*
openai implements a chat generator for any OpenAI-compatible endpoint,
such as Groq, using the official SDK.
*/
package openai

import (
	"net/http"

	// Packages
	opt "github.com/atagle123/AgentFace/pkg/opt"
	openai "github.com/openai/openai-go/v3"
	option "github.com/openai/openai-go/v3/option"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client generates chat messages with a single hosted model
type Client struct {
	client   openai.Client
	model    string
	defaults []opt.Opt
}

// Opt configures the client
type Opt func(*options) error

type options struct {
	request  []option.RequestOption
	defaults []opt.Opt
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultModel   = "deepseek-r1-distill-llama-70b"
	GroqEndpoint   = "https://api.groq.com/openai/v1"
	defaultRetries = 2
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a client for the named model. An empty model name selects
// DefaultModel.
func New(model string, opts ...Opt) (*Client, error) {
	o := &options{
		request: []option.RequestOption{option.WithMaxRetries(defaultRetries)},
	}
	for _, fn := range opts {
		if err := fn(o); err != nil {
			return nil, err
		}
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client:   openai.NewClient(o.request...),
		model:    model,
		defaults: o.defaults,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithAPIKey sets the bearer token
func WithAPIKey(key string) Opt {
	return func(o *options) error {
		if key != "" {
			o.request = append(o.request, option.WithAPIKey(key))
		}
		return nil
	}
}

// WithEndpoint sets the base URL, for example GroqEndpoint
func WithEndpoint(url string) Opt {
	return func(o *options) error {
		if url != "" {
			o.request = append(o.request, option.WithBaseURL(url))
		}
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(client *http.Client) Opt {
	return func(o *options) error {
		if client != nil {
			o.request = append(o.request, option.WithHTTPClient(client))
		}
		return nil
	}
}

// WithRetries sets the number of retries for failed requests
func WithRetries(n int) Opt {
	return func(o *options) error {
		o.request = append(o.request, option.WithMaxRetries(n))
		return nil
	}
}

// WithDefaults sets generation options applied before the options of each
// call
func WithDefaults(defaults ...opt.Opt) Opt {
	return func(o *options) error {
		o.defaults = append(o.defaults, defaults...)
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Name returns the model name
func (c *Client) Name() string {
	return c.model
}

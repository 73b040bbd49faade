/*
httpclient calls the summarization and video stage servers. A Client
satisfies both the summarizer used by the web shell and video.Generator,
so the web shell can run against remote stages.
*/
package httpclient

import (
	"strings"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Client struct {
	*client.Client
	endpoint string
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// DefaultTimeout bounds a single stage call. Rendering a video with a
	// local model takes minutes.
	DefaultTimeout = 30 * time.Minute
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a client for a stage endpoint such as
// "http://127.0.0.1:8001/api". Options given after the default timeout
// override it.
func New(endpoint string, opts ...client.ClientOpt) (*Client, error) {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, agentface.ErrBadParameter.With("missing endpoint")
	}
	opts = append([]client.ClientOpt{client.OptTimeout(DefaultTimeout)}, opts...)
	c, err := client.New(append(opts, client.OptEndpoint(endpoint))...)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c, endpoint: endpoint}, nil
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (c *Client) String() string {
	return c.endpoint
}

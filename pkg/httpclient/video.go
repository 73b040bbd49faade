package httpclient

import (
	"context"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Generate asks the video shim for a video and returns where it was
// written
func (c *Client) Generate(ctx context.Context, req schema.VideoRequest) (*schema.VideoResponse, error) {
	if req.Topic == "" {
		return nil, agentface.ErrBadParameter.With("missing topic")
	}
	payload, err := client.NewJSONRequest(req)
	if err != nil {
		return nil, err
	}

	var response schema.VideoResponse
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("video")); err != nil {
		return nil, err
	}
	return &response, nil
}

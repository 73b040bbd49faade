package httpclient

import (
	"bytes"
	"context"
	"io"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	client "github.com/mutablelogic/go-client"
	gomultipart "github.com/mutablelogic/go-client/pkg/multipart"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	documentName = "document.pdf"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Summarize uploads a PDF document with streaming multipart/form-data and
// returns its topic and summary
func (c *Client) Summarize(ctx context.Context, document []byte, prompt string) (*schema.Summary, error) {
	if len(document) == 0 {
		return nil, agentface.ErrBadParameter.With("missing document")
	}
	payload, err := client.NewStreamingMultipartRequest(schema.SummarizeRequest{
		Prompt: prompt,
		File: gomultipart.File{
			Path: documentName,
			Body: io.NopCloser(bytes.NewReader(document)),
		},
	}, client.ContentTypeJson)
	if err != nil {
		return nil, err
	}

	var response schema.Summary
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("summarize")); err != nil {
		return nil, err
	}
	return &response, nil
}

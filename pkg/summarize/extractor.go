package summarize

import (
	"context"
	"fmt"
	"strings"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	errgroup "golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Node is a chunk of text with metadata
type Node struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SummaryExtractor attaches to each node the summaries of the previous
// section, the section itself and the next section
type SummaryExtractor struct {
	model       agentface.Generator
	concurrency int
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	PrevSummaryKey = "prev_section_summary"
	SelfSummaryKey = "section_summary"
	NextSummaryKey = "next_section_summary"
)

const summaryTemplate = `Here is the content of the section:
%s

Summarize the key topics and entities of the section.

Summary: `

// metadataOrder is the order in which metadata is rendered into content
var metadataOrder = []string{PrevSummaryKey, SelfSummaryKey, NextSummaryKey}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewSummaryExtractor returns an extractor which summarizes up to
// concurrency sections at once
func NewSummaryExtractor(model agentface.Generator, concurrency int) (*SummaryExtractor, error) {
	if model == nil {
		return nil, agentface.ErrBadParameter.With("missing model")
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &SummaryExtractor{model: model, concurrency: concurrency}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Extract summarizes every chunk and returns nodes with the summaries of
// their neighbours attached
func (e *SummaryExtractor) Extract(ctx context.Context, chunks []string) ([]Node, error) {
	summaries := make([]string, len(chunks))
	wg, ctx := errgroup.WithContext(ctx)
	wg.SetLimit(e.concurrency)
	for i, chunk := range chunks {
		wg.Go(func() error {
			summary, err := complete(ctx, e.model, fmt.Sprintf(summaryTemplate, chunk))
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, err
	}

	// Attach the summaries
	nodes := make([]Node, len(chunks))
	for i, chunk := range chunks {
		nodes[i] = Node{Text: chunk, Metadata: map[string]string{SelfSummaryKey: summaries[i]}}
		if i > 0 {
			nodes[i].Metadata[PrevSummaryKey] = summaries[i-1]
		}
		if i+1 < len(chunks) {
			nodes[i].Metadata[NextSummaryKey] = summaries[i+1]
		}
	}
	return nodes, nil
}

// Content returns the metadata followed by the text, which is what is
// embedded and sent to the model
func (n Node) Content() string {
	var b strings.Builder
	for _, key := range metadataOrder {
		if value, exists := n.Metadata[key]; exists && value != "" {
			fmt.Fprintf(&b, "%s: %s\n", key, value)
		}
	}
	if b.Len() == 0 {
		return n.Text
	}
	b.WriteString("\n")
	b.WriteString(n.Text)
	return b.String()
}

// NodesOf returns nodes without metadata
func NodesOf(chunks []string) []Node {
	nodes := make([]Node, len(chunks))
	for i, chunk := range chunks {
		nodes[i] = Node{Text: chunk}
	}
	return nodes
}

package summarize

import (
	"context"
	"sort"

	// Packages
	agentface "github.com/atagle123/AgentFace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Index is an in-memory vector index of nodes
type Index struct {
	embedder agentface.Embedder
	nodes    []Node
	vectors  [][]float64
}

// Match is a node retrieved for a query
type Match struct {
	Node
	Score float64 `json:"score"`
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewIndex embeds the content of every node
func NewIndex(ctx context.Context, embedder agentface.Embedder, nodes []Node) (*Index, error) {
	if embedder == nil {
		return nil, agentface.ErrBadParameter.With("missing embedder")
	}
	contents := make([]string, len(nodes))
	for i, node := range nodes {
		contents[i] = node.Content()
	}
	vectors, err := embedder.Embed(ctx, contents)
	if err != nil {
		return nil, err
	} else if len(vectors) != len(nodes) {
		return nil, agentface.ErrInternalServerError.Withf("expected %d embeddings, got %d", len(nodes), len(vectors))
	}
	return &Index{embedder: embedder, nodes: nodes, vectors: vectors}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Len returns the number of nodes in the index
func (idx *Index) Len() int {
	return len(idx.nodes)
}

// Retrieve returns up to k nodes most similar to the query, most similar
// first. Ties keep document order.
func (idx *Index) Retrieve(ctx context.Context, query string, k int) ([]Match, error) {
	if len(idx.nodes) == 0 || k <= 0 {
		return nil, nil
	}
	vectors, err := idx.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	} else if len(vectors) != 1 {
		return nil, agentface.ErrInternalServerError.With("missing query embedding")
	}

	matches := make([]Match, len(idx.nodes))
	for i, node := range idx.nodes {
		matches[i] = Match{Node: node, Score: Cosine(vectors[0], idx.vectors[i])}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

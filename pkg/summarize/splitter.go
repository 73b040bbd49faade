package summarize

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	// Packages
	agentface "github.com/atagle123/AgentFace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Splitter divides text into chunks of related sentences. Each sentence is
// embedded together with its neighbours, and a chunk ends where the
// distance between consecutive windows is above a percentile of all
// distances.
type Splitter struct {
	embedder   agentface.Embedder
	buffer     int
	percentile float64
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultBuffer     = 6
	DefaultPercentile = 95
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewSplitter returns a splitter which embeds windows of buffer sentences
// on each side of every sentence
func NewSplitter(embedder agentface.Embedder, buffer int, percentile float64) (*Splitter, error) {
	if embedder == nil {
		return nil, agentface.ErrBadParameter.With("missing embedder")
	} else if buffer < 0 {
		return nil, agentface.ErrBadParameter.Withf("invalid buffer: %d", buffer)
	} else if percentile <= 0 || percentile > 100 {
		return nil, agentface.ErrBadParameter.Withf("invalid percentile: %v", percentile)
	}
	return &Splitter{
		embedder:   embedder,
		buffer:     buffer,
		percentile: percentile,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Split returns the chunks of the text, in order
func (s *Splitter) Split(ctx context.Context, text string) ([]string, error) {
	sentences := Sentences(text)
	if len(sentences) < 2 {
		return sentences, nil
	}

	// Embed the window around each sentence
	windows := make([]string, len(sentences))
	for i := range sentences {
		from, to := max(0, i-s.buffer), min(len(sentences), i+s.buffer+1)
		windows[i] = strings.Join(sentences[from:to], " ")
	}
	vectors, err := s.embedder.Embed(ctx, windows)
	if err != nil {
		return nil, err
	} else if len(vectors) != len(windows) {
		return nil, agentface.ErrInternalServerError.Withf("expected %d embeddings, got %d", len(windows), len(vectors))
	}

	// Distances between consecutive windows
	distances := make([]float64, len(vectors)-1)
	for i := range distances {
		distances[i] = 1 - Cosine(vectors[i], vectors[i+1])
	}
	threshold := Percentile(distances, s.percentile)

	// Group sentences between breakpoints
	var chunks []string
	start := 0
	for i, distance := range distances {
		if distance > threshold {
			chunks = append(chunks, strings.Join(sentences[start:i+1], " "))
			start = i + 1
		}
	}
	chunks = append(chunks, strings.Join(sentences[start:], " "))
	return chunks, nil
}

///////////////////////////////////////////////////////////////////////////////
// FUNCTIONS

// Sentences splits text at sentence punctuation followed by whitespace, and
// at blank lines. Whitespace within a sentence is collapsed.
func Sentences(text string) []string {
	var result []string
	var sentence strings.Builder
	flush := func() {
		if s := strings.Join(strings.Fields(sentence.String()), " "); s != "" {
			result = append(result, s)
		}
		sentence.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		sentence.WriteRune(r)
		next := rune(0)
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		switch {
		case (r == '.' || r == '!' || r == '?') && (next == 0 || unicode.IsSpace(next)):
			flush()
		case r == '\n' && next == '\n':
			flush()
		}
	}
	flush()
	return result
}

// Cosine returns the cosine similarity of two vectors, or zero when either
// has no magnitude
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := 0; i < len(a) && i < len(b); i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Percentile returns the p-th percentile of values, interpolating linearly
// between the closest ranks
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	rank := p / 100 * float64(len(sorted)-1)
	lo, hi := int(math.Floor(rank)), int(math.Ceil(rank))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

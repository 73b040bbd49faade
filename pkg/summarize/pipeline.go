/*
summarize turns a PDF into a topic and a teaching summary. The text is
split into semantically related chunks, optionally annotated with section
summaries, indexed by embedding, and queried with tree summarization.
*/
package summarize

import (
	"context"
	"fmt"
	"strings"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	logger "github.com/atagle123/AgentFace/pkg/logger"
	opt "github.com/atagle123/AgentFace/pkg/opt"
	pdf "github.com/atagle123/AgentFace/pkg/pdf"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
	errgroup "golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Pipeline summarizes documents
type Pipeline struct {
	model      agentface.Generator
	embedder   agentface.Embedder
	buffer     int
	percentile float64
	topK       int
	budget     int
	extract    bool
	tracer     trace.Tracer
}

// Opt configures a pipeline
type Opt func(*Pipeline) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultModel    = "llama3.2:3b"
	DefaultEmbedder = "nomic-embed-text"

	// DefaultTemperature is the sampling temperature for the summary model
	DefaultTemperature = 0.1
)

const summaryQuery = `Now you are an expert teacher like LeCun, Hinton or Feynman, and you need to summarize the paper with the most relevant formulas and insights.
Pay attention to the prompt: %s`

const topicQuery = `Which is the main topic of this paper? Only return one phrase.`

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewPipeline returns a pipeline which generates with model and indexes with
// embedder
func NewPipeline(model agentface.Generator, embedder agentface.Embedder, opts ...Opt) (*Pipeline, error) {
	if model == nil || embedder == nil {
		return nil, agentface.ErrBadParameter.With("missing model or embedder")
	}
	p := &Pipeline{
		model:      model,
		embedder:   embedder,
		buffer:     DefaultBuffer,
		percentile: DefaultPercentile,
		topK:       DefaultTopK,
		budget:     DefaultBudget,
		extract:    true,
	}
	for _, fn := range opts {
		if err := fn(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithSplitter sets the sentence window and breakpoint percentile
func WithSplitter(buffer int, percentile float64) Opt {
	return func(p *Pipeline) error {
		p.buffer = buffer
		p.percentile = percentile
		return nil
	}
}

// WithTopK sets the number of nodes retrieved for each query
func WithTopK(k int) Opt {
	return func(p *Pipeline) error {
		if k <= 0 {
			return agentface.ErrBadParameter.Withf("invalid top-k: %d", k)
		}
		p.topK = k
		return nil
	}
}

// WithBudget sets the number of context characters in one prompt
func WithBudget(n int) Opt {
	return func(p *Pipeline) error {
		if n <= 0 {
			return agentface.ErrBadParameter.Withf("invalid budget: %d", n)
		}
		p.budget = n
		return nil
	}
}

// WithSummaryExtractor enables or disables section summaries
func WithSummaryExtractor(enabled bool) Opt {
	return func(p *Pipeline) error {
		p.extract = enabled
		return nil
	}
}

// WithTracer sets the tracer for pipeline stages
func WithTracer(tracer trace.Tracer) Opt {
	return func(p *Pipeline) error {
		p.tracer = tracer
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Summarize returns the topic and summary of a PDF document. A document
// without text is ErrBadParameter.
func (p *Pipeline) Summarize(ctx context.Context, document []byte, prompt string) (_ *schema.Summary, err error) {
	ctx, endSpan := otel.StartSpan(p.tracer, ctx, "Summarize",
		attribute.Int("bytes", len(document)),
	)
	defer func() { endSpan(err) }()
	log := logger.FromContext(ctx)

	// Extract text
	text, err := pdf.ExtractText(document)
	if err != nil {
		return nil, err
	} else if strings.TrimSpace(text) == "" {
		return nil, agentface.ErrBadParameter.With("Could not extract text from PDF")
	}
	log.DebugContext(ctx, "extracted text", "chars", len(text), "text", pdf.Summary(text, 80))

	return p.SummarizeText(ctx, text, prompt)
}

// SummarizeText returns the topic and summary of plain text
func (p *Pipeline) SummarizeText(ctx context.Context, text, prompt string) (*schema.Summary, error) {
	log := logger.FromContext(ctx)

	// Split into chunks
	splitter, err := NewSplitter(p.embedder, p.buffer, p.percentile)
	if err != nil {
		return nil, err
	}
	chunks, err := splitter.Split(ctx, text)
	if err != nil {
		return nil, err
	} else if len(chunks) == 0 {
		return nil, agentface.ErrBadParameter.With("Could not extract text from PDF")
	}
	log.DebugContext(ctx, "split text", "chunks", len(chunks))

	// Attach section summaries
	nodes := NodesOf(chunks)
	if p.extract {
		extractor, err := NewSummaryExtractor(p.model, 4)
		if err != nil {
			return nil, err
		}
		if nodes, err = extractor.Extract(ctx, chunks); err != nil {
			return nil, err
		}
	}

	// Index and query
	index, err := NewIndex(ctx, p.embedder, nodes)
	if err != nil {
		return nil, err
	}
	engine, err := NewQueryEngine(index, p.model, p.topK, p.budget)
	if err != nil {
		return nil, err
	}

	var summary schema.Summary
	wg, gctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		answer, err := engine.Query(gctx, fmt.Sprintf(summaryQuery, prompt))
		summary.Context = answer
		return err
	})
	wg.Go(func() error {
		answer, err := engine.Query(gctx, topicQuery)
		summary.Topic = answer
		return err
	})
	if err := wg.Wait(); err != nil {
		return nil, err
	}

	// Return success
	return &summary, nil
}

// ModelOpts returns the generation options for the summary model
func ModelOpts() []opt.Opt {
	return []opt.Opt{opt.WithTemperature(DefaultTemperature)}
}

package summarize_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	opt "github.com/atagle123/AgentFace/pkg/opt"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	summarize "github.com/atagle123/AgentFace/pkg/summarize"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SET-UP

// words embeds text as the number of times each word appears
type words []string

func (w words) Embed(_ context.Context, texts []string) ([][]float64, error) {
	result := make([][]float64, len(texts))
	for i, text := range texts {
		result[i] = make([]float64, len(w))
		for _, field := range strings.Fields(strings.ToLower(text)) {
			field = strings.Trim(field, ".,:!?")
			for j, word := range w {
				if field == word {
					result[i][j]++
				}
			}
		}
	}
	return result, nil
}

// tutor answers prompts by kind and counts them
type tutor struct {
	sync.Mutex
	prompts []string
}

func (*tutor) Name() string { return "tutor" }

func (t *tutor) Generate(_ context.Context, conversation []*schema.Message, _ []schema.ToolDefinition, _ ...opt.Opt) (*schema.Message, error) {
	prompt := conversation[len(conversation)-1].Text()
	t.Lock()
	t.prompts = append(t.prompts, prompt)
	t.Unlock()

	switch {
	case strings.Contains(prompt, "Summarize the key topics"):
		return schema.NewMessage(schema.RoleAssistant, "section about pets"), nil
	case strings.Contains(prompt, "main topic"):
		return schema.NewMessage(schema.RoleAssistant, " Cats and rockets\n"), nil
	default:
		return schema.NewMessage(schema.RoleAssistant, "Cats sleep and rockets fly."), nil
	}
}

func (t *tutor) count(substr string) int {
	t.Lock()
	defer t.Unlock()
	n := 0
	for _, prompt := range t.prompts {
		if strings.Contains(prompt, substr) {
			n++
		}
	}
	return n
}

const document = `The cat sleeps all day. A cat likes warm places. My cat purrs loudly. Every cat hunts mice.
The rocket launches at dawn. A rocket needs fuel! The rocket reaches orbit. Each rocket carries a payload?`

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_splitter_001(t *testing.T) {
	assert := assert.New(t)
	sentences := summarize.Sentences("First one. Second\n one!  Third 3.5 value?\n\nno punctuation\n\nlast")
	assert.Equal([]string{"First one.", "Second one!", "Third 3.5 value?", "no punctuation", "last"}, sentences)
	assert.Empty(summarize.Sentences("  \n "))
}

func Test_splitter_002(t *testing.T) {
	assert := assert.New(t)
	assert.InDelta(1.0, summarize.Cosine([]float64{2, 0}, []float64{3, 0}), 1e-9)
	assert.InDelta(0.0, summarize.Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(0.0, summarize.Cosine([]float64{0, 0}, []float64{1, 1}))

	assert.Equal(0.0, summarize.Percentile(nil, 95))
	assert.Equal(3.0, summarize.Percentile([]float64{3}, 95))
	assert.InDelta(9.5, summarize.Percentile([]float64{10, 0, 5, 1, 2, 3, 4, 6, 7, 8, 9}, 95), 1e-9)
	assert.InDelta(5.0, summarize.Percentile([]float64{10, 0, 5, 1, 2, 3, 4, 6, 7, 8, 9}, 50), 1e-9)
}

func Test_splitter_003(t *testing.T) {
	assert := assert.New(t)
	splitter, err := summarize.NewSplitter(words{"cat", "rocket"}, 1, 95)
	assert.NoError(err)

	// The break falls between the two topics
	chunks, err := splitter.Split(context.Background(), document)
	assert.NoError(err)
	if assert.Len(chunks, 2) {
		assert.True(strings.HasPrefix(chunks[0], "The cat sleeps all day."))
		assert.True(strings.HasSuffix(chunks[0], "Every cat hunts mice."))
		assert.True(strings.HasPrefix(chunks[1], "The rocket launches at dawn."))
	}

	// A single sentence is one chunk
	chunks, err = splitter.Split(context.Background(), "Only one sentence.")
	assert.NoError(err)
	assert.Equal([]string{"Only one sentence."}, chunks)

	_, err = summarize.NewSplitter(nil, summarize.DefaultBuffer, summarize.DefaultPercentile)
	assert.ErrorIs(err, agentface.ErrBadParameter)
	_, err = summarize.NewSplitter(words{}, 6, 0)
	assert.ErrorIs(err, agentface.ErrBadParameter)
}

func Test_extractor_001(t *testing.T) {
	assert := assert.New(t)
	model := new(tutor)
	extractor, err := summarize.NewSummaryExtractor(model, 2)
	assert.NoError(err)

	nodes, err := extractor.Extract(context.Background(), []string{"one", "two", "three"})
	assert.NoError(err)
	if assert.Len(nodes, 3) {
		assert.NotContains(nodes[0].Metadata, summarize.PrevSummaryKey)
		assert.Contains(nodes[1].Metadata, summarize.PrevSummaryKey)
		assert.Contains(nodes[1].Metadata, summarize.NextSummaryKey)
		assert.NotContains(nodes[2].Metadata, summarize.NextSummaryKey)
		assert.Equal("section about pets", nodes[2].Metadata[summarize.SelfSummaryKey])
		assert.True(strings.HasSuffix(nodes[1].Content(), "\n\ntwo"))
	}
	assert.Equal(3, model.count("Summarize the key topics"))
	assert.Equal("plain", summarize.NodesOf([]string{"plain"})[0].Content())
}

func Test_index_001(t *testing.T) {
	assert := assert.New(t)
	nodes := summarize.NodesOf([]string{"cat cat", "rocket", "cat rocket", "rocket rocket rocket"})
	index, err := summarize.NewIndex(context.Background(), words{"cat", "rocket"}, nodes)
	assert.NoError(err)
	assert.Equal(4, index.Len())

	matches, err := index.Retrieve(context.Background(), "rocket", 2)
	assert.NoError(err)
	if assert.Len(matches, 2) {
		assert.Equal("rocket", matches[0].Text)
		assert.Equal("rocket rocket rocket", matches[1].Text)
	}

	matches, err = index.Retrieve(context.Background(), "cat", 10)
	assert.NoError(err)
	assert.Len(matches, 4)
	assert.Equal("cat cat", matches[0].Text)
}

func Test_query_001(t *testing.T) {
	assert := assert.New(t)
	model := new(tutor)

	// Large nodes which do not fit one prompt are summarized in a tree
	texts := make([]string, 5)
	for i := range texts {
		texts[i] = strings.Repeat("cat ", 50)
	}
	index, err := summarize.NewIndex(context.Background(), words{"cat"}, summarize.NodesOf(texts))
	assert.NoError(err)
	engine, err := summarize.NewQueryEngine(index, model, 5, 120)
	assert.NoError(err)

	answer, err := engine.Query(context.Background(), "what do cats do?")
	assert.NoError(err)
	assert.Equal("Cats sleep and rockets fly.", answer)
	assert.Greater(model.count("Query: what do cats do?"), 1)
}

func Test_pipeline_001(t *testing.T) {
	assert := assert.New(t)
	model := new(tutor)
	pipeline, err := summarize.NewPipeline(model, words{"cat", "rocket"}, summarize.WithSplitter(1, 95))
	assert.NoError(err)

	summary, err := pipeline.SummarizeText(context.Background(), document, "focus on pets")
	assert.NoError(err)
	assert.Equal("Cats and rockets", summary.Topic)
	assert.Equal("Cats sleep and rockets fly.", summary.Context)
	assert.Equal(2, model.count("Summarize the key topics"))
	assert.Equal(1, model.count("Pay attention to the prompt: focus on pets"))

	// Not a PDF
	_, err = pipeline.Summarize(context.Background(), []byte("plain text"), "")
	assert.ErrorIs(err, agentface.ErrBadParameter)

	_, err = summarize.NewPipeline(nil, words{})
	assert.ErrorIs(err, agentface.ErrBadParameter)
	_, err = summarize.NewPipeline(model, words{}, summarize.WithTopK(0))
	assert.ErrorIs(err, agentface.ErrBadParameter)
}

func Test_pipeline_002(t *testing.T) {
	assert := assert.New(t)
	model := new(tutor)
	pipeline, err := summarize.NewPipeline(model, words{"cat"}, summarize.WithSummaryExtractor(false))
	assert.NoError(err)

	_, err = pipeline.SummarizeText(context.Background(), document, "")
	assert.NoError(err)
	assert.Equal(0, model.count("Summarize the key topics"))
}

package summarize

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	opt "github.com/atagle123/AgentFace/pkg/opt"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	errgroup "golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// QueryEngine answers queries over an index. Retrieved nodes are packed
// into prompts and answered, and the answers are summarized recursively
// until one remains.
type QueryEngine struct {
	index  *Index
	model  agentface.Generator
	topK   int
	budget int
	opts   []opt.Opt
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultTopK   = 5
	DefaultBudget = 8000 // characters of context in one prompt
)

const treeTemplate = `Context information from multiple sources is below.
---------------------
%s
---------------------
Given the information from multiple sources and not prior knowledge, answer the query.
Query: %s
Answer: `

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewQueryEngine returns a query engine which retrieves topK nodes and packs
// up to budget characters of context into each prompt
func NewQueryEngine(index *Index, model agentface.Generator, topK, budget int, opts ...opt.Opt) (*QueryEngine, error) {
	if index == nil || model == nil {
		return nil, agentface.ErrBadParameter.With("missing index or model")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &QueryEngine{index: index, model: model, topK: topK, budget: budget, opts: opts}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Query retrieves the nodes relevant to the query and returns the answer
func (q *QueryEngine) Query(ctx context.Context, query string) (string, error) {
	matches, err := q.index.Retrieve(ctx, query, q.topK)
	if err != nil {
		return "", err
	}
	texts := make([]string, len(matches))
	for i, match := range matches {
		texts[i] = match.Content()
	}
	return q.tree(ctx, query, texts)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// tree answers the query from each packed group of texts, then repeats
// with the answers until a single answer remains
func (q *QueryEngine) tree(ctx context.Context, query string, texts []string) (string, error) {
	groups := pack(texts, q.budget)
	if len(groups) <= 1 {
		var joined string
		if len(groups) == 1 {
			joined = groups[0]
		}
		return complete(ctx, q.model, fmt.Sprintf(treeTemplate, joined, query), q.opts...)
	}

	// Answer each group in parallel
	answers := make([]string, len(groups))
	wg, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		wg.Go(func() error {
			answer, err := complete(gctx, q.model, fmt.Sprintf(treeTemplate, group, query), q.opts...)
			if err != nil {
				return err
			}
			answers[i] = answer
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return "", err
	}
	return q.tree(ctx, query, answers)
}

// pack joins texts into groups of at most budget characters. Every level
// produces fewer groups than texts, so recursion ends.
func pack(texts []string, budget int) []string {
	if len(texts) == 0 {
		return nil
	}
	groups := greedy(texts, budget)
	if len(groups) < len(texts) || len(texts) == 1 {
		return groups
	}

	// Every text fills a prompt on its own, so pair them up
	half := make([]string, len(texts))
	for i, text := range texts {
		half[i] = truncate(text, budget/2)
	}
	groups = groups[:0]
	for i := 0; i < len(half); i += 2 {
		groups = append(groups, strings.Join(half[i:min(i+2, len(half))], "\n\n"))
	}
	return groups
}

func greedy(texts []string, budget int) []string {
	var groups []string
	var current strings.Builder
	for _, text := range texts {
		text = truncate(text, budget)
		if current.Len() > 0 && current.Len()+2+len(text) > budget {
			groups = append(groups, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(text)
	}
	if current.Len() > 0 {
		groups = append(groups, current.String())
	}
	return groups
}

func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}

// complete returns the text of a single-turn generation
func complete(ctx context.Context, model agentface.Generator, prompt string, opts ...opt.Opt) (string, error) {
	message, err := model.Generate(ctx, []*schema.Message{schema.NewMessage(schema.RoleUser, prompt)}, nil, opts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(message.Text()), nil
}

// Package retrieval implements hybrid lexical-plus-vector retrieval with
// optional reranking, and the augmentation step that splices a retrieved
// passage into a candidate response.
package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/veracity/pkg/adapter"
	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/utils/logging"
	"github.com/m-mizutani/veracity/pkg/utils/textutil"
	"github.com/m-mizutani/veracity/pkg/vector"
)

const (
	// Fusion weights for the hybrid score
	vectorWeight  = 0.6
	lexicalWeight = 0.4

	// Candidates more similar than this collapse to one during reranking
	duplicateThreshold = 0.85
)

// Passage is one retrieved knowledge passage
type Passage struct {
	Record *model.VectorRecord
	Score  float64
}

// Options controls a Retrieve call
type Options struct {
	// Limit caps the returned passages (default 3)
	Limit int
	// Rerank enables the near-duplicate collapsing pass
	Rerank bool
	// Collections restricts the search; empty searches every collection
	Collections []string
}

// Engine fuses vector similarity with lexical overlap over the collection
// store.
type Engine struct {
	store    *vector.Store
	embedder adapter.Embedder
}

func New(store *vector.Store, embedder adapter.Embedder) *Engine {
	return &Engine{
		store:    store,
		embedder: embedder,
	}
}

// Retrieve returns the top passages for the query. History is folded into
// the lexical side so follow-up queries keep their context.
func (e *Engine) Retrieve(ctx context.Context, query string, history []string, opts Options) ([]*Passage, error) {
	if opts.Limit <= 0 {
		opts.Limit = 3
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	expanded := ExpandQuery(query)
	if n := len(history); n > 0 {
		// The most recent turn disambiguates short follow-ups.
		expanded = append(expanded, ExpandQuery(history[n-1])...)
	}
	expandedText := strings.Join(expanded, " ")

	collections := opts.Collections
	if len(collections) == 0 {
		collections = e.store.Names()
	}

	var passages []*Passage
	for _, name := range collections {
		matches := e.store.Collection(name).FindSimilar(queryVec, vector.SearchOptions{})
		for _, m := range matches {
			lexical := textutil.OverlapRatio(expandedText, m.Record.Text)
			score := vectorWeight*m.Score + lexicalWeight*lexical
			passages = append(passages, &Passage{Record: m.Record, Score: score})
		}
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})

	if opts.Rerank {
		passages = collapseDuplicates(passages)
	}

	if len(passages) > opts.Limit {
		passages = passages[:opts.Limit]
	}

	logging.From(ctx).Debug("retrieved passages",
		"query_terms", len(expanded),
		"passages", len(passages))

	return passages, nil
}

// collapseDuplicates keeps the best-scored passage of each near-duplicate
// group. Input must already be sorted by score.
func collapseDuplicates(passages []*Passage) []*Passage {
	var out []*Passage
	for _, p := range passages {
		dup := false
		for _, kept := range out {
			if textutil.Jaccard(p.Record.Text, kept.Record.Text) > duplicateThreshold {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// Package retriever implements multi-query fan-out retrieval: one similarity
// search per query variant, merged and deduplicated in issue order.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"knowledge-rag/internal/models"

	"github.com/rs/zerolog/log"
)

// Searcher is the passage store capability the retriever needs.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]models.Chunk, error)
}

// Expander generates alternative phrasings of a question.
type Expander interface {
	Expand(ctx context.Context, question string) ([]string, error)
}

type Retriever struct {
	store    Searcher
	expander Expander
	topK     int
}

func New(store Searcher, expander Expander, topK int) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	return &Retriever{store: store, expander: expander, topK: topK}
}

// Retrieve expands the question, searches the store for the original question
// and each variant, and merges the results. The original question is issued
// first, then variants in generation order. Searches run concurrently but
// results are collected into issue-order slots, so concurrency never changes
// the observable ordering. Duplicates (exact content equality) collapse to
// their first occurrence; the kept occurrence's metadata is retained.
//
// A single failed search is logged and contributes nothing; if every search
// fails the retrieval fails as a whole.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]models.Chunk, error) {
	variants, err := r.expander.Expand(ctx, question)
	if err != nil {
		return nil, err
	}

	queries := make([]string, 0, len(variants)+1)
	queries = append(queries, question)
	queries = append(queries, variants...)

	results := make([][]models.Chunk, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			results[i], errs[i] = r.store.Search(ctx, query, r.topK)
		}(i, query)
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			log.Warn().Err(err).Str("query", queries[i]).Msg("Similarity search failed, skipping variant")
		}
	}
	if failed == len(queries) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: retrieval aborted: %v", models.ErrTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("%w: all %d queries failed", models.ErrRetrieval, len(queries))
	}

	return merge(results), nil
}

// merge concatenates per-query result sets in issue order and drops chunks
// whose content was already seen.
func merge(results [][]models.Chunk) []models.Chunk {
	seen := make(map[string]struct{})
	var merged []models.Chunk
	for _, result := range results {
		for _, chunk := range result {
			if _, ok := seen[chunk.Content]; ok {
				continue
			}
			seen[chunk.Content] = struct{}{}
			merged = append(merged, chunk)
		}
	}
	return merged
}

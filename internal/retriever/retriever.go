// Package retriever ranks stored chunks against a query embedding.
package retriever

import (
	"context"
	"fmt"
	"sort"

	"github.com/parchment-ai/parchment/internal/domain"
	"github.com/parchment-ai/parchment/internal/store"
)

// Retriever scores every stored chunk against a query embedding and
// returns the top-K by cosine similarity.
type Retriever struct {
	store store.Store
}

// New creates a Retriever over the given store.
func New(s store.Store) *Retriever {
	return &Retriever{store: s}
}

// Retrieve returns up to k chunks ordered by descending similarity.
// Ties are broken by ascending chunk index, then by source ID, so results
// are deterministic. An empty store yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if k < 1 {
		return nil, domain.ErrInvalidTopK
	}

	count, err := r.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []domain.ScoredChunk{}, nil
	}

	dims, err := r.store.Dimensions(ctx)
	if err != nil {
		return nil, err
	}
	if dims > 0 && len(query) != dims {
		return nil, fmt.Errorf("query has %d dimensions, store has %d: %w", len(query), dims, domain.ErrDimensionMismatch)
	}

	// A zero-magnitude query scores 0.0 against everything, so the native
	// ranking fast path is skipped and the tie-break order decides.
	if s, ok := r.store.(store.Searcher); ok && magnitude(query) > 0 {
		return s.SearchSimilar(ctx, query, k)
	}

	entries, err := r.store.AllEntries(ctx)
	if err != nil {
		return nil, err
	}

	scored := make([]domain.ScoredChunk, 0, len(entries))
	for _, entry := range entries {
		scored = append(scored, domain.ScoredChunk{
			Chunk: entry.Chunk,
			Score: CosineSimilarity(query, entry.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Chunk.Index != scored[j].Chunk.Index {
			return scored[i].Chunk.Index < scored[j].Chunk.Index
		}
		return scored[i].Chunk.SourceID < scored[j].Chunk.SourceID
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

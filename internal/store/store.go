// Package store holds chunks and their embeddings and supports insertion
// and snapshot reads for similarity search.
package store

import (
	"context"

	"github.com/parchment-ai/parchment/internal/domain"
)

// Entry is a stored (chunk, embedding) pair.
type Entry struct {
	Chunk     domain.Chunk
	Embedding []float32
}

// Store is the append-only aggregate of all chunks and their embeddings.
// Insertion order defines the only implicit ordering; no ranking happens here.
type Store interface {
	// Insert appends a chunk with its embedding. The dimensionality of the
	// first inserted embedding is binding for the store's lifetime.
	Insert(ctx context.Context, chunk domain.Chunk, embedding []float32) error

	// AllEntries returns a read-only snapshot of every stored entry.
	AllEntries(ctx context.Context) ([]Entry, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the established embedding dimensionality,
	// or 0 when the store is empty.
	Dimensions(ctx context.Context) (int, error)

	// ListDocuments returns the manifest of ingested sources, ordered by
	// ingestion time then source ID.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}

// Searcher is an optional fast path for stores that can rank natively
// instead of having the retriever scan a snapshot.
type Searcher interface {
	SearchSimilar(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)
}

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parchment-ai/parchment/internal/domain"
	"github.com/pgvector/pgvector-go"
)

// PostgresStore persists chunks and embeddings in a pgvector-backed table.
// Float32 vectors round-trip losslessly through the vector column.
type PostgresStore struct {
	pool *pgxpool.Pool

	mu   sync.Mutex
	dims int
}

// NewPostgresStore creates a store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Insert appends a chunk with its embedding.
func (s *PostgresStore) Insert(ctx context.Context, chunk domain.Chunk, embedding []float32) error {
	if err := domain.ValidateChunk(&chunk); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid chunk", err)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("embedding cannot be empty: %w", domain.ErrDimensionMismatch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dims, err := s.establishedDims(ctx)
	if err != nil {
		return err
	}
	if dims > 0 && len(embedding) != dims {
		return fmt.Errorf("got %d dimensions, store has %d: %w", len(embedding), dims, domain.ErrDimensionMismatch)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO chunks (id, source_id, chunk_index, content, embedding)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		chunk.ID,
		chunk.SourceID,
		chunk.Index,
		chunk.Content,
		pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}

	if dims == 0 {
		s.dims = len(embedding)
	}
	return nil
}

// SetDocumentName records a display name for every chunk of a source.
func (s *PostgresStore) SetDocumentName(ctx context.Context, sourceID, name string) error {
	_, err := s.pool.Exec(ctx, `UPDATE chunks SET name = $2 WHERE source_id = $1`, sourceID, name)
	return err
}

// AllEntries returns a snapshot of all stored entries in insertion order.
func (s *PostgresStore) AllEntries(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_id, chunk_index, content, embedding
		 FROM chunks ORDER BY created_at, source_id, chunk_index`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var vec pgvector.Vector
		if err := rows.Scan(&entry.Chunk.ID, &entry.Chunk.SourceID, &entry.Chunk.Index, &entry.Chunk.Content, &vec); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		entry.Embedding = vec.Slice()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// Dimensions returns the established embedding dimensionality, 0 when empty.
func (s *PostgresStore) Dimensions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.establishedDims(ctx)
}

// establishedDims reads the cached dimensionality, falling back to the
// first stored row. Caller must hold s.mu.
func (s *PostgresStore) establishedDims(ctx context.Context) (int, error) {
	if s.dims > 0 {
		return s.dims, nil
	}
	var dims *int
	err := s.pool.QueryRow(ctx,
		`SELECT vector_dims(embedding) FROM chunks ORDER BY created_at LIMIT 1`).Scan(&dims)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read store dimensionality: %w", err)
	}
	if dims != nil {
		s.dims = *dims
	}
	return s.dims, nil
}

// SearchSimilar ranks stored chunks against the query embedding in SQL,
// descending by cosine similarity with deterministic tie-breaking.
func (s *PostgresStore) SearchSimilar(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if k < 1 {
		return nil, domain.ErrInvalidTopK
	}

	vec := pgvector.NewVector(query)
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_id, chunk_index, content,
		        1.0 - (embedding <=> $1) AS score
		 FROM chunks
		 ORDER BY score DESC, chunk_index ASC, source_id ASC
		 LIMIT $2`,
		vec, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.ScoredChunk
	for rows.Next() {
		var sc domain.ScoredChunk
		if err := rows.Scan(&sc.Chunk.ID, &sc.Chunk.SourceID, &sc.Chunk.Index, &sc.Chunk.Content, &sc.Score); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, sc)
	}
	return results, rows.Err()
}

// ListDocuments returns the manifest of ingested sources.
func (s *PostgresStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source_id, COALESCE(MAX(name), ''), COUNT(*), MIN(created_at)
		 FROM chunks
		 GROUP BY source_id
		 ORDER BY MIN(created_at), source_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.SourceID, &doc.Name, &doc.ChunkCount, &doc.IngestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

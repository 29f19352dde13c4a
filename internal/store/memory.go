package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/parchment-ai/parchment/internal/domain"
)

// MemoryStore is the in-process vector store: an append-only arena of
// entries plus an id->index map for O(1) lookup. Reads take a snapshot
// under a shared lock; writes are exclusive.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	byID    map[string]int
	dims    int

	docs     map[string]*docInfo
	docOrder []string
}

type docInfo struct {
	name       string
	chunkCount int
	ingestedAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]int),
		docs: make(map[string]*docInfo),
	}
}

// Insert appends a chunk with its embedding.
func (s *MemoryStore) Insert(ctx context.Context, chunk domain.Chunk, embedding []float32) error {
	if err := domain.ValidateChunk(&chunk); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid chunk", err)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("embedding cannot be empty: %w", domain.ErrDimensionMismatch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims == 0 {
		s.dims = len(embedding)
	} else if len(embedding) != s.dims {
		return fmt.Errorf("got %d dimensions, store has %d: %w", len(embedding), s.dims, domain.ErrDimensionMismatch)
	}

	// Re-inserting the same chunk ID replaces the entry in place, so a
	// re-run of a partially ingested document does not double count.
	if idx, ok := s.byID[chunk.ID]; ok {
		s.entries[idx] = Entry{Chunk: chunk, Embedding: embedding}
		return nil
	}

	s.entries = append(s.entries, Entry{Chunk: chunk, Embedding: embedding})
	s.byID[chunk.ID] = len(s.entries) - 1

	doc, ok := s.docs[chunk.SourceID]
	if !ok {
		doc = &docInfo{ingestedAt: time.Now().UTC()}
		s.docs[chunk.SourceID] = doc
		s.docOrder = append(s.docOrder, chunk.SourceID)
	}
	doc.chunkCount++

	return nil
}

// SetDocumentName records a display name for a source. No-op for sources
// that have no chunks yet.
func (s *MemoryStore) SetDocumentName(ctx context.Context, sourceID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[sourceID]; ok {
		doc.name = name
	}
	return nil
}

// AllEntries returns a snapshot of all stored entries in insertion order.
func (s *MemoryStore) AllEntries(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]Entry, len(s.entries))
	copy(snapshot, s.entries)
	return snapshot, nil
}

// Get returns the entry for a chunk ID.
func (s *MemoryStore) Get(ctx context.Context, chunkID string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[chunkID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	entry := s.entries[idx]
	return &entry, nil
}

// Count returns the number of stored entries.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Dimensions returns the established embedding dimensionality, 0 when empty.
func (s *MemoryStore) Dimensions(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dims, nil
}

// ListDocuments returns the manifest of ingested sources.
func (s *MemoryStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.docOrder))
	for _, sourceID := range s.docOrder {
		info := s.docs[sourceID]
		docs = append(docs, domain.Document{
			SourceID:   sourceID,
			Name:       info.name,
			ChunkCount: info.chunkCount,
			IngestedAt: info.ingestedAt,
		})
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].IngestedAt.Equal(docs[j].IngestedAt) {
			return docs[i].IngestedAt.Before(docs[j].IngestedAt)
		}
		return docs[i].SourceID < docs[j].SourceID
	})
	return docs, nil
}

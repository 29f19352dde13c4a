package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// chunkNamespace is the UUIDv5 namespace for deterministic chunk IDs.
// Fixed so that re-ingesting the same source yields the same chunk IDs.
var chunkNamespace = uuid.MustParse("9a7f3c52-1e4b-4c8a-9d2e-6b5f8a0c3d71")

// ChunkID derives a deterministic chunk identifier from the source ID and
// the chunk's 0-based position within that source.
func ChunkID(sourceID string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s/%d", sourceID, index))).String()
}

// Chunk is an immutable unit of retrievable text.
type Chunk struct {
	ID       string
	SourceID string
	Index    int
	Content  string
}

// NewChunk creates a Chunk with its ID derived from (sourceID, index).
func NewChunk(sourceID string, index int, content string) Chunk {
	return Chunk{
		ID:       ChunkID(sourceID, index),
		SourceID: sourceID,
		Index:    index,
		Content:  content,
	}
}

// ValidateChunk validates a Chunk instance
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}
	if c.ID == "" {
		return fmt.Errorf("chunk ID is required")
	}
	if c.SourceID == "" {
		return fmt.Errorf("chunk SourceID is required")
	}
	if c.Index < 0 {
		return fmt.Errorf("chunk Index cannot be negative")
	}
	if c.Content == "" {
		return fmt.Errorf("chunk Content cannot be empty")
	}
	return nil
}

// ScoredChunk pairs a chunk with its similarity score against a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Document is the manifest entry for an ingested source.
type Document struct {
	SourceID   string
	Name       string
	ChunkCount int
	IngestedAt time.Time
}

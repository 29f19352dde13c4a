// Package service implements the ingestion and query pipelines.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/parchment-ai/parchment/internal/chunker"
	"github.com/parchment-ai/parchment/internal/domain"
	"github.com/parchment-ai/parchment/internal/store"
	"github.com/parchment-ai/parchment/internal/telemetry"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DocumentStore is the subset of the store the ingest pipeline writes to.
type DocumentStore interface {
	store.Store
	SetDocumentName(ctx context.Context, sourceID, name string) error
}

// Archiver persists the original document text alongside the vector store.
type Archiver interface {
	PutDocument(ctx context.Context, sourceID, name string, data []byte) error
}

// IngestResult reports how much of a document made it into the store.
type IngestResult struct {
	SourceID       string `json:"source_id"`
	ChunksTotal    int    `json:"chunks_total"`
	ChunksIngested int    `json:"chunks_ingested"`
}

// IngestService runs the chunk, embed, insert pipeline for documents.
type IngestService struct {
	client   EmbeddingClient
	store    DocumentStore
	archiver Archiver
	chunkCfg chunker.Config
	retry    RetryConfig
}

// NewIngestService creates an IngestService with the default chunking and
// retry configuration.
func NewIngestService(client EmbeddingClient, st DocumentStore) *IngestService {
	return &IngestService{
		client:   client,
		store:    st,
		chunkCfg: chunker.DefaultConfig(),
		retry:    DefaultRetryConfig(),
	}
}

// WithChunkConfig overrides the chunking configuration.
func (s *IngestService) WithChunkConfig(cfg chunker.Config) *IngestService {
	s.chunkCfg = cfg
	return s
}

// WithRetryConfig overrides the provider retry policy.
func (s *IngestService) WithRetryConfig(cfg RetryConfig) *IngestService {
	s.retry = cfg
	return s
}

// WithArchiver attaches an archive for original document text. Archiving
// failures are logged, never fatal.
func (s *IngestService) WithArchiver(a Archiver) *IngestService {
	s.archiver = a
	return s
}

// Ingest splits the document into chunks, embeds each chunk, and inserts
// chunk and embedding pairs into the store. Chunks are processed in order;
// on the first failure the pipeline stops and the result reports how many
// chunks were stored. Already-stored chunks are not rolled back.
func (s *IngestService) Ingest(ctx context.Context, sourceID, name, text string) (IngestResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ingest.document", telemetry.SpanAttributes{
		SourceID:  sourceID,
		Operation: "ingest",
	})
	defer span.End()

	result := IngestResult{SourceID: sourceID}

	if strings.TrimSpace(sourceID) == "" {
		return result, domain.ErrEmptySourceID
	}
	if err := s.chunkCfg.Validate(); err != nil {
		return result, err
	}

	chunks, err := chunker.Split(text, s.chunkCfg)
	if err != nil {
		span.SetError(err)
		return result, err
	}
	result.ChunksTotal = len(chunks)

	for i, content := range chunks {
		chunk := domain.NewChunk(sourceID, i, content)

		var embedding []float32
		err := withRetry(ctx, s.retry, func(ctx context.Context) error {
			var embedErr error
			embedding, embedErr = s.client.Embed(ctx, content)
			return embedErr
		})
		if err != nil {
			span.SetError(err)
			return result, fmt.Errorf("failed to embed chunk %d of %s: %w", i, sourceID, err)
		}

		if err := s.store.Insert(ctx, chunk, embedding); err != nil {
			span.SetError(err)
			return result, fmt.Errorf("failed to store chunk %d of %s: %w", i, sourceID, err)
		}
		result.ChunksIngested++
	}

	if name != "" && result.ChunksIngested > 0 {
		if err := s.store.SetDocumentName(ctx, sourceID, name); err != nil {
			log.Printf("ingest: failed to record document name for %s: %v", sourceID, err)
		}
	}

	if s.archiver != nil {
		if err := s.archiver.PutDocument(ctx, sourceID, name, []byte(text)); err != nil {
			log.Printf("ingest: failed to archive document %s: %v", sourceID, err)
		}
	}

	return result, nil
}

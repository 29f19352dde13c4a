package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/parchment-ai/parchment/internal/chunker"
	"github.com/parchment-ai/parchment/internal/domain"
	"github.com/parchment-ai/parchment/internal/store"
)

type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) PutDocument(ctx context.Context, sourceID, name string, data []byte) error {
	args := m.Called(ctx, sourceID, name, data)
	return args.Error(0)
}

func smallChunks() chunker.Config {
	return chunker.Config{Size: 4, Overlap: 0}
}

func TestIngest_Success(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("Embed", mock.Anything, mock.Anything).Return([]float32{1, 0}, nil)

	st := store.NewMemoryStore()
	svc := NewIngestService(client, st).WithChunkConfig(smallChunks())

	result, err := svc.Ingest(context.Background(), "doc-1", "Doc One", "aaaabbbbcccc")
	require.NoError(t, err)

	assert.Equal(t, "doc-1", result.SourceID)
	assert.Equal(t, 3, result.ChunksTotal)
	assert.Equal(t, 3, result.ChunksIngested)

	count, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	docs, err := st.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Doc One", docs[0].Name)
}

func TestIngest_EmptySourceID(t *testing.T) {
	svc := NewIngestService(new(MockEmbeddingClient), store.NewMemoryStore())

	_, err := svc.Ingest(context.Background(), "   ", "name", "text")
	assert.ErrorIs(t, err, domain.ErrEmptySourceID)
}

func TestIngest_EmptyText(t *testing.T) {
	client := new(MockEmbeddingClient)
	st := store.NewMemoryStore()
	svc := NewIngestService(client, st).WithChunkConfig(smallChunks())

	result, err := svc.Ingest(context.Background(), "doc-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ChunksTotal)
	assert.Equal(t, 0, result.ChunksIngested)
	client.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestIngest_InvalidChunkConfig(t *testing.T) {
	svc := NewIngestService(new(MockEmbeddingClient), store.NewMemoryStore()).
		WithChunkConfig(chunker.Config{Size: 5, Overlap: 5})

	_, err := svc.Ingest(context.Background(), "doc-1", "", "text")
	assert.ErrorIs(t, err, domain.ErrInvalidChunkConfig)
}

func TestIngest_PartialFailureKeepsStoredChunks(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("Embed", mock.Anything, "aaaa").Return([]float32{1, 0}, nil)
	client.On("Embed", mock.Anything, "bbbb").Return([]float32{0, 1}, nil)
	client.On("Embed", mock.Anything, "cccc").Return(nil, domain.ErrProviderError)

	st := store.NewMemoryStore()
	svc := NewIngestService(client, st).WithChunkConfig(smallChunks())

	result, err := svc.Ingest(context.Background(), "doc-1", "", "aaaabbbbccccddddeeee")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderError)
	assert.Contains(t, err.Error(), "failed to embed chunk 2 of doc-1")

	// The first two chunks stay in the store; nothing is rolled back.
	assert.Equal(t, 5, result.ChunksTotal)
	assert.Equal(t, 2, result.ChunksIngested)

	count, countErr := st.Count(context.Background())
	require.NoError(t, countErr)
	assert.Equal(t, 2, count)

	// Embedding stops at the first failure.
	client.AssertNotCalled(t, "Embed", mock.Anything, "dddd")
}

func TestIngest_ReingestAfterPartialFailureIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()

	failing := new(MockEmbeddingClient)
	failing.On("Embed", mock.Anything, "aaaa").Return([]float32{1, 0}, nil)
	failing.On("Embed", mock.Anything, "bbbb").Return(nil, domain.ErrProviderError)

	svc := NewIngestService(failing, st).WithChunkConfig(smallChunks())
	_, err := svc.Ingest(context.Background(), "doc-1", "", "aaaabbbbcccc")
	require.Error(t, err)

	healthy := new(MockEmbeddingClient)
	healthy.On("Embed", mock.Anything, mock.Anything).Return([]float32{1, 0}, nil)

	svc = NewIngestService(healthy, st).WithChunkConfig(smallChunks())
	result, err := svc.Ingest(context.Background(), "doc-1", "", "aaaabbbbcccc")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ChunksIngested)

	// Chunk IDs are deterministic, so the retried chunk replaces rather
	// than duplicates.
	count, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestIngest_RateLimitedRetriedThenSucceeds(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("Embed", mock.Anything, "aaaa").Return(nil, domain.ErrRateLimited).Once()
	client.On("Embed", mock.Anything, "aaaa").Return([]float32{1, 0}, nil).Once()

	st := store.NewMemoryStore()
	svc := NewIngestService(client, st).
		WithChunkConfig(smallChunks()).
		WithRetryConfig(fastRetry(3))

	result, err := svc.Ingest(context.Background(), "doc-1", "", "aaaa")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChunksIngested)
	client.AssertExpectations(t)
}

func TestIngest_ArchiverFailureNotFatal(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("Embed", mock.Anything, mock.Anything).Return([]float32{1, 0}, nil)

	archiver := new(MockArchiver)
	archiver.On("PutDocument", mock.Anything, "doc-1", "name", []byte("aaaa")).
		Return(errors.New("bucket unavailable"))

	svc := NewIngestService(client, store.NewMemoryStore()).
		WithChunkConfig(smallChunks()).
		WithArchiver(archiver)

	result, err := svc.Ingest(context.Background(), "doc-1", "name", "aaaa")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChunksIngested)
	archiver.AssertExpectations(t)
}

func TestIngest_ArchivesOriginalText(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("Embed", mock.Anything, mock.Anything).Return([]float32{1, 0}, nil)

	archiver := new(MockArchiver)
	archiver.On("PutDocument", mock.Anything, "doc-1", "Doc", []byte("aaaabbbb")).Return(nil)

	svc := NewIngestService(client, store.NewMemoryStore()).
		WithChunkConfig(smallChunks()).
		WithArchiver(archiver)

	_, err := svc.Ingest(context.Background(), "doc-1", "Doc", "aaaabbbb")
	require.NoError(t, err)
	archiver.AssertExpectations(t)
}

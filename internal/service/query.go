package service

import (
	"context"
	"strings"

	"github.com/parchment-ai/parchment/internal/composer"
	"github.com/parchment-ai/parchment/internal/domain"
	"github.com/parchment-ai/parchment/internal/retriever"
	"github.com/parchment-ai/parchment/internal/telemetry"
)

// DefaultTopK is the number of chunks retrieved when the caller does not ask
// for a specific count.
const DefaultTopK = 5

// AnswerResult is a generated answer together with the chunks it was
// grounded on.
type AnswerResult struct {
	Answer string              `json:"answer"`
	Chunks []domain.ScoredChunk `json:"chunks"`
}

// QueryService embeds questions, retrieves relevant chunks, and composes
// grounded answers.
type QueryService struct {
	client    EmbeddingClient
	retriever *retriever.Retriever
	composer  *composer.Composer
	topK      int
	retry     RetryConfig
}

// NewQueryService creates a QueryService with the default top-K and retry
// configuration.
func NewQueryService(client EmbeddingClient, r *retriever.Retriever, c *composer.Composer) *QueryService {
	return &QueryService{
		client:    client,
		retriever: r,
		composer:  c,
		topK:      DefaultTopK,
		retry:     DefaultRetryConfig(),
	}
}

// WithTopK overrides the default retrieval count.
func (s *QueryService) WithTopK(k int) *QueryService {
	if k > 0 {
		s.topK = k
	}
	return s
}

// WithRetryConfig overrides the provider retry policy.
func (s *QueryService) WithRetryConfig(cfg RetryConfig) *QueryService {
	s.retry = cfg
	return s
}

// Search embeds the query and returns the top-K most similar chunks.
// k <= 0 uses the configured default.
func (s *QueryService) Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	ctx, span := telemetry.StartSpan(ctx, "query.search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if k <= 0 {
		k = s.topK
	}

	embedding, err := s.embedQuery(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	chunks, err := s.retriever.Retrieve(ctx, embedding, k)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return chunks, nil
}

// Ask retrieves context for the question and composes a grounded answer.
// With nothing ingested, retrieval yields no context and the answer states
// that no relevant information is available.
func (s *QueryService) Ask(ctx context.Context, query string, k int) (AnswerResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "query.ask", telemetry.SpanAttributes{
		Operation: "ask",
	})
	defer span.End()

	chunks, err := s.Search(ctx, query, k)
	if err != nil {
		return AnswerResult{}, err
	}

	var answer string
	err = withRetry(ctx, s.retry, func(ctx context.Context) error {
		var genErr error
		answer, genErr = s.composer.Answer(ctx, query, chunks)
		return genErr
	})
	if err != nil {
		span.SetError(err)
		return AnswerResult{}, err
	}

	return AnswerResult{Answer: answer, Chunks: chunks}, nil
}

// embedQuery generates the query embedding under the retry policy.
func (s *QueryService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	var embedding []float32
	err := withRetry(ctx, s.retry, func(ctx context.Context) error {
		var embedErr error
		embedding, embedErr = s.client.Embed(ctx, query)
		return embedErr
	})
	return embedding, err
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/parchment-ai/parchment/internal/domain"
	"github.com/parchment-ai/parchment/internal/service"
)

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Ask(ctx context.Context, query string, k int) (service.AnswerResult, error) {
	args := m.Called(ctx, query, k)
	return args.Get(0).(service.AnswerResult), args.Error(1)
}

func (m *MockQueryService) Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	args := m.Called(ctx, query, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredChunk), args.Error(1)
}

func TestAsk_Success(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("Ask", mock.Anything, "what is parchment?", 3).
		Return(service.AnswerResult{
			Answer: "A document QA service.",
			Chunks: []domain.ScoredChunk{
				{Chunk: domain.NewChunk("manual", 0, "Parchment is a document QA service."), Score: 0.93},
			},
		}, nil)

	h := NewQueryHandler(svc)
	w := postJSON(t, h.Ask, "/ask", AskRequest{Question: "what is parchment?", TopK: 3})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data AskResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "A document QA service.", resp.Data.Answer)
	require.Len(t, resp.Data.Chunks, 1)
	assert.Equal(t, "manual", resp.Data.Chunks[0].SourceID)
	assert.Equal(t, 0, resp.Data.Chunks[0].Index)
	assert.InDelta(t, 0.93, resp.Data.Chunks[0].Score, 1e-9)
	svc.AssertExpectations(t)
}

func TestAsk_ValidationErrors(t *testing.T) {
	h := NewQueryHandler(new(MockQueryService))

	tests := []struct {
		name string
		req  AskRequest
	}{
		{"missing question", AskRequest{TopK: 3}},
		{"negative top_k", AskRequest{Question: "q", TopK: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.Ask, "/ask", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAsk_InvalidBody(t *testing.T) {
	h := NewQueryHandler(new(MockQueryService))

	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader([]byte("{bad")))
	w := httptest.NewRecorder()
	h.Ask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAsk_ProviderUnavailable(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("Ask", mock.Anything, mock.Anything, mock.Anything).
		Return(service.AnswerResult{}, domain.ErrProviderUnavailable)

	h := NewQueryHandler(svc)
	w := postJSON(t, h.Ask, "/ask", AskRequest{Question: "q"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSearch_Success(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("Search", mock.Anything, "find this", 0).
		Return([]domain.ScoredChunk{
			{Chunk: domain.NewChunk("doc-1", 2, "matching content"), Score: 0.88},
			{Chunk: domain.NewChunk("doc-2", 0, "weaker match"), Score: 0.41},
		}, nil)

	h := NewQueryHandler(svc)
	w := postJSON(t, h.Search, "/search", SearchRequest{Query: "find this"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []ChunkResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "doc-1", resp.Data[0].SourceID)
	assert.Equal(t, 2, resp.Data[0].Index)
	assert.Greater(t, resp.Data[0].Score, resp.Data[1].Score)
}

func TestSearch_EmptyResults(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("Search", mock.Anything, "nothing", 0).Return([]domain.ScoredChunk{}, nil)

	h := NewQueryHandler(svc)
	w := postJSON(t, h.Search, "/search", SearchRequest{Query: "nothing"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []ChunkResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
	assert.NotNil(t, resp.Data)
}

func TestSearch_ValidationErrors(t *testing.T) {
	h := NewQueryHandler(new(MockQueryService))

	w := postJSON(t, h.Search, "/search", SearchRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, h.Search, "/search", SearchRequest{Query: "q", TopK: -2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch_RateLimited(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrRateLimited)

	h := NewQueryHandler(svc)
	w := postJSON(t, h.Search, "/search", SearchRequest{Query: "q"})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

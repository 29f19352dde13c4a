package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/parchment-ai/parchment/internal/api"
	"github.com/parchment-ai/parchment/internal/domain"
	"github.com/parchment-ai/parchment/internal/service"
)

type QueryService interface {
	Ask(ctx context.Context, query string, k int) (service.AnswerResult, error)
	Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)
}

type QueryHandler struct {
	svc QueryService
}

func NewQueryHandler(svc QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type ChunkResponse struct {
	SourceID string  `json:"source_id"`
	Index    int     `json:"chunk_index"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
}

type AskResponse struct {
	Answer string          `json:"answer"`
	Chunks []ChunkResponse `json:"chunks"`
}

func chunksToResponse(chunks []domain.ScoredChunk) []ChunkResponse {
	out := make([]ChunkResponse, 0, len(chunks))
	for _, sc := range chunks {
		out = append(out, ChunkResponse{
			SourceID: sc.Chunk.SourceID,
			Index:    sc.Chunk.Index,
			Content:  sc.Chunk.Content,
			Score:    sc.Score,
		})
	}
	return out
}

// Ask handles POST /ask.
func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.TopK < 0 {
		api.Error(w, http.StatusBadRequest, "top_k cannot be negative")
		return
	}

	result, err := h.svc.Ask(r.Context(), req.Question, req.TopK)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AskResponse{
		Answer: result.Answer,
		Chunks: chunksToResponse(result.Chunks),
	})
}

// Search handles POST /search.
func (h *QueryHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.TopK < 0 {
		api.Error(w, http.StatusBadRequest, "top_k cannot be negative")
		return
	}

	chunks, err := h.svc.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, chunksToResponse(chunks))
}

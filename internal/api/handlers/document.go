// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/parchment-ai/parchment/internal/api"
	"github.com/parchment-ai/parchment/internal/domain"
	"github.com/parchment-ai/parchment/internal/pagination"
	"github.com/parchment-ai/parchment/internal/service"
)

type DocumentIngester interface {
	Ingest(ctx context.Context, sourceID, name, text string) (service.IngestResult, error)
}

type DocumentLister interface {
	List(ctx context.Context, cursor string, limit int) (pagination.PageResult[domain.Document], error)
}

type IngestQueue interface {
	Enqueue(ctx context.Context, sourceID, name, text string) (*domain.IngestJob, error)
	Get(ctx context.Context, jobID string) (*domain.IngestJob, error)
}

type DocumentHandler struct {
	ingester DocumentIngester
	lister   DocumentLister
	queue    IngestQueue
}

func NewDocumentHandler(ingester DocumentIngester, lister DocumentLister, queue IngestQueue) *DocumentHandler {
	return &DocumentHandler{
		ingester: ingester,
		lister:   lister,
		queue:    queue,
	}
}

type IngestRequest struct {
	SourceID string `json:"source_id"`
	Name     string `json:"name"`
	Text     string `json:"text"`
	Async    bool   `json:"async"`
}

type IngestResponse struct {
	SourceID       string `json:"source_id"`
	ChunksTotal    int    `json:"chunks_total"`
	ChunksIngested int    `json:"chunks_ingested"`
}

type IngestErrorResponse struct {
	Error          string `json:"error"`
	SourceID       string `json:"source_id"`
	ChunksTotal    int    `json:"chunks_total"`
	ChunksIngested int    `json:"chunks_ingested"`
}

type JobResponse struct {
	ID             string `json:"id"`
	SourceID       string `json:"source_id"`
	Name           string `json:"name,omitempty"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
	ChunksTotal    int    `json:"chunks_total"`
	ChunksIngested int    `json:"chunks_ingested"`
	CreatedAt      string `json:"created_at"`
	ProcessedAt    string `json:"processed_at,omitempty"`
}

type DocumentResponse struct {
	SourceID   string `json:"source_id"`
	Name       string `json:"name,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	IngestedAt string `json:"ingested_at"`
}

func jobToResponse(j *domain.IngestJob) *JobResponse {
	resp := &JobResponse{
		ID:             j.ID,
		SourceID:       j.SourceID,
		Name:           j.Name,
		Status:         string(j.Status),
		Error:          j.Error,
		ChunksTotal:    j.ChunksTotal,
		ChunksIngested: j.ChunksIngested,
		CreatedAt:      j.CreatedAt.Format(time.RFC3339),
	}
	if j.ProcessedAt != nil {
		resp.ProcessedAt = j.ProcessedAt.Format(time.RFC3339)
	}
	return resp
}

func documentToResponse(d domain.Document) DocumentResponse {
	return DocumentResponse{
		SourceID:   d.SourceID,
		Name:       d.Name,
		ChunkCount: d.ChunkCount,
		IngestedAt: d.IngestedAt.Format(time.RFC3339),
	}
}

// Ingest handles POST /documents. Synchronous by default; async: true
// enqueues a background job instead.
func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SourceID == "" {
		api.Error(w, http.StatusBadRequest, "source_id is required")
		return
	}
	if req.Text == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	if req.Async {
		if h.queue == nil {
			api.Error(w, http.StatusBadRequest, "async ingestion is not enabled")
			return
		}
		job, err := h.queue.Enqueue(r.Context(), req.SourceID, req.Name, req.Text)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		api.Success(w, http.StatusAccepted, jobToResponse(job))
		return
	}

	result, err := h.ingester.Ingest(r.Context(), req.SourceID, req.Name, req.Text)
	if err != nil {
		// Chunks stored before the failure stay in the store; report how
		// far ingestion got alongside the error.
		api.JSON(w, api.DomainErrorToHTTP(err), IngestErrorResponse{
			Error:          err.Error(),
			SourceID:       result.SourceID,
			ChunksTotal:    result.ChunksTotal,
			ChunksIngested: result.ChunksIngested,
		})
		return
	}

	api.Success(w, http.StatusCreated, IngestResponse{
		SourceID:       result.SourceID,
		ChunksTotal:    result.ChunksTotal,
		ChunksIngested: result.ChunksIngested,
	})
}

// List handles GET /documents with optional cursor and limit parameters.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	page, err := h.lister.List(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]DocumentResponse, 0, len(page.Items))
	for _, doc := range page.Items {
		items = append(items, documentToResponse(doc))
	}

	api.Success(w, http.StatusOK, pagination.PageResult[DocumentResponse]{
		Items:   items,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}

// GetJob handles GET /jobs/{id}.
func (h *DocumentHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		api.Error(w, http.StatusNotFound, "async ingestion is not enabled")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	job, err := h.queue.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, jobToResponse(job))
}

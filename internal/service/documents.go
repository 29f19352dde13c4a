package service

import (
	"context"
	"time"

	"github.com/parchment-ai/parchment/internal/domain"
	"github.com/parchment-ai/parchment/internal/pagination"
	"github.com/parchment-ai/parchment/internal/store"
)

// DefaultPageSize bounds document listings when no limit is given.
const DefaultPageSize = 20

// MaxPageSize is the largest accepted page size.
const MaxPageSize = 100

// DocumentService lists the ingested document manifest.
type DocumentService struct {
	store store.Store
}

// NewDocumentService creates a DocumentService over the given store.
func NewDocumentService(st store.Store) *DocumentService {
	return &DocumentService{store: st}
}

// List returns one page of ingested documents, ordered by ingestion time
// then source ID. The cursor is opaque to callers.
func (s *DocumentService) List(ctx context.Context, cursor string, limit int) (pagination.PageResult[domain.Document], error) {
	var page pagination.PageResult[domain.Document]

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	after, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return page, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return page, err
	}

	// The manifest is small enough to page in memory; the store already
	// returns it in (IngestedAt, SourceID) order.
	start := 0
	if after != nil {
		for i, doc := range docs {
			if doc.SourceID == after.LastID {
				start = i + 1
				break
			}
			if doc.IngestedAt.After(after.Timestamp) {
				start = i
				break
			}
		}
	}

	end := start + limit
	if end > len(docs) {
		end = len(docs)
	}
	items := docs[start:end]

	page.Items = items
	page.HasMore = end < len(docs)
	if page.HasMore {
		page.Cursor = pagination.CreateNextCursor(items, limit,
			func(d domain.Document) string { return d.SourceID },
			func(d domain.Document) time.Time { return d.IngestedAt })
	}
	return page, nil
}

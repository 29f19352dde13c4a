package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-ai/parchment/internal/domain"
	"github.com/parchment-ai/parchment/internal/store"
)

func storeWithDocs(t *testing.T, n int) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		sourceID := fmt.Sprintf("doc-%03d", i)
		require.NoError(t, st.Insert(ctx, domain.NewChunk(sourceID, 0, "content"), []float32{1, 0}))
	}
	return st
}

func TestList_DefaultPageSize(t *testing.T) {
	svc := NewDocumentService(storeWithDocs(t, 25))

	page, err := svc.List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, DefaultPageSize)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.Cursor)
}

func TestList_LimitCapped(t *testing.T) {
	svc := NewDocumentService(storeWithDocs(t, 150))

	page, err := svc.List(context.Background(), "", 500)
	require.NoError(t, err)
	assert.Len(t, page.Items, MaxPageSize)
	assert.True(t, page.HasMore)
}

func TestList_SinglePage(t *testing.T) {
	svc := NewDocumentService(storeWithDocs(t, 3))

	page, err := svc.List(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.Cursor)
}

func TestList_CursorWalksAllPages(t *testing.T) {
	svc := NewDocumentService(storeWithDocs(t, 7))
	ctx := context.Background()

	var seen []string
	cursor := ""
	pages := 0
	for {
		page, err := svc.List(ctx, cursor, 3)
		require.NoError(t, err)
		for _, doc := range page.Items {
			seen = append(seen, doc.SourceID)
		}
		pages++
		if !page.HasMore {
			break
		}
		require.NotEmpty(t, page.Cursor)
		cursor = page.Cursor
	}

	assert.Equal(t, 3, pages)
	require.Len(t, seen, 7)

	// No duplicates and no gaps across page boundaries.
	unique := make(map[string]bool, len(seen))
	for _, id := range seen {
		assert.False(t, unique[id], "duplicate %s", id)
		unique[id] = true
	}
}

func TestList_InvalidCursor(t *testing.T) {
	svc := NewDocumentService(storeWithDocs(t, 2))

	_, err := svc.List(context.Background(), "not base64!!", 10)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestList_EmptyStore(t *testing.T) {
	svc := NewDocumentService(store.NewMemoryStore())

	page, err := svc.List(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

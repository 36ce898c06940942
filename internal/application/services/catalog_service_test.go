package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gptdir/core/internal/adapters/repository"
	"github.com/gptdir/core/internal/domain/entities"
	"github.com/gptdir/core/internal/infrastructure/jsonstore"
	"github.com/gptdir/core/internal/infrastructure/logger"
	"github.com/gptdir/core/internal/ports"
)

func newCatalogService(t *testing.T) *CatalogService {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	store, err := jsonstore.Open(path, entities.NewDocument)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewCatalogService(repository.NewCatalogRepository(store), logger.NewNop())
}

func TestCreateItemAssignsIdentity(t *testing.T) {
	svc := newCatalogService(t)

	before := time.Now().UnixMilli()
	item, err := svc.CreateItem(context.Background(), ports.CreateItemRequest{
		Title:      "Prompt Helper",
		URL:        "https://example.com/gpts/prompt-helper",
		Categories: []string{" tools ", ""},
		Tags:       []string{"prompts"},
	})
	require.NoError(t, err)

	_, err = uuid.Parse(item.ID)
	assert.NoError(t, err, "item IDs are uuids")
	assert.GreaterOrEqual(t, item.CreatedAt, before)
	assert.LessOrEqual(t, item.CreatedAt, time.Now().UnixMilli())
	assert.Equal(t, entities.StatusLive, item.Status, "admin creates default to live")
	assert.Equal(t, []string{"tools"}, item.Categories, "labels are trimmed, empties dropped")
}

func TestCreateItemRejectsBadURL(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	for _, raw := range []string{"ftp://example.com", "example.com/no-scheme", "https://"} {
		_, err := svc.CreateItem(ctx, ports.CreateItemRequest{Title: "x", URL: raw})
		assert.ErrorIs(t, err, entities.ErrInvalidItemURL, "url %q", raw)
	}

	items, err := svc.ListItems(ctx, ports.ItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, items, "rejected creates must not reach the catalog")
}

func TestSubmitItemForcedPending(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	item, err := svc.SubmitItem(ctx, ports.SubmitItemRequest{
		Title: "Visitor GPT",
		URL:   "https://example.com/gpts/visitor",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusPending, item.Status)
	assert.False(t, item.Featured)

	catalog, err := svc.GetCatalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, catalog.Items, "pending submissions stay out of the public catalog")

	all, err := svc.ListItems(ctx, ports.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetCatalogOrdersNewestFirst(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	for _, title := range []string{"oldest", "middle", "newest"} {
		_, err := svc.CreateItem(ctx, ports.CreateItemRequest{
			Title: title,
			URL:   "https://example.com/gpts/" + title,
		})
		require.NoError(t, err)
	}
	hidden, err := svc.CreateItem(ctx, ports.CreateItemRequest{
		Title:  "hidden",
		URL:    "https://example.com/gpts/hidden",
		Status: entities.StatusHidden,
	})
	require.NoError(t, err)

	catalog, err := svc.GetCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultTitle, catalog.Settings.Title)

	titles := make([]string, 0, len(catalog.Items))
	for _, item := range catalog.Items {
		titles = append(titles, item.Title)
	}
	assert.Equal(t, []string{"newest", "middle", "oldest"}, titles)
	assert.NotContains(t, titles, hidden.Title)
}

func TestUpdateItemValidatesURL(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, ports.CreateItemRequest{
		Title: "stable",
		URL:   "https://example.com/gpts/stable",
	})
	require.NoError(t, err)

	bad := "javascript:alert(1)"
	_, err = svc.UpdateItem(ctx, item.ID, ports.UpdateItemRequest{URL: &bad})
	require.ErrorIs(t, err, entities.ErrInvalidItemURL)

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/gpts/stable", got.URL)
}

func TestUpdateMissingItem(t *testing.T) {
	svc := newCatalogService(t)

	title := "nobody"
	_, err := svc.UpdateItem(context.Background(), "no-such-id", ports.UpdateItemRequest{Title: &title})
	require.ErrorIs(t, err, entities.ErrItemNotFound)
}

func TestDeleteItem(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, ports.CreateItemRequest{
		Title: "short-lived",
		URL:   "https://example.com/gpts/short-lived",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	require.ErrorIs(t, svc.DeleteItem(ctx, item.ID), entities.ErrItemNotFound)
}

func TestUpdateSettings(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	settings, err := svc.UpdateSettings(ctx, ports.UpdateSettingsRequest{Title: "  Curated GPTs  "})
	require.NoError(t, err)
	assert.Equal(t, "Curated GPTs", settings.Title)

	got, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Curated GPTs", got.Title)
}

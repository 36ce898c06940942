package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gptdir/core/internal/domain/entities"
	"github.com/gptdir/core/internal/infrastructure/jsonstore"
	"github.com/gptdir/core/internal/ports"
)

// CatalogRepositoryImpl implements the CatalogRepository interface over the
// catalog document store. Every mutation goes through the store's queue, so
// lookups that precede a change run inside the same mutator to stay atomic.
type CatalogRepositoryImpl struct {
	store *jsonstore.Store[entities.Document]
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(store *jsonstore.Store[entities.Document]) ports.CatalogRepository {
	return &CatalogRepositoryImpl{store: store}
}

func (r *CatalogRepositoryImpl) CreateItem(ctx context.Context, item *entities.Item) error {
	stored := item.Clone()
	err := r.store.Mutate(ctx, func(doc *entities.Document) error {
		doc.InsertItem(stored)
		return nil
	})
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (r *CatalogRepositoryImpl) GetItem(ctx context.Context, id string) (*entities.Item, error) {
	var found *entities.Item
	r.store.View(func(doc *entities.Document) {
		if idx := doc.ItemIndex(id); idx >= 0 {
			item := doc.Items[idx].Clone()
			found = &item
		}
	})
	if found == nil {
		return nil, entities.ErrItemNotFound
	}
	return found, nil
}

func (r *CatalogRepositoryImpl) UpdateItem(ctx context.Context, id string, req ports.UpdateItemRequest) (*entities.Item, error) {
	var updated entities.Item
	err := r.store.Mutate(ctx, func(doc *entities.Document) error {
		idx := doc.ItemIndex(id)
		if idx < 0 {
			return entities.ErrItemNotFound
		}

		// Merge onto a copy so a rejected update never touches the document.
		item := doc.Items[idx].Clone()
		if req.Title != nil {
			item.Title = *req.Title
		}
		if req.URL != nil {
			item.URL = *req.URL
		}
		if req.Icon != nil {
			item.Icon = *req.Icon
		}
		if req.Desc != nil {
			item.Desc = *req.Desc
		}
		if req.Categories != nil {
			item.Categories = append([]string(nil), req.Categories...)
		}
		if req.Tags != nil {
			item.Tags = append([]string(nil), req.Tags...)
		}
		if req.Status != nil {
			if !req.Status.IsValid() {
				return entities.ErrInvalidStatus
			}
			item.Status = *req.Status
		}
		if req.Featured != nil {
			item.Featured = *req.Featured
		}

		doc.Items[idx] = item
		updated = item.Clone()
		return nil
	})
	if err != nil {
		if errors.Is(err, entities.ErrItemNotFound) || errors.Is(err, entities.ErrInvalidStatus) {
			return nil, err
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &updated, nil
}

func (r *CatalogRepositoryImpl) DeleteItem(ctx context.Context, id string) error {
	err := r.store.Mutate(ctx, func(doc *entities.Document) error {
		if !doc.RemoveItem(id) {
			return entities.ErrItemNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, entities.ErrItemNotFound) {
			return err
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (r *CatalogRepositoryImpl) ListItems(ctx context.Context, filter ports.ItemFilter) ([]entities.Item, error) {
	var items []entities.Item
	r.store.View(func(doc *entities.Document) {
		items = collectItems(doc, filter)
	})
	return items, nil
}

func (r *CatalogRepositoryImpl) CountItems(ctx context.Context, filter ports.ItemFilter) (int, error) {
	var count int
	r.store.View(func(doc *entities.Document) {
		for i := range doc.Items {
			if filter.Matches(&doc.Items[i]) {
				count++
			}
		}
	})
	return count, nil
}

func (r *CatalogRepositoryImpl) GetDocument(ctx context.Context) (*entities.Document, error) {
	var snapshot entities.Document
	r.store.View(func(doc *entities.Document) {
		snapshot = doc.Clone()
	})
	return &snapshot, nil
}

func (r *CatalogRepositoryImpl) GetSettings(ctx context.Context) (entities.Settings, error) {
	var settings entities.Settings
	r.store.View(func(doc *entities.Document) {
		settings = doc.Settings
	})
	return settings, nil
}

func (r *CatalogRepositoryImpl) UpdateSettings(ctx context.Context, settings entities.Settings) error {
	err := r.store.Mutate(ctx, func(doc *entities.Document) error {
		doc.Settings = settings
		return nil
	})
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// collectItems walks the document in catalog order applying the filter,
// offset and limit, cloning every returned item.
func collectItems(doc *entities.Document, filter ports.ItemFilter) []entities.Item {
	out := make([]entities.Item, 0, len(doc.Items))
	skip := filter.Offset
	for i := range doc.Items {
		if !filter.Matches(&doc.Items[i]) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, doc.Items[i].Clone())
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out
}

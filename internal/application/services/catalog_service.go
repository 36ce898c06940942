package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gptdir/core/internal/domain/entities"
	"github.com/gptdir/core/internal/infrastructure/logger"
	"github.com/gptdir/core/internal/ports"
)

// CatalogService handles catalog and settings operations
type CatalogService struct {
	catalogRepo ports.CatalogRepository
	logger      *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo ports.CatalogRepository, logger *logger.Logger) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// GetCatalog returns the public catalog payload: display settings plus the
// live items, newest first. Settings and items come from one document
// snapshot so they never mix states.
func (s *CatalogService) GetCatalog(ctx context.Context) (*ports.CatalogResponse, error) {
	doc, err := s.catalogRepo.GetDocument(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return &ports.CatalogResponse{
		Settings: doc.Settings,
		Items:    doc.VisibleItems(),
	}, nil
}

// ListItems returns the items matching the filter in catalog order
func (s *CatalogService) ListItems(ctx context.Context, filter ports.ItemFilter) ([]entities.Item, error) {
	return s.catalogRepo.ListItems(ctx, filter)
}

// CountItems returns how many items match the filter
func (s *CatalogService) CountItems(ctx context.Context, filter ports.ItemFilter) (int, error) {
	return s.catalogRepo.CountItems(ctx, filter)
}

// GetItem retrieves a single item by ID
func (s *CatalogService) GetItem(ctx context.Context, id string) (*entities.Item, error) {
	return s.catalogRepo.GetItem(ctx, id)
}

// CreateItem creates a new catalog item (admin path; defaults to live)
func (s *CatalogService) CreateItem(ctx context.Context, req ports.CreateItemRequest) (*entities.Item, error) {
	status := req.Status
	if status == "" {
		status = entities.StatusLive
	}

	item, err := s.insertItem(ctx, req, status, req.Featured)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Item created", "item_id", item.ID, "title", item.Title, "status", item.Status)
	return item, nil
}

// SubmitItem records a visitor submission. Submissions always land as
// pending and never featured, whatever the payload claims.
func (s *CatalogService) SubmitItem(ctx context.Context, req ports.SubmitItemRequest) (*entities.Item, error) {
	create := ports.CreateItemRequest{
		Title:      req.Title,
		URL:        req.URL,
		Icon:       req.Icon,
		Desc:       req.Desc,
		Categories: req.Categories,
		Tags:       req.Tags,
	}

	item, err := s.insertItem(ctx, create, entities.StatusPending, false)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Item submitted for review", "item_id", item.ID, "title", item.Title)
	return item, nil
}

// UpdateItem applies a partial update to an item
func (s *CatalogService) UpdateItem(ctx context.Context, id string, req ports.UpdateItemRequest) (*entities.Item, error) {
	if req.URL != nil {
		if err := entities.ValidateItemURL(*req.URL); err != nil {
			return nil, err
		}
	}
	if req.Categories != nil {
		req.Categories = normalizeLabels(req.Categories)
	}
	if req.Tags != nil {
		req.Tags = normalizeLabels(req.Tags)
	}

	item, err := s.catalogRepo.UpdateItem(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Item updated", "item_id", id)
	return item, nil
}

// DeleteItem removes an item from the catalog
func (s *CatalogService) DeleteItem(ctx context.Context, id string) error {
	if err := s.catalogRepo.DeleteItem(ctx, id); err != nil {
		return err
	}

	s.logger.Infow("Item deleted", "item_id", id)
	return nil
}

// GetSettings returns the catalog settings
func (s *CatalogService) GetSettings(ctx context.Context) (entities.Settings, error) {
	return s.catalogRepo.GetSettings(ctx)
}

// UpdateSettings replaces the catalog settings
func (s *CatalogService) UpdateSettings(ctx context.Context, req ports.UpdateSettingsRequest) (entities.Settings, error) {
	settings := entities.Settings{Title: strings.TrimSpace(req.Title)}
	if err := s.catalogRepo.UpdateSettings(ctx, settings); err != nil {
		return entities.Settings{}, err
	}

	s.logger.Infow("Settings updated", "title", settings.Title)
	return settings, nil
}

func (s *CatalogService) insertItem(ctx context.Context, req ports.CreateItemRequest, status entities.ItemStatus, featured bool) (*entities.Item, error) {
	if err := entities.ValidateItemURL(req.URL); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, entities.ErrInvalidStatus
	}

	item := &entities.Item{
		ID:         uuid.NewString(),
		Title:      req.Title,
		URL:        req.URL,
		Icon:       req.Icon,
		Desc:       req.Desc,
		Categories: normalizeLabels(req.Categories),
		Tags:       normalizeLabels(req.Tags),
		Status:     status,
		Featured:   featured,
		CreatedAt:  time.Now().UnixMilli(),
	}

	if err := s.catalogRepo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

// normalizeLabels trims category and tag labels and drops empty ones.
// Duplicates are tolerated. The result is never nil so the JSON stays an
// array.
func normalizeLabels(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

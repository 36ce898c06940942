package ports

import (
	"context"
	"strings"

	"github.com/gptdir/core/internal/domain/entities"
)

// CatalogRepository defines the interface for catalog document operations.
// Mutating methods run through the store's mutation queue; a method that
// returns an error has left both memory and disk untouched, except for
// persistence failures, which apply in memory and report the divergence.
type CatalogRepository interface {
	CreateItem(ctx context.Context, item *entities.Item) error
	GetItem(ctx context.Context, id string) (*entities.Item, error)
	UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*entities.Item, error)
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, filter ItemFilter) ([]entities.Item, error)
	CountItems(ctx context.Context, filter ItemFilter) (int, error)
	GetDocument(ctx context.Context) (*entities.Document, error)
	GetSettings(ctx context.Context) (entities.Settings, error)
	UpdateSettings(ctx context.Context, settings entities.Settings) error
}

// LeadRepository defines the interface for lead capture operations. Leads
// are append-only.
type LeadRepository interface {
	Append(ctx context.Context, lead *entities.Lead) error
	List(ctx context.Context) ([]entities.Lead, error)
	Count(ctx context.Context) (int, error)
}

// ItemFilter narrows item listings. Zero values mean "no constraint"; the
// result keeps catalog order (newest first).
type ItemFilter struct {
	Status       *entities.ItemStatus
	Category     *string
	Tag          *string
	Search       *string
	FeaturedOnly bool
	Limit        int
	Offset       int
}

// Matches reports whether the item passes every set constraint.
func (f ItemFilter) Matches(item *entities.Item) bool {
	if f.Status != nil && item.Status != *f.Status {
		return false
	}
	if f.FeaturedOnly && !item.Featured {
		return false
	}
	if f.Category != nil && !containsFold(item.Categories, *f.Category) {
		return false
	}
	if f.Tag != nil && !containsFold(item.Tags, *f.Tag) {
		return false
	}
	if f.Search != nil && !matchesSearch(item, *f.Search) {
		return false
	}
	return true
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func matchesSearch(item *entities.Item, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(item.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(item.Desc), q) {
		return true
	}
	for _, c := range item.Categories {
		if strings.Contains(strings.ToLower(c), q) {
			return true
		}
	}
	for _, t := range item.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

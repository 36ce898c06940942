package repository

import (
	"context"
	"fmt"

	"github.com/gptdir/core/internal/domain/entities"
	"github.com/gptdir/core/internal/infrastructure/jsonstore"
	"github.com/gptdir/core/internal/ports"
)

// LeadRepositoryImpl implements the LeadRepository interface over the lead
// store. The stored document is a bare JSON array; records only ever get
// appended to its end.
type LeadRepositoryImpl struct {
	store *jsonstore.Store[entities.Leads]
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(store *jsonstore.Store[entities.Leads]) ports.LeadRepository {
	return &LeadRepositoryImpl{store: store}
}

func (r *LeadRepositoryImpl) Append(ctx context.Context, lead *entities.Lead) error {
	stored := *lead
	err := r.store.Mutate(ctx, func(leads *entities.Leads) error {
		*leads = append(*leads, stored)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append lead: %w", err)
	}
	return nil
}

func (r *LeadRepositoryImpl) List(ctx context.Context) ([]entities.Lead, error) {
	var out []entities.Lead
	r.store.View(func(leads *entities.Leads) {
		out = make([]entities.Lead, 0, len(*leads))
		// Stored oldest-first; listings show the newest lead on top.
		for i := len(*leads) - 1; i >= 0; i-- {
			out = append(out, (*leads)[i])
		}
	})
	return out, nil
}

func (r *LeadRepositoryImpl) Count(ctx context.Context) (int, error) {
	var count int
	r.store.View(func(leads *entities.Leads) {
		count = len(*leads)
	})
	return count, nil
}

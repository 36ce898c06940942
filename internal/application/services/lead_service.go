package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gptdir/core/internal/domain/entities"
	"github.com/gptdir/core/internal/infrastructure/logger"
	"github.com/gptdir/core/internal/ports"
)

// LeadService handles lead capture operations
type LeadService struct {
	leadRepo ports.LeadRepository
	logger   *logger.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(leadRepo ports.LeadRepository, logger *logger.Logger) *LeadService {
	return &LeadService{
		leadRepo: leadRepo,
		logger:   logger,
	}
}

// SubmitLead records a visitor contact. The user agent comes from the
// request headers; the timezone is whatever the client reported.
func (s *LeadService) SubmitLead(ctx context.Context, req ports.SubmitLeadRequest) (*entities.Lead, error) {
	lead := &entities.Lead{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Name:      req.Name,
		Message:   req.Message,
		UserAgent: req.UserAgent,
		Timezone:  req.Timezone,
		CreatedAt: time.Now().UnixMilli(),
	}

	if err := s.leadRepo.Append(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}

	s.logger.Infow("Lead captured", "lead_id", lead.ID)
	return lead, nil
}

// ListLeads returns every captured lead, newest first
func (s *LeadService) ListLeads(ctx context.Context) ([]entities.Lead, error) {
	return s.leadRepo.List(ctx)
}

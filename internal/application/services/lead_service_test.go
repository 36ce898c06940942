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

func newLeadService(t *testing.T) *LeadService {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.json")
	store, err := jsonstore.Open(path, entities.NewLeads)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewLeadService(repository.NewLeadRepository(store), logger.NewNop())
}

func TestSubmitLead(t *testing.T) {
	svc := newLeadService(t)

	before := time.Now().UnixMilli()
	lead, err := svc.SubmitLead(context.Background(), ports.SubmitLeadRequest{
		Email:     "visitor@example.com",
		Name:      "Visitor",
		Message:   "list my gpt please",
		Timezone:  "America/New_York",
		UserAgent: "Mozilla/5.0 (test)",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(lead.ID)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, lead.CreatedAt, before)
	assert.Equal(t, "visitor@example.com", lead.Email)
	assert.Equal(t, "Mozilla/5.0 (test)", lead.UserAgent)
	assert.Equal(t, "America/New_York", lead.Timezone)
}

func TestListLeadsNewestFirst(t *testing.T) {
	svc := newLeadService(t)
	ctx := context.Background()

	for _, email := range []string{"one@example.com", "two@example.com"} {
		_, err := svc.SubmitLead(ctx, ports.SubmitLeadRequest{Email: email})
		require.NoError(t, err)
	}

	leads, err := svc.ListLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "two@example.com", leads[0].Email)
	assert.Equal(t, "one@example.com", leads[1].Email)
}

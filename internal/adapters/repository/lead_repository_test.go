package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gptdir/core/internal/domain/entities"
	"github.com/gptdir/core/internal/infrastructure/jsonstore"
)

func testLead(email string) *entities.Lead {
	return &entities.Lead{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      "Test Visitor",
		Message:   "please list my gpt",
		UserAgent: "go-test/1.0",
		Timezone:  "Europe/Berlin",
		CreatedAt: time.Now().UnixMilli(),
	}
}

func TestAppendAndListLeads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.json")
	store, err := jsonstore.Open(path, entities.NewLeads)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	repo := NewLeadRepository(store)
	ctx := context.Background()

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for _, email := range emails {
		require.NoError(t, repo.Append(ctx, testLead(email)))
	}

	leads, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, "c@example.com", leads[0].Email, "newest lead first")
	assert.Equal(t, "a@example.com", leads[2].Email)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestLeadsPersistAsBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.json")
	store, err := jsonstore.Open(path, entities.NewLeads)
	require.NoError(t, err)
	repo := NewLeadRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, testLead("first@example.com")))
	require.NoError(t, store.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte('['), data[0], "lead file is a bare JSON array")

	store2, err := jsonstore.Open(path, entities.NewLeads)
	require.NoError(t, err)
	defer store2.Close()
	repo2 := NewLeadRepository(store2)

	leads, err := repo2.List(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "first@example.com", leads[0].Email)
}

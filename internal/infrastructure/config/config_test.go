package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithRequiredEnv(t *testing.T) {
	viper.Reset()
	dataDir := t.TempDir()
	t.Setenv("ADMIN_PIN_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMye")
	t.Setenv("JWT_SECRET", "unit-test-secret")
	t.Setenv("STORE_DATA_DIR", dataDir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "GPTDir", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "unit-test-secret", cfg.JWT.Secret)
	assert.Equal(t, 64, cfg.Store.QueueSize)
	assert.Equal(t, filepath.Join(dataDir, "store.json"), cfg.Store.CatalogPath())
	assert.Equal(t, filepath.Join(dataDir, "leads.json"), cfg.Store.LeadsPath())
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoadRejectsMissingPINHash(t *testing.T) {
	viper.Reset()
	t.Setenv("ADMIN_PIN_HASH", "")
	t.Setenv("JWT_SECRET", "unit-test-secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PIN hash")
}

func TestLoadRejectsDefaultJWTSecret(t *testing.T) {
	viper.Reset()
	t.Setenv("ADMIN_PIN_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMye")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")
}

func TestLoadRejectsBadPort(t *testing.T) {
	viper.Reset()
	t.Setenv("ADMIN_PIN_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMye")
	t.Setenv("JWT_SECRET", "unit-test-secret")
	t.Setenv("SERVER_PORT", "99999")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gptdir/core/internal/domain/entities"
	"github.com/gptdir/core/internal/infrastructure/config"
	"github.com/gptdir/core/internal/infrastructure/logger"
	"github.com/gptdir/core/internal/ports"
)

const testPIN = "4321"

func newAuthService(t *testing.T, expiresIn time.Duration) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPIN), bcrypt.MinCost)
	require.NoError(t, err)

	return NewAuthService(
		config.JWTConfig{Secret: "unit-test-secret", ExpiresIn: expiresIn, Issuer: "gptdir-test"},
		config.AdminConfig{PINHash: string(hash)},
		logger.NewNop(),
	)
}

func TestLoginWithCorrectPIN(t *testing.T) {
	svc := newAuthService(t, time.Hour)

	resp, err := svc.Login(context.Background(), ports.LoginRequest{PIN: testPIN})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.EqualValues(t, 3600, resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestLoginWithWrongPIN(t *testing.T) {
	svc := newAuthService(t, time.Hour)

	_, err := svc.Login(context.Background(), ports.LoginRequest{PIN: "0000"})
	require.ErrorIs(t, err, entities.ErrInvalidPIN)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t, time.Hour)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	svc := newAuthService(t, time.Hour)
	hash, err := bcrypt.GenerateFromPassword([]byte(testPIN), bcrypt.MinCost)
	require.NoError(t, err)
	other := NewAuthService(
		config.JWTConfig{Secret: "some-other-secret", ExpiresIn: time.Hour, Issuer: "gptdir-test"},
		config.AdminConfig{PINHash: string(hash)},
		logger.NewNop(),
	)

	resp, err := other.Login(context.Background(), ports.LoginRequest{PIN: testPIN})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	require.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newAuthService(t, -time.Minute)

	resp, err := svc.Login(context.Background(), ports.LoginRequest{PIN: testPIN})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	require.Error(t, err)
}

package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	cfg := JWTConfig{Secret: []byte("jwt-test-secret"), TokenTTL: time.Hour}

	token, expiresIn, err := GenerateAccessToken(cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(3600), expiresIn)

	require.NoError(t, ValidateAccessToken(cfg, token))
}

func TestValidateExpiredToken(t *testing.T) {
	cfg := JWTConfig{Secret: []byte("jwt-test-secret"), TokenTTL: -time.Minute}

	token, _, err := GenerateAccessToken(cfg)
	require.NoError(t, err)

	assert.Error(t, ValidateAccessToken(cfg, token))
}

func TestValidateWrongSecret(t *testing.T) {
	cfg := JWTConfig{Secret: []byte("jwt-test-secret"), TokenTTL: time.Hour}

	token, _, err := GenerateAccessToken(cfg)
	require.NoError(t, err)

	other := JWTConfig{Secret: []byte("different-secret"), TokenTTL: time.Hour}
	assert.Error(t, ValidateAccessToken(other, token))
}

func TestValidateGarbage(t *testing.T) {
	cfg := JWTConfig{Secret: []byte("jwt-test-secret"), TokenTTL: time.Hour}
	assert.Error(t, ValidateAccessToken(cfg, "not-a-token"))
}

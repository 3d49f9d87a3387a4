package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(testLogger(), newTestStorage(t))
}

func TestAuthInitializeAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)

	initialized, err := auth.IsInitialized(ctx)
	require.NoError(t, err)
	assert.False(t, initialized)

	require.NoError(t, auth.Initialize(ctx, "master-pass", "recovery-key"))

	initialized, err = auth.IsInitialized(ctx)
	require.NoError(t, err)
	assert.True(t, initialized)

	require.NoError(t, auth.Login(ctx, "master-pass"))
	assert.ErrorIs(t, auth.Login(ctx, "wrong-pass"), ErrInvalidCredentials)
}

func TestAuthDoubleInitialize(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)

	require.NoError(t, auth.Initialize(ctx, "master-pass", "recovery-key"))
	assert.ErrorIs(t, auth.Initialize(ctx, "other", "other"), ErrVaultInitialized)
}

func TestAuthLoginBeforeInitialize(t *testing.T) {
	auth := newTestAuth(t)
	assert.ErrorIs(t, auth.Login(context.Background(), "anything"), ErrVaultNotInitialized)
}

func TestAuthResetPassphrase(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)

	require.NoError(t, auth.Initialize(ctx, "master-pass", "recovery-key"))

	assert.ErrorIs(t, auth.ResetPassphrase(ctx, "wrong-recovery", "new-pass"), ErrInvalidCredentials)

	require.NoError(t, auth.ResetPassphrase(ctx, "recovery-key", "new-pass"))
	require.NoError(t, auth.Login(ctx, "new-pass"))
	assert.ErrorIs(t, auth.Login(ctx, "master-pass"), ErrInvalidCredentials)
}

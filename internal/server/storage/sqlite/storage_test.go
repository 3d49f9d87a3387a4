package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Elagoht/passenger-reborn/internal/models"
)

// newTestStorage creates an in-memory storage with migrations applied.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

// newTestCredential builds a credential with fake encrypted fields.
func newTestCredential(platform, url string, at time.Time) *models.Credential {
	return &models.Credential{
		ID:         uuid.NewString(),
		Platform:   platform,
		Identity:   "user@" + platform,
		URL:        url,
		Passphrase: "ZmFrZS1lbmNyeXB0ZWQ=",
		SimHash:    "00000000deadbeef",
		CreatedAt:  at,
		UpdatedAt:  at,
	}
}

func TestNew_InMemory(t *testing.T) {
	s := newTestStorage(t)

	// Migrations created the tables
	var count int
	err := s.DB().QueryRow(`SELECT COUNT(*) FROM credentials`).Scan(&count)
	require.NoError(t, err)
	require.Zero(t, count)
}

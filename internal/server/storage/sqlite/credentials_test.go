package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elagoht/passenger-reborn/internal/models"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
)

func TestCreateGetCredential(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	cred := newTestCredential("github", "https://github.com", now)
	require.NoError(t, s.CreateCredential(ctx, cred, 72))

	got, err := s.GetCredential(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, cred.Platform, got.Platform)
	assert.Equal(t, cred.Passphrase, got.Passphrase)
	assert.Equal(t, cred.SimHash, got.SimHash)
	assert.Empty(t, got.Tags)

	// The first history row is open and carries the strength
	history, err := s.ListHistory(ctx, cred.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 72, history[0].Strength)
	assert.Nil(t, history[0].DeletedAt)
}

func TestGetCredential_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetCredential(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrCredentialNotFound)
}

func TestUpdateCredentialMeta_DoesNotTouchHistory(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	cred := newTestCredential("github", "https://github.com", now)
	require.NoError(t, s.CreateCredential(ctx, cred, 50))

	cred.Note = "work account"
	cred.UpdatedAt = now.Add(time.Hour)
	require.NoError(t, s.UpdateCredentialMeta(ctx, cred))

	got, err := s.GetCredential(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, "work account", got.Note)

	history, err := s.ListHistory(ctx, cred.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRotateCredentialSecret(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rotated := created.Add(48 * time.Hour)

	cred := newTestCredential("github", "https://github.com", created)
	require.NoError(t, s.CreateCredential(ctx, cred, 40))

	cred.Passphrase = "bmV3LWVuY3J5cHRlZA=="
	cred.SimHash = "0000000012345678"
	closed, err := s.RotateCredentialSecret(ctx, cred, 90, rotated)
	require.NoError(t, err)
	require.NotNil(t, closed)
	assert.Equal(t, 40, closed.Strength)
	require.NotNil(t, closed.DeletedAt)
	assert.Equal(t, rotated.Unix(), closed.DeletedAt.Unix())

	// Exactly one open row remains, carrying the new strength
	history, err := s.ListHistory(ctx, cred.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	var open []*models.PassphraseHistory
	for _, entry := range history {
		if entry.DeletedAt == nil {
			open = append(open, entry)
		}
	}
	require.Len(t, open, 1)
	assert.Equal(t, 90, open[0].Strength)
}

func TestRotateCredentialSecret_NotFound(t *testing.T) {
	s := newTestStorage(t)

	cred := newTestCredential("github", "https://github.com", time.Now())
	_, err := s.RotateCredentialSecret(context.Background(), cred, 10, time.Now())
	assert.ErrorIs(t, err, storage.ErrCredentialNotFound)
}

func TestDeleteCredential(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	deleted := created.Add(24 * time.Hour)

	cred := newTestCredential("github", "https://github.com", created)
	require.NoError(t, s.CreateCredential(ctx, cred, 65))

	closed, err := s.DeleteCredential(ctx, cred.ID, deleted)
	require.NoError(t, err)
	require.NotNil(t, closed)
	assert.Equal(t, 65, closed.Strength)

	_, err = s.GetCredential(ctx, cred.ID)
	assert.ErrorIs(t, err, storage.ErrCredentialNotFound)

	// History survives the credential, soft-closed
	history, err := s.ListHistory(ctx, cred.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].DeletedAt)
}

func TestDeleteCredential_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.DeleteCredential(context.Background(), "missing", time.Now())
	assert.ErrorIs(t, err, storage.ErrCredentialNotFound)
}

func TestListCredentialSecrets(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := newTestCredential("github", "https://github.com", now)
	second := newTestCredential("gitlab", "https://gitlab.com", now)
	require.NoError(t, s.CreateCredential(ctx, first, 10))
	require.NoError(t, s.CreateCredential(ctx, second, 20))

	secrets, err := s.ListCredentialSecrets(ctx)
	require.NoError(t, err)
	assert.Len(t, secrets, 2)
}

func TestListCredentialsByPlatformURL(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	matching := newTestCredential("github", "https://github.com", now)
	other := newTestCredential("gitlab", "https://gitlab.com", now)
	require.NoError(t, s.CreateCredential(ctx, matching, 10))
	require.NoError(t, s.CreateCredential(ctx, other, 10))

	found, err := s.ListCredentialsByPlatformURL(ctx, "github", "https://github.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, matching.ID, found[0].ID)
}

func TestIncrementCopiedCount(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	cred := newTestCredential("github", "https://github.com", time.Now().UTC())
	require.NoError(t, s.CreateCredential(ctx, cred, 10))

	require.NoError(t, s.IncrementCopiedCount(ctx, cred.ID))
	require.NoError(t, s.IncrementCopiedCount(ctx, cred.ID))

	got, err := s.GetCredential(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CopiedCount)

	assert.ErrorIs(t, s.IncrementCopiedCount(ctx, "missing"), storage.ErrCredentialNotFound)
}

func TestCredentialTags(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	cred := newTestCredential("github", "https://github.com", time.Now().UTC())
	require.NoError(t, s.CreateCredential(ctx, cred, 10))

	tag := &models.Tag{ID: uuid.NewString(), Name: "work", Color: "#00FF00"}
	require.NoError(t, s.CreateTag(ctx, tag))

	require.NoError(t, s.AddTagToCredential(ctx, cred.ID, tag.ID))
	// Linking twice is a no-op
	require.NoError(t, s.AddTagToCredential(ctx, cred.ID, tag.ID))

	got, err := s.GetCredential(ctx, cred.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "work", got.Tags[0].Name)

	require.NoError(t, s.RemoveTagFromCredential(ctx, cred.ID, tag.ID))
	got, err = s.GetCredential(ctx, cred.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)

	assert.ErrorIs(t, s.AddTagToCredential(ctx, cred.ID, "missing-tag"), storage.ErrTagNotFound)
	assert.ErrorIs(t, s.AddTagToCredential(ctx, "missing-cred", tag.ID), storage.ErrCredentialNotFound)
}

func TestListAllHistory_Ordered(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	first := newTestCredential("a", "https://a.example", base)
	second := newTestCredential("b", "https://b.example", base.Add(time.Hour))
	require.NoError(t, s.CreateCredential(ctx, first, 10))
	require.NoError(t, s.CreateCredential(ctx, second, 20))

	history, err := s.ListAllHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].CredentialID)
	assert.Equal(t, second.ID, history[1].CredentialID)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elagoht/passenger-reborn/internal/crypto"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
	"github.com/Elagoht/passenger-reborn/internal/server/storage/sqlite"
	"github.com/Elagoht/passenger-reborn/internal/strength"
)

func newCredentialEnv(t *testing.T) (*CredentialService, *sqlite.Storage) {
	t.Helper()

	st := newTestStorage(t)
	stats := NewStatsService(testLogger(), st)
	svc := NewCredentialService(testLogger(), st, stats, testCipherKey(t))
	svc.now = fixedClock(t, "2026-08-30T12:00:00Z")

	return svc, st
}

func testParams() CredentialParams {
	return CredentialParams{
		Platform:   "GitHub",
		Identity:   "octocat",
		Passphrase: "Tr0ub4dor&3",
		URL:        "https://github.com",
		Note:       "work account",
		Icon:       4,
	}
}

func TestCredentialCreate(t *testing.T) {
	ctx := context.Background()
	svc, st := newCredentialEnv(t)

	cred, err := svc.Create(ctx, testParams())
	require.NoError(t, err)
	require.NotEmpty(t, cred.ID)

	// stored blob is encrypted, not the plaintext
	assert.NotEqual(t, "Tr0ub4dor&3", cred.Passphrase)
	plaintext, err := crypto.DecryptFromBase64(cred.Passphrase, testCipherKey(t))
	require.NoError(t, err)
	assert.Equal(t, "Tr0ub4dor&3", string(plaintext))

	_, err = crypto.ParseFingerprintHex(cred.SimHash)
	require.NoError(t, err)

	history, err := st.ListHistory(ctx, cred.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].DeletedAt)
	assert.Equal(t, strength.Evaluate("Tr0ub4dor&3"), history[0].Strength)

	cache, err := st.ListStrengthCache(ctx)
	require.NoError(t, err)
	require.Len(t, cache, 1)
	assert.Equal(t, "2026-08-30", cache[0].Date)
	assert.Equal(t, 1, cache[0].Count)
	assert.Equal(t, strength.Evaluate("Tr0ub4dor&3"), cache[0].Sum)
}

func TestCredentialCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCredentialEnv(t)

	_, err := svc.Create(ctx, testParams())
	require.NoError(t, err)

	_, err = svc.Create(ctx, testParams())
	assert.ErrorIs(t, err, ErrDuplicateCredential)

	// same platform and URL with a different secret is fine
	other := testParams()
	other.Passphrase = "A-Different-Secret-42"
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)
}

func TestCredentialUpdateMetadataOnly(t *testing.T) {
	ctx := context.Background()
	svc, st := newCredentialEnv(t)

	cred, err := svc.Create(ctx, testParams())
	require.NoError(t, err)

	params := testParams()
	params.Note = "renamed"
	params.Passphrase = ""
	updated, err := svc.Update(ctx, cred.ID, params)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Note)

	// resubmitting the same secret is not a rotation either
	params.Passphrase = "Tr0ub4dor&3"
	_, err = svc.Update(ctx, cred.ID, params)
	require.NoError(t, err)

	history, err := st.ListHistory(ctx, cred.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCredentialRotation(t *testing.T) {
	ctx := context.Background()
	svc, st := newCredentialEnv(t)

	cred, err := svc.Create(ctx, testParams())
	require.NoError(t, err)

	params := testParams()
	params.Passphrase = "N3w&Stronger#Secret!"
	updated, err := svc.Update(ctx, cred.ID, params)
	require.NoError(t, err)

	plaintext, err := crypto.DecryptFromBase64(updated.Passphrase, testCipherKey(t))
	require.NoError(t, err)
	assert.Equal(t, "N3w&Stronger#Secret!", string(plaintext))

	history, err := st.ListHistory(ctx, cred.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	open := 0
	for _, row := range history {
		if row.DeletedAt == nil {
			open++
			assert.Equal(t, strength.Evaluate("N3w&Stronger#Secret!"), row.Strength)
		}
	}
	assert.Equal(t, 1, open)

	// the rotation swapped the score without changing the population
	cache, err := st.ListStrengthCache(ctx)
	require.NoError(t, err)
	require.Len(t, cache, 1)
	assert.Equal(t, 1, cache[0].Count)
	assert.Equal(t, strength.Evaluate("N3w&Stronger#Secret!"), cache[0].Sum)
}

func TestCredentialDelete(t *testing.T) {
	ctx := context.Background()
	svc, st := newCredentialEnv(t)

	cred, err := svc.Create(ctx, testParams())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, cred.ID))

	_, err = svc.Get(ctx, cred.ID)
	assert.ErrorIs(t, err, storage.ErrCredentialNotFound)

	// history outlives the credential, soft-closed
	history, err := st.ListHistory(ctx, cred.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.NotNil(t, history[0].DeletedAt)

	cache, err := st.ListStrengthCache(ctx)
	require.NoError(t, err)
	require.Len(t, cache, 1)
	assert.Equal(t, 0, cache[0].Count)
	assert.Equal(t, 0, cache[0].Sum)
}

func TestRotateAndDeleteSurviveMissingHistoryRow(t *testing.T) {
	ctx := context.Background()
	svc, st := newCredentialEnv(t)

	cred, err := svc.Create(ctx, testParams())
	require.NoError(t, err)

	// close the open history row out of band, as a corrupted DB would
	_, err = st.DB().ExecContext(ctx,
		`UPDATE passphrase_history SET deleted_at = created_at WHERE credential_id = ?`, cred.ID)
	require.NoError(t, err)

	params := testParams()
	params.Passphrase = "correct-horse-battery-staple"
	_, err = svc.Update(ctx, cred.ID, params)
	require.NoError(t, err)

	// rotation opened a fresh row; close it again before deleting
	_, err = st.DB().ExecContext(ctx,
		`UPDATE passphrase_history SET deleted_at = created_at WHERE credential_id = ?`, cred.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, cred.ID))
}

func TestCredentialDeleteNotFound(t *testing.T) {
	svc, _ := newCredentialEnv(t)
	err := svc.Delete(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, storage.ErrCredentialNotFound)
}

func TestRevealPassphrase(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCredentialEnv(t)

	cred, err := svc.Create(ctx, testParams())
	require.NoError(t, err)

	plaintext, err := svc.RevealPassphrase(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tr0ub4dor&3", plaintext)

	got, err := svc.Get(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CopiedCount)
}

func TestSimilarCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCredentialEnv(t)

	target, err := svc.Create(ctx, testParams())
	require.NoError(t, err)

	// identical secret on another platform: distance zero
	twin := testParams()
	twin.Platform = "GitLab"
	twin.URL = "https://gitlab.com"
	twinCred, err := svc.Create(ctx, twin)
	require.NoError(t, err)

	unrelated := testParams()
	unrelated.Platform = "Bank"
	unrelated.URL = "https://bank.example"
	unrelated.Passphrase = "teapot sunrise 9041 jungle"
	_, err = svc.Create(ctx, unrelated)
	require.NoError(t, err)

	similar, err := svc.Similar(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, twinCred.ID, similar[0].Credential.ID)
	assert.Equal(t, 0, similar[0].Distance)
}

func TestCredentialTags(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCredentialEnv(t)

	cred, err := svc.Create(ctx, testParams())
	require.NoError(t, err)

	tag, err := svc.CreateTag(ctx, "work", "#ff8800", 2)
	require.NoError(t, err)

	require.NoError(t, svc.Tag(ctx, cred.ID, tag.ID))
	// attaching twice is a no-op
	require.NoError(t, svc.Tag(ctx, cred.ID, tag.ID))

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, tag.ID, tags[0].ID)

	got, err := svc.Get(ctx, cred.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "work", got.Tags[0].Name)

	require.NoError(t, svc.Untag(ctx, cred.ID, tag.ID))
	got, err = svc.Get(ctx, cred.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

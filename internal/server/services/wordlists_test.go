package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elagoht/passenger-reborn/internal/models"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
	"github.com/Elagoht/passenger-reborn/internal/server/storage/sqlite"
	"github.com/Elagoht/passenger-reborn/internal/wordlist"
)

type wordlistEnv struct {
	svc *WordlistService
	st  *sqlite.Storage
	dir string
}

func newWordlistEnv(t *testing.T) *wordlistEnv {
	t.Helper()

	dir := t.TempDir()
	st := newTestStorage(t)
	svc := NewWordlistService(testLogger(), st, wordlist.NewSource(dir))
	svc.now = fixedClock(t, "2026-08-30T12:00:00Z")

	return &wordlistEnv{svc: svc, st: st, dir: dir}
}

func testMetadata() WordlistMetadata {
	return WordlistMetadata{
		DisplayName:    "Rock Pool",
		Slug:           "rockpool",
		Description:    "common leaked passwords",
		Repository:     "https://example.com/rockpool",
		PublishedBy:    "example",
		SizeUnits:      "MB",
		Year:           2009,
		Size:           12.5,
		MinLength:      4,
		MaxLength:      5,
		TotalFiles:     2,
		TotalPasswords: 4,
	}
}

// writeFiles lays out a valid data directory for testMetadata.
func (e *wordlistEnv) writeFiles(t *testing.T) {
	t.Helper()

	dataDir := filepath.Join(e.dir, "rockpool", "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "4.ticket"), []byte("abcd\nwxyz\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "5.ticket"), []byte("apple\nberry\n"), 0o644))
}

func (e *wordlistEnv) waitStatus(t *testing.T, id string, want models.WordlistStatus) *models.Wordlist {
	t.Helper()

	var result *models.Wordlist
	require.Eventually(t, func() bool {
		wl, err := e.st.GetWordlist(context.Background(), id)
		if err != nil || wl.Status == models.WordlistStatusValidating {
			return false
		}
		result = wl
		return true
	}, 5*time.Second, 10*time.Millisecond)

	require.Equal(t, want, result.Status, "message: %s", result.Message)
	return result
}

func TestWordlistImport(t *testing.T) {
	ctx := context.Background()
	env := newWordlistEnv(t)

	wl, err := env.svc.Import(ctx, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, models.WordlistStatusImported, wl.Status)
	assert.Contains(t, wl.Message, "Wordlist imported")
	assert.Contains(t, wl.Message, "2026-08-30T12:00:00Z")

	_, err = env.svc.Import(ctx, testMetadata())
	assert.ErrorIs(t, err, storage.ErrWordlistExists)
}

func TestWordlistMarkDownloaded(t *testing.T) {
	ctx := context.Background()
	env := newWordlistEnv(t)

	wl, err := env.svc.Import(ctx, testMetadata())
	require.NoError(t, err)

	// data dir missing
	assert.ErrorIs(t, env.svc.MarkDownloaded(ctx, wl.ID), ErrWordlistNotDownloaded)

	env.writeFiles(t)
	require.NoError(t, env.svc.MarkDownloaded(ctx, wl.ID))

	status, _, err := env.svc.Status(ctx, wl.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WordlistStatusDownloaded, status)

	// already downloaded is a no-op
	require.NoError(t, env.svc.MarkDownloaded(ctx, wl.ID))
}

func TestWordlistCancelDownload(t *testing.T) {
	ctx := context.Background()
	env := newWordlistEnv(t)

	wl, err := env.svc.Import(ctx, testMetadata())
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.CancelDownload(ctx, wl.ID), ErrWordlistNotDownloading)

	require.NoError(t, env.st.UpdateWordlistStatus(ctx, wl.ID, models.WordlistStatusDownloading, "test"))
	require.NoError(t, env.svc.CancelDownload(ctx, wl.ID))

	status, message, err := env.svc.Status(ctx, wl.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WordlistStatusFailed, status)
	assert.Contains(t, message, "cancelled")
}

func TestWordlistValidateSuccess(t *testing.T) {
	ctx := context.Background()
	env := newWordlistEnv(t)
	env.writeFiles(t)

	wl, err := env.svc.Import(ctx, testMetadata())
	require.NoError(t, err)

	// files must be on disk first
	assert.ErrorIs(t, env.svc.Validate(ctx, wl.ID), ErrWordlistNotDownloaded)

	require.NoError(t, env.svc.MarkDownloaded(ctx, wl.ID))
	require.NoError(t, env.svc.Validate(ctx, wl.ID))

	validated := env.waitStatus(t, wl.ID, models.WordlistStatusValidated)
	assert.Contains(t, validated.Message, "Validated 2 files")
}

func TestWordlistValidateWrongLineLength(t *testing.T) {
	ctx := context.Background()
	env := newWordlistEnv(t)
	env.writeFiles(t)

	dataDir := filepath.Join(env.dir, "rockpool", "data")
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "4.ticket"), []byte("toolong\n"), 0o644))

	wl, err := env.svc.Import(ctx, testMetadata())
	require.NoError(t, err)
	require.NoError(t, env.svc.MarkDownloaded(ctx, wl.ID))
	require.NoError(t, env.svc.Validate(ctx, wl.ID))

	failed := env.waitStatus(t, wl.ID, models.WordlistStatusFailed)
	assert.Contains(t, failed.Message, "Validation failed")
}

func TestWordlistValidateUnsorted(t *testing.T) {
	ctx := context.Background()
	env := newWordlistEnv(t)
	env.writeFiles(t)

	dataDir := filepath.Join(env.dir, "rockpool", "data")
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "4.ticket"), []byte("zzzz\naaaa\n"), 0o644))

	wl, err := env.svc.Import(ctx, testMetadata())
	require.NoError(t, err)
	require.NoError(t, env.svc.MarkDownloaded(ctx, wl.ID))
	require.NoError(t, env.svc.Validate(ctx, wl.ID))

	failed := env.waitStatus(t, wl.ID, models.WordlistStatusFailed)
	assert.Contains(t, failed.Message, "not sorted")
}

func TestWordlistValidateFileCountMismatch(t *testing.T) {
	ctx := context.Background()
	env := newWordlistEnv(t)
	env.writeFiles(t)

	meta := testMetadata()
	meta.TotalFiles = 3
	wl, err := env.svc.Import(ctx, meta)
	require.NoError(t, err)
	require.NoError(t, env.svc.MarkDownloaded(ctx, wl.ID))
	require.NoError(t, env.svc.Validate(ctx, wl.ID))

	failed := env.waitStatus(t, wl.ID, models.WordlistStatusFailed)
	assert.Contains(t, failed.Message, "metadata declares 3")
}

func TestWordlistDelete(t *testing.T) {
	ctx := context.Background()
	env := newWordlistEnv(t)

	wl, err := env.svc.Import(ctx, testMetadata())
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, wl.ID))

	_, err = env.svc.Get(ctx, wl.ID)
	assert.ErrorIs(t, err, storage.ErrWordlistNotFound)
}

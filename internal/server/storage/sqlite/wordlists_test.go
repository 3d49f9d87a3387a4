package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elagoht/passenger-reborn/internal/models"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
)

func TestWordlistCRUD(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	wl := newTestWordlist(t, s, models.WordlistStatusImported)

	got, err := s.GetWordlist(ctx, wl.ID)
	require.NoError(t, err)
	assert.Equal(t, wl.Slug, got.Slug)
	assert.Equal(t, models.WordlistStatusImported, got.Status)

	require.NoError(t, s.UpdateWordlistStatus(ctx, wl.ID, models.WordlistStatusValidated, "validated"))
	got, err = s.GetWordlist(ctx, wl.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WordlistStatusValidated, got.Status)
	assert.Equal(t, "validated", got.Message)

	require.NoError(t, s.DeleteWordlist(ctx, wl.ID))
	_, err = s.GetWordlist(ctx, wl.ID)
	assert.ErrorIs(t, err, storage.ErrWordlistNotFound)
}

func TestDeleteWordlist_ReferencedByAnalysis(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	wl := newTestWordlist(t, s, models.WordlistStatusValidated)
	require.NoError(t, s.CreateAnalysis(ctx, &models.Analysis{
		ID:         "an-1",
		WordlistID: wl.ID,
		Status:     models.AnalysisStatusIdle,
		CreatedAt:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}))

	err := s.DeleteWordlist(ctx, wl.ID)
	assert.ErrorIs(t, err, storage.ErrWordlistInUse)

	// the wordlist row survives
	_, err = s.GetWordlist(ctx, wl.ID)
	require.NoError(t, err)
}

func TestCreateWordlist_DuplicateSlug(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	wl := newTestWordlist(t, s, models.WordlistStatusImported)

	duplicate := *wl
	duplicate.ID = wl.ID + "-2"
	err := s.CreateWordlist(ctx, &duplicate)
	assert.ErrorIs(t, err, storage.ErrWordlistExists)
}

func TestListWordlistsByStatus(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	validated := newTestWordlist(t, s, models.WordlistStatusValidated)
	newTestWordlist(t, s, models.WordlistStatusImported)

	found, err := s.ListWordlistsByStatus(ctx, models.WordlistStatusValidated)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, validated.ID, found[0].ID)

	all, err := s.ListWordlists(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

package storage

import (
	"context"

	"github.com/Elagoht/passenger-reborn/internal/models"
)

// WordlistStorage defines persistence for wordlist metadata.
type WordlistStorage interface {
	// CreateWordlist inserts imported metadata.
	// Returns ErrWordlistExists on a slug collision.
	CreateWordlist(ctx context.Context, wl *models.Wordlist) error

	// GetWordlist returns one wordlist.
	GetWordlist(ctx context.Context, id string) (*models.Wordlist, error)

	// ListWordlists returns all wordlists.
	ListWordlists(ctx context.Context) ([]*models.Wordlist, error)

	// ListWordlistsByStatus returns wordlists in one lifecycle state.
	ListWordlistsByStatus(ctx context.Context, status models.WordlistStatus) ([]*models.Wordlist, error)

	// UpdateWordlistStatus sets status and a timestamped message.
	UpdateWordlistStatus(ctx context.Context, id string, status models.WordlistStatus, message string) error

	// DeleteWordlist removes the metadata row.
	DeleteWordlist(ctx context.Context, id string) error
}

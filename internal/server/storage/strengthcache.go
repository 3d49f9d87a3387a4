package storage

import (
	"context"

	"github.com/Elagoht/passenger-reborn/internal/models"
)

// StrengthCacheStorage defines persistence for the day-bucketed cumulative
// strength cache.
type StrengthCacheStorage interface {
	// ApplyStrengthDelta adds sumDelta/countDelta to every cache row with
	// date >= date (YYYY-MM-DD). When no row exists for that exact day one
	// is created first, seeded from the latest earlier day, so the day's
	// cumulative population stays correct. The whole propagation is one
	// transaction: readers never observe a partially-updated range.
	ApplyStrengthDelta(ctx context.Context, date string, sumDelta, countDelta int) error

	// ListStrengthCache returns all cache rows ordered by date.
	ListStrengthCache(ctx context.Context) ([]models.StrengthCacheEntry, error)

	// ReplaceStrengthCache atomically swaps the whole cache for entries.
	ReplaceStrengthCache(ctx context.Context, entries []models.StrengthCacheEntry) error
}

// SettingStorage is a small key/value store for vault-level state such as
// the master passphrase hash.
type SettingStorage interface {
	// GetSetting returns a value or ErrSettingNotFound.
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting inserts or overwrites a value.
	SetSetting(ctx context.Context, key, value string) error
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Elagoht/passenger-reborn/internal/models"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
)

// ApplyStrengthDelta adds sumDelta/countDelta to every cache row on or after
// date, creating the row for that exact day first when it is missing. The
// created row is seeded from the latest earlier day so it starts with the
// correct cumulative population. One transaction end to end: a concurrent
// reader sees either none or all of the propagation.
func (s *Storage) ApplyStrengthDelta(ctx context.Context, date string, sumDelta, countDelta int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var prevSum, prevCount int
		err := tx.QueryRowContext(ctx, `
			SELECT sum, count FROM strength_cache
			WHERE date < ?
			ORDER BY date DESC
			LIMIT 1
		`, date).Scan(&prevSum, &prevCount)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to read previous cache day: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO strength_cache (id, date, sum, count)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(date) DO NOTHING
		`, uuid.NewString(), date, prevSum, prevCount); err != nil {
			return fmt.Errorf("failed to create cache day: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE strength_cache
			SET sum = sum + ?, count = count + ?
			WHERE date >= ?
		`, sumDelta, countDelta, date); err != nil {
			return fmt.Errorf("failed to propagate cache delta: %w", err)
		}

		return nil
	})
}

// ListStrengthCache returns all cache rows ordered by date.
func (s *Storage) ListStrengthCache(ctx context.Context) ([]models.StrengthCacheEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, sum, count FROM strength_cache ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query strength cache: %w", err)
	}
	defer rows.Close()

	var entries []models.StrengthCacheEntry
	for rows.Next() {
		var entry models.StrengthCacheEntry
		if err := rows.Scan(&entry.ID, &entry.Date, &entry.Sum, &entry.Count); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ReplaceStrengthCache atomically swaps the whole cache for entries.
func (s *Storage) ReplaceStrengthCache(ctx context.Context, entries []models.StrengthCacheEntry) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM strength_cache`); err != nil {
			return fmt.Errorf("failed to clear strength cache: %w", err)
		}

		for _, entry := range entries {
			id := entry.ID
			if id == "" {
				id = uuid.NewString()
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO strength_cache (id, date, sum, count)
				VALUES (?, ?, ?, ?)
			`, id, entry.Date, entry.Sum, entry.Count); err != nil {
				return fmt.Errorf("failed to insert cache entry: %w", err)
			}
		}

		return nil
	})
}

// GetSetting returns a settings value or ErrSettingNotFound.
func (s *Storage) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting: %w", err)
	}
	return value, nil
}

// SetSetting inserts or overwrites a settings value.
func (s *Storage) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting: %w", err)
	}
	return nil
}

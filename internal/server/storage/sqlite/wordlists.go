package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Elagoht/passenger-reborn/internal/models"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
)

const wordlistColumns = `
	id, display_name, slug, description, repository, source,
	published_by, adapted_by, year, size, size_units,
	min_length, max_length, total_files, total_passwords, status, message
`

// CreateWordlist inserts imported metadata.
func (s *Storage) CreateWordlist(ctx context.Context, wl *models.Wordlist) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wordlists (`+wordlistColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		wl.ID,
		wl.DisplayName,
		wl.Slug,
		wl.Description,
		wl.Repository,
		wl.Source,
		wl.PublishedBy,
		wl.AdaptedBy,
		wl.Year,
		wl.Size,
		wl.SizeUnits,
		wl.MinLength,
		wl.MaxLength,
		wl.TotalFiles,
		wl.TotalPasswords,
		wl.Status,
		wl.Message,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrWordlistExists
		}
		return fmt.Errorf("failed to insert wordlist: %w", err)
	}
	return nil
}

// GetWordlist returns one wordlist.
func (s *Storage) GetWordlist(ctx context.Context, id string) (*models.Wordlist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+wordlistColumns+` FROM wordlists WHERE id = ?`, id)

	wl, err := scanWordlist(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrWordlistNotFound
		}
		return nil, err
	}

	return wl, nil
}

// ListWordlists returns all wordlists.
func (s *Storage) ListWordlists(ctx context.Context) ([]*models.Wordlist, error) {
	return s.queryWordlists(ctx,
		`SELECT `+wordlistColumns+` FROM wordlists ORDER BY display_name ASC`)
}

// ListWordlistsByStatus returns wordlists in one lifecycle state.
func (s *Storage) ListWordlistsByStatus(ctx context.Context, status models.WordlistStatus) ([]*models.Wordlist, error) {
	return s.queryWordlists(ctx,
		`SELECT `+wordlistColumns+` FROM wordlists WHERE status = ? ORDER BY display_name ASC`,
		status)
}

// UpdateWordlistStatus sets status and message.
func (s *Storage) UpdateWordlistStatus(ctx context.Context, id string, status models.WordlistStatus, message string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE wordlists SET status = ?, message = ? WHERE id = ?`,
		status, message, id)
	if err != nil {
		return fmt.Errorf("failed to update wordlist status: %w", err)
	}
	return rowsAffectedOr(result, storage.ErrWordlistNotFound)
}

// DeleteWordlist removes the metadata row. Analyses keep a foreign key to
// their wordlist, so a referenced wordlist cannot be deleted.
func (s *Storage) DeleteWordlist(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var refs int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM analyses WHERE wordlist_id = ?`, id).Scan(&refs)
		if err != nil {
			return fmt.Errorf("failed to count referencing analyses: %w", err)
		}
		if refs > 0 {
			return storage.ErrWordlistInUse
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM wordlists WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete wordlist: %w", err)
		}
		return rowsAffectedOr(result, storage.ErrWordlistNotFound)
	})
}

func (s *Storage) queryWordlists(ctx context.Context, query string, args ...any) ([]*models.Wordlist, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wordlists: %w", err)
	}
	defer rows.Close()

	var wordlists []*models.Wordlist
	for rows.Next() {
		wl, err := scanWordlist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wordlist: %w", err)
		}
		wordlists = append(wordlists, wl)
	}

	return wordlists, rows.Err()
}

func scanWordlist(row rowScanner) (*models.Wordlist, error) {
	var wl models.Wordlist
	err := row.Scan(
		&wl.ID,
		&wl.DisplayName,
		&wl.Slug,
		&wl.Description,
		&wl.Repository,
		&wl.Source,
		&wl.PublishedBy,
		&wl.AdaptedBy,
		&wl.Year,
		&wl.Size,
		&wl.SizeUnits,
		&wl.MinLength,
		&wl.MaxLength,
		&wl.TotalFiles,
		&wl.TotalPasswords,
		&wl.Status,
		&wl.Message,
	)
	if err != nil {
		return nil, err
	}
	return &wl, nil
}

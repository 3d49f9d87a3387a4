package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Elagoht/passenger-reborn/internal/models"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
)

// CreateCredential inserts the credential and its first open history row in
// one transaction.
func (s *Storage) CreateCredential(ctx context.Context, cred *models.Credential, strength int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO credentials (
				id, platform, identity, url, note, icon,
				passphrase, sim_hash, copied_count, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			cred.ID,
			cred.Platform,
			cred.Identity,
			cred.URL,
			cred.Note,
			cred.Icon,
			cred.Passphrase,
			cred.SimHash,
			cred.CopiedCount,
			cred.CreatedAt.Unix(),
			cred.UpdatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert credential: %w", err)
		}

		return insertHistory(ctx, tx, cred.ID, strength, cred.CreatedAt)
	})
}

// UpdateCredentialMeta updates the non-secret fields only.
func (s *Storage) UpdateCredentialMeta(ctx context.Context, cred *models.Credential) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE credentials
		SET platform = ?, identity = ?, url = ?, note = ?, icon = ?, updated_at = ?
		WHERE id = ?
	`,
		cred.Platform,
		cred.Identity,
		cred.URL,
		cred.Note,
		cred.Icon,
		cred.UpdatedAt.Unix(),
		cred.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}

	return rowsAffectedOr(result, storage.ErrCredentialNotFound)
}

// RotateCredentialSecret replaces the encrypted blob and fingerprint,
// soft-closes the open history row and opens a new one, all atomically.
func (s *Storage) RotateCredentialSecret(ctx context.Context, cred *models.Credential, strength int, at time.Time) (*models.PassphraseHistory, error) {
	var closed *models.PassphraseHistory

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE credentials
			SET platform = ?, identity = ?, url = ?, note = ?, icon = ?,
			    passphrase = ?, sim_hash = ?, updated_at = ?
			WHERE id = ?
		`,
			cred.Platform,
			cred.Identity,
			cred.URL,
			cred.Note,
			cred.Icon,
			cred.Passphrase,
			cred.SimHash,
			at.Unix(),
			cred.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update credential: %w", err)
		}
		if err := rowsAffectedOr(result, storage.ErrCredentialNotFound); err != nil {
			return err
		}

		closed, err = closeOpenHistory(ctx, tx, cred.ID, at)
		if err != nil {
			return err
		}

		return insertHistory(ctx, tx, cred.ID, strength, at)
	})
	if err != nil {
		return nil, err
	}

	return closed, nil
}

// DeleteCredential removes the credential and soft-closes its open history
// row.
func (s *Storage) DeleteCredential(ctx context.Context, id string, at time.Time) (*models.PassphraseHistory, error) {
	var closed *models.PassphraseHistory

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		closed, err = closeOpenHistory(ctx, tx, id, at)
		if err != nil {
			return err
		}

		// History rows survive the credential so past days keep their
		// population in the strength graph.
		result, err := tx.ExecContext(ctx,
			`DELETE FROM credentials WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete credential: %w", err)
		}
		return rowsAffectedOr(result, storage.ErrCredentialNotFound)
	})
	if err != nil {
		return nil, err
	}

	return closed, nil
}

const credentialColumns = `
	id, platform, identity, url, note, icon,
	passphrase, sim_hash, copied_count, created_at, updated_at
`

// GetCredential returns one credential with its tags.
func (s *Storage) GetCredential(ctx context.Context, id string) (*models.Credential, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE id = ?`, id)

	cred, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCredentialNotFound
		}
		return nil, err
	}

	tags, err := s.listTagsForCredential(ctx, id)
	if err != nil {
		return nil, err
	}
	cred.Tags = tags

	return cred, nil
}

// ListCredentials returns all credentials ordered by creation time.
func (s *Storage) ListCredentials(ctx context.Context) ([]*models.Credential, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	return scanCredentials(rows)
}

// ListCredentialsByPlatformURL returns credentials sharing a platform/url
// pair.
func (s *Storage) ListCredentialsByPlatformURL(ctx context.Context, platform, url string) ([]*models.Credential, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE platform = ? AND url = ?`,
		platform, url)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	return scanCredentials(rows)
}

// ListCredentialSecrets bulk-reads every credential's encrypted blob.
func (s *Storage) ListCredentialSecrets(ctx context.Context) ([]storage.CredentialSecret, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, passphrase FROM credentials`)
	if err != nil {
		return nil, fmt.Errorf("failed to query credential secrets: %w", err)
	}
	defer rows.Close()

	var secrets []storage.CredentialSecret
	for rows.Next() {
		var secret storage.CredentialSecret
		if err := rows.Scan(&secret.ID, &secret.Passphrase); err != nil {
			return nil, fmt.Errorf("failed to scan credential secret: %w", err)
		}
		secrets = append(secrets, secret)
	}

	return secrets, rows.Err()
}

// IncrementCopiedCount bumps the clipboard counter.
func (s *Storage) IncrementCopiedCount(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE credentials SET copied_count = copied_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment copied count: %w", err)
	}
	return rowsAffectedOr(result, storage.ErrCredentialNotFound)
}

// CountCredentials returns the number of stored credentials.
func (s *Storage) CountCredentials(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count credentials: %w", err)
	}
	return count, nil
}

// ListHistory returns a credential's history ordered by creation time.
func (s *Storage) ListHistory(ctx context.Context, credentialID string) ([]*models.PassphraseHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, credential_id, strength, created_at, deleted_at
		FROM passphrase_history
		WHERE credential_id = ?
		ORDER BY created_at ASC
	`, credentialID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanHistoryRows(rows)
}

// ListAllHistory returns every history row ordered by creation time.
func (s *Storage) ListAllHistory(ctx context.Context) ([]*models.PassphraseHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, credential_id, strength, created_at, deleted_at
		FROM passphrase_history
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanHistoryRows(rows)
}

// CreateTag inserts a tag.
func (s *Storage) CreateTag(ctx context.Context, tag *models.Tag) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, color, icon) VALUES (?, ?, ?, ?)`,
		tag.ID, tag.Name, tag.Color, tag.Icon)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

// ListTags returns all tags.
func (s *Storage) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color, icon FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// AddTagToCredential links a tag to a credential.
func (s *Storage) AddTagToCredential(ctx context.Context, credentialID, tagID string) error {
	if err := s.requireTag(ctx, tagID); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO credential_tags (credential_id, tag_id)
		SELECT id, ? FROM credentials WHERE id = ?
	`, tagID, credentialID)
	if err != nil {
		return fmt.Errorf("failed to link tag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check link result: %w", err)
	}
	if affected == 0 {
		// Either the credential is unknown or the link already exists;
		// distinguish them.
		var exists int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM credentials WHERE id = ?`, credentialID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check credential: %w", err)
		}
		if exists == 0 {
			return storage.ErrCredentialNotFound
		}
	}

	return nil
}

// RemoveTagFromCredential unlinks a tag from a credential.
func (s *Storage) RemoveTagFromCredential(ctx context.Context, credentialID, tagID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM credential_tags WHERE credential_id = ? AND tag_id = ?`,
		credentialID, tagID)
	if err != nil {
		return fmt.Errorf("failed to unlink tag: %w", err)
	}
	return nil
}

func (s *Storage) requireTag(ctx context.Context, tagID string) error {
	var exists int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE id = ?`, tagID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check tag: %w", err)
	}
	if exists == 0 {
		return storage.ErrTagNotFound
	}
	return nil
}

func (s *Storage) listTagsForCredential(ctx context.Context, credentialID string) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.color, t.icon
		FROM tags t
		JOIN credential_tags ct ON ct.tag_id = t.id
		WHERE ct.credential_id = ?
		ORDER BY t.name ASC
	`, credentialID)
	if err != nil {
		return nil, fmt.Errorf("failed to query credential tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// insertHistory opens a new history row for a credential.
func insertHistory(ctx context.Context, tx *sql.Tx, credentialID string, strength int, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO passphrase_history (id, credential_id, strength, created_at, deleted_at)
		VALUES (?, ?, ?, ?, NULL)
	`, uuid.NewString(), credentialID, strength, at.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}
	return nil
}

// closeOpenHistory soft-closes the single open history row of a credential
// and returns it. A credential without an open row returns nil.
func closeOpenHistory(ctx context.Context, tx *sql.Tx, credentialID string, at time.Time) (*models.PassphraseHistory, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, credential_id, strength, created_at, deleted_at
		FROM passphrase_history
		WHERE credential_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`, credentialID)

	entry, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE passphrase_history SET deleted_at = ? WHERE id = ?`,
		at.Unix(), entry.ID); err != nil {
		return nil, fmt.Errorf("failed to close history: %w", err)
	}

	deletedAt := at
	entry.DeletedAt = &deletedAt

	return entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*models.Credential, error) {
	var cred models.Credential
	var createdAt, updatedAt int64

	err := row.Scan(
		&cred.ID,
		&cred.Platform,
		&cred.Identity,
		&cred.URL,
		&cred.Note,
		&cred.Icon,
		&cred.Passphrase,
		&cred.SimHash,
		&cred.CopiedCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	cred.CreatedAt = time.Unix(createdAt, 0).UTC()
	cred.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &cred, nil
}

func scanCredentials(rows *sql.Rows) ([]*models.Credential, error) {
	var creds []*models.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

func scanHistory(row rowScanner) (*models.PassphraseHistory, error) {
	var entry models.PassphraseHistory
	var createdAt int64
	var deletedAt sql.NullInt64

	if err := row.Scan(&entry.ID, &entry.CredentialID, &entry.Strength, &createdAt, &deletedAt); err != nil {
		return nil, err
	}

	entry.CreatedAt = time.Unix(createdAt, 0).UTC()
	if deletedAt.Valid {
		t := time.Unix(deletedAt.Int64, 0).UTC()
		entry.DeletedAt = &t
	}

	return &entry, nil
}

func scanHistoryRows(rows *sql.Rows) ([]*models.PassphraseHistory, error) {
	var entries []*models.PassphraseHistory
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// rowsAffectedOr returns notFound when the statement touched no rows.
func rowsAffectedOr(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

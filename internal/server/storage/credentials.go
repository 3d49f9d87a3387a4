package storage

import (
	"context"
	"time"

	"github.com/Elagoht/passenger-reborn/internal/models"
)

// CredentialSecret pairs a credential id with its encrypted passphrase blob.
// The analysis engine bulk-reads these and decrypts them itself.
type CredentialSecret struct {
	ID         string
	Passphrase string
}

// CredentialStorage defines persistence for credentials, their passphrase
// history and their tags.
//
// The exactly-one-open-history invariant is the storage layer's to keep:
// every method that opens a new history row closes the previous open row in
// the same transaction.
type CredentialStorage interface {
	// CreateCredential inserts the credential together with its first
	// open history row carrying strength.
	CreateCredential(ctx context.Context, cred *models.Credential, strength int) error

	// UpdateCredentialMeta updates platform/identity/url/note/icon only.
	// History and cache are untouched; no-op edits must not inflate trend
	// data. Returns ErrCredentialNotFound if the id is unknown.
	UpdateCredentialMeta(ctx context.Context, cred *models.Credential) error

	// RotateCredentialSecret stores the re-encrypted passphrase and
	// fingerprint, soft-closes the open history row and opens a new one
	// with strength, all in one transaction. Returns the closed row so the
	// caller can feed the strength-cache delta.
	RotateCredentialSecret(ctx context.Context, cred *models.Credential, strength int, at time.Time) (*models.PassphraseHistory, error)

	// DeleteCredential removes the credential and soft-closes its open
	// history row. Returns the closed row.
	DeleteCredential(ctx context.Context, id string, at time.Time) (*models.PassphraseHistory, error)

	// GetCredential returns one credential with its tags.
	GetCredential(ctx context.Context, id string) (*models.Credential, error)

	// ListCredentials returns all credentials ordered by creation time.
	ListCredentials(ctx context.Context) ([]*models.Credential, error)

	// ListCredentialsByPlatformURL returns credentials sharing a
	// platform/url pair, used for duplicate detection.
	ListCredentialsByPlatformURL(ctx context.Context, platform, url string) ([]*models.Credential, error)

	// ListCredentialSecrets bulk-reads every credential's encrypted blob.
	ListCredentialSecrets(ctx context.Context) ([]CredentialSecret, error)

	// IncrementCopiedCount bumps the clipboard counter.
	IncrementCopiedCount(ctx context.Context, id string) error

	// ListHistory returns a credential's history ordered by creation time.
	ListHistory(ctx context.Context, credentialID string) ([]*models.PassphraseHistory, error)

	// ListAllHistory returns every history row ordered by creation time,
	// the input of a full strength-cache rebuild.
	ListAllHistory(ctx context.Context) ([]*models.PassphraseHistory, error)

	// CountCredentials returns the number of stored credentials.
	CountCredentials(ctx context.Context) (int, error)

	// CreateTag inserts a tag.
	CreateTag(ctx context.Context, tag *models.Tag) error

	// ListTags returns all tags.
	ListTags(ctx context.Context) ([]models.Tag, error)

	// AddTagToCredential links a tag; linking twice is a no-op.
	AddTagToCredential(ctx context.Context, credentialID, tagID string) error

	// RemoveTagFromCredential unlinks a tag.
	RemoveTagFromCredential(ctx context.Context, credentialID, tagID string) error
}

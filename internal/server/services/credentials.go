package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Elagoht/passenger-reborn/internal/crypto"
	"github.com/Elagoht/passenger-reborn/internal/models"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
	"github.com/Elagoht/passenger-reborn/internal/strength"
)

// DefaultSimilarityThreshold is the maximum fingerprint Hamming distance
// at which two passphrases are reported as alike.
const DefaultSimilarityThreshold = 3

// CredentialStore is the storage surface the credential service needs.
type CredentialStore interface {
	CreateCredential(ctx context.Context, cred *models.Credential, strength int) error
	UpdateCredentialMeta(ctx context.Context, cred *models.Credential) error
	RotateCredentialSecret(ctx context.Context, cred *models.Credential, strength int, at time.Time) (*models.PassphraseHistory, error)
	DeleteCredential(ctx context.Context, id string, at time.Time) (*models.PassphraseHistory, error)
	GetCredential(ctx context.Context, id string) (*models.Credential, error)
	ListCredentials(ctx context.Context) ([]*models.Credential, error)
	ListCredentialsByPlatformURL(ctx context.Context, platform, url string) ([]*models.Credential, error)
	IncrementCopiedCount(ctx context.Context, id string) error
	CreateTag(ctx context.Context, tag *models.Tag) error
	ListTags(ctx context.Context) ([]models.Tag, error)
	AddTagToCredential(ctx context.Context, credentialID, tagID string) error
	RemoveTagFromCredential(ctx context.Context, credentialID, tagID string) error
}

// StrengthRecorder receives strength-score lifecycle events so the cached
// graph stays in step with credential writes.
type StrengthRecorder interface {
	OnStrengthAdded(ctx context.Context, score int, at time.Time) error
	OnStrengthRemoved(ctx context.Context, score int, at time.Time) error
	OnStrengthChanged(ctx context.Context, oldScore, newScore int, at time.Time) error
}

// CredentialParams carries the writable fields of a credential.
type CredentialParams struct {
	Platform   string
	Identity   string
	Passphrase string
	URL        string
	Note       string
	Icon       int
}

// SimilarCredential pairs a credential with its fingerprint distance to
// the reference passphrase.
type SimilarCredential struct {
	Credential *models.Credential
	Distance   int
}

// CredentialService owns the credential lifecycle. Every passphrase write
// goes through the cipher, records a history row, and feeds the strength
// cache with a delta for that day.
type CredentialService struct {
	now       func() time.Time
	logger    *slog.Logger
	store     CredentialStore
	strengths StrengthRecorder
	key       []byte
	threshold int
}

func NewCredentialService(logger *slog.Logger, store CredentialStore, strengths StrengthRecorder, key []byte) *CredentialService {
	return &CredentialService{
		logger:    logger,
		store:     store,
		strengths: strengths,
		key:       key,
		threshold: DefaultSimilarityThreshold,
		now:       time.Now,
	}
}

// Create stores a new credential. The same plaintext for the same platform
// and URL is rejected with ErrDuplicateCredential; the comparison decrypts
// the stored blobs because two encryptions of one plaintext never match
// byte for byte.
func (s *CredentialService) Create(ctx context.Context, params CredentialParams) (*models.Credential, error) {
	if err := s.checkDuplicate(ctx, params); err != nil {
		return nil, err
	}

	encrypted, err := crypto.EncryptToBase64([]byte(params.Passphrase), s.key)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cred := &models.Credential{
		ID:         uuid.NewString(),
		Platform:   params.Platform,
		Identity:   params.Identity,
		Passphrase: encrypted,
		SimHash:    crypto.FingerprintHex(params.Passphrase),
		URL:        params.URL,
		Note:       params.Note,
		Icon:       params.Icon,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	score := strength.Evaluate(params.Passphrase)
	if err := s.store.CreateCredential(ctx, cred, score); err != nil {
		return nil, err
	}

	if err := s.strengths.OnStrengthAdded(ctx, score, now); err != nil {
		return nil, err
	}

	s.logger.Info("credential created", "credential_id", cred.ID, "platform", cred.Platform)
	return cred, nil
}

// Update rewrites the credential's metadata and, when a new passphrase is
// supplied and actually differs from the current plaintext, rotates the
// secret: the open history row closes, a new one opens, and the strength
// cache absorbs the score difference for today.
func (s *CredentialService) Update(ctx context.Context, id string, params CredentialParams) (*models.Credential, error) {
	cred, err := s.store.GetCredential(ctx, id)
	if err != nil {
		return nil, err
	}

	cred.Platform = params.Platform
	cred.Identity = params.Identity
	cred.URL = params.URL
	cred.Note = params.Note
	cred.Icon = params.Icon

	if err := s.store.UpdateCredentialMeta(ctx, cred); err != nil {
		return nil, err
	}

	if params.Passphrase == "" {
		return cred, nil
	}

	current, err := crypto.DecryptFromBase64(cred.Passphrase, s.key)
	if err != nil {
		return nil, err
	}
	if string(current) == params.Passphrase {
		return cred, nil
	}

	encrypted, err := crypto.EncryptToBase64([]byte(params.Passphrase), s.key)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cred.Passphrase = encrypted
	cred.SimHash = crypto.FingerprintHex(params.Passphrase)

	score := strength.Evaluate(params.Passphrase)
	closed, err := s.store.RotateCredentialSecret(ctx, cred, score, now)
	if err != nil {
		return nil, err
	}

	if closed == nil {
		// Every credential keeps exactly one open history row; a missing
		// one means the row was corrupted out of band.
		s.logger.Warn("no open history row at rotation", "credential_id", cred.ID)
		if err := s.strengths.OnStrengthAdded(ctx, score, now); err != nil {
			return nil, err
		}
	} else if err := s.strengths.OnStrengthChanged(ctx, closed.Strength, score, now); err != nil {
		return nil, err
	}

	s.logger.Info("credential passphrase rotated", "credential_id", cred.ID)
	return cred, nil
}

// Delete removes a credential. Its history rows stay behind, soft-closed,
// so past days of the strength graph keep counting it; only today onward
// drops its score.
func (s *CredentialService) Delete(ctx context.Context, id string) error {
	now := s.now()
	closed, err := s.store.DeleteCredential(ctx, id, now)
	if err != nil {
		return err
	}

	if closed == nil {
		s.logger.Warn("no open history row at deletion", "credential_id", id)
	} else if err := s.strengths.OnStrengthRemoved(ctx, closed.Strength, now); err != nil {
		return err
	}

	s.logger.Info("credential deleted", "credential_id", id)
	return nil
}

// Get returns one credential without its plaintext.
func (s *CredentialService) Get(ctx context.Context, id string) (*models.Credential, error) {
	return s.store.GetCredential(ctx, id)
}

// List returns all credentials, plaintext withheld.
func (s *CredentialService) List(ctx context.Context) ([]*models.Credential, error) {
	return s.store.ListCredentials(ctx)
}

// RevealPassphrase decrypts one credential's secret and bumps its copied
// counter. This is the only read path that returns plaintext.
func (s *CredentialService) RevealPassphrase(ctx context.Context, id string) (string, error) {
	cred, err := s.store.GetCredential(ctx, id)
	if err != nil {
		return "", err
	}

	plaintext, err := crypto.DecryptFromBase64(cred.Passphrase, s.key)
	if err != nil {
		return "", err
	}

	if err := s.store.IncrementCopiedCount(ctx, id); err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// Similar returns the credentials whose passphrase fingerprints sit within
// the Hamming threshold of the given credential's, nearest first.
func (s *CredentialService) Similar(ctx context.Context, id string) ([]SimilarCredential, error) {
	target, err := s.store.GetCredential(ctx, id)
	if err != nil {
		return nil, err
	}

	targetHash, err := crypto.ParseFingerprintHex(target.SimHash)
	if err != nil {
		return nil, err
	}

	all, err := s.store.ListCredentials(ctx)
	if err != nil {
		return nil, err
	}

	var similar []SimilarCredential
	for _, cred := range all {
		if cred.ID == id {
			continue
		}

		hash, err := crypto.ParseFingerprintHex(cred.SimHash)
		if err != nil {
			s.logger.Warn("skipping credential with malformed fingerprint", "credential_id", cred.ID)
			continue
		}

		if d := crypto.Distance(targetHash, hash); d <= s.threshold {
			similar = append(similar, SimilarCredential{Credential: cred, Distance: d})
		}
	}

	// nearest first, stable insertion order within a distance
	for i := 1; i < len(similar); i++ {
		for j := i; j > 0 && similar[j].Distance < similar[j-1].Distance; j-- {
			similar[j], similar[j-1] = similar[j-1], similar[j]
		}
	}

	return similar, nil
}

// CreateTag registers a new tag.
func (s *CredentialService) CreateTag(ctx context.Context, name, color string, icon int) (*models.Tag, error) {
	tag := &models.Tag{
		ID:    uuid.NewString(),
		Name:  name,
		Color: color,
		Icon:  icon,
	}
	if err := s.store.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// ListTags returns all tags.
func (s *CredentialService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.store.ListTags(ctx)
}

// Tag attaches a tag to a credential; attaching twice is a no-op.
func (s *CredentialService) Tag(ctx context.Context, credentialID, tagID string) error {
	return s.store.AddTagToCredential(ctx, credentialID, tagID)
}

// Untag detaches a tag from a credential.
func (s *CredentialService) Untag(ctx context.Context, credentialID, tagID string) error {
	return s.store.RemoveTagFromCredential(ctx, credentialID, tagID)
}

func (s *CredentialService) checkDuplicate(ctx context.Context, params CredentialParams) error {
	existing, err := s.store.ListCredentialsByPlatformURL(ctx, params.Platform, params.URL)
	if err != nil {
		return err
	}

	for _, cred := range existing {
		plaintext, err := crypto.DecryptFromBase64(cred.Passphrase, s.key)
		if err != nil {
			s.logger.Warn("skipping undecryptable credential in duplicate check", "credential_id", cred.ID)
			continue
		}
		if string(plaintext) == params.Passphrase {
			return ErrDuplicateCredential
		}
	}

	return nil
}

// dayKey buckets a moment into its UTC calendar day, the granularity of
// the strength cache.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

var _ CredentialStore = (storage.Storage)(nil)

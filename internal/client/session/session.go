// Package session keeps the client's server session in a local BoltDB
// file. The access token is encrypted with a key derived from the master
// passphrase before it is written, so the database alone is not enough to
// talk to the server.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Elagoht/passenger-reborn/internal/crypto"
)

// ErrSessionNotFound indicates that no session has been saved yet.
var ErrSessionNotFound = errors.New("session not found")

var (
	bucketSession = []byte("session")
	sessionKey    = []byte("current")
)

// Session is the stored record. EncryptedToken is base64 ciphertext; use
// Seal and Unseal to move between it and the plaintext token.
type Session struct {
	ServerURL      string `json:"server_url"`
	EncryptedToken string `json:"encrypted_token"`
	ExpiresAt      int64  `json:"expires_at"`
}

// Seal encrypts the token under a key derived from the master passphrase.
func (s *Session) Seal(token, passphrase string) error {
	key, err := crypto.DeriveKey(passphrase)
	if err != nil {
		return fmt.Errorf("failed to derive session key: %w", err)
	}
	encrypted, err := crypto.EncryptToBase64([]byte(token), key)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}
	s.EncryptedToken = encrypted
	return nil
}

// Unseal decrypts the stored token. A wrong passphrase fails the AEAD
// check rather than yielding garbage.
func (s *Session) Unseal(passphrase string) (string, error) {
	key, err := crypto.DeriveKey(passphrase)
	if err != nil {
		return "", fmt.Errorf("failed to derive session key: %w", err)
	}
	token, err := crypto.DecryptFromBase64(s.EncryptedToken, key)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}
	return string(token), nil
}

// Expired reports whether the token's lifetime has passed.
func (s *Session) Expired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}

// Store is the BoltDB-backed session store.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the session database at path with 0600
// permissions.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save stores the session, replacing any previous one.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		if err := tx.Bucket(bucketSession).Put(sessionKey, data); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
}

// Get retrieves the stored session. Returns ErrSessionNotFound if none
// has been saved.
func (s *Store) Get(ctx context.Context) (*Session, error) {
	var sess *Session

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSession).Get(sessionKey)
		if data == nil {
			return ErrSessionNotFound
		}
		sess = &Session{}
		if err := json.Unmarshal(data, sess); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Delete removes the stored session. Deleting a missing session is not an
// error.
func (s *Store) Delete(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSession).Delete(sessionKey)
	})
}

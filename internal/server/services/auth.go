package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Elagoht/passenger-reborn/internal/crypto"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
)

// Settings keys for the single-user vault identity.
const (
	settingMasterHash   = "master_passphrase_hash"
	settingRecoveryHash = "recovery_key_hash"
)

// AuthStore is the storage surface the auth service needs.
type AuthStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// AuthService guards the single-user vault. Only KDF hashes of the master
// passphrase and the recovery key are ever stored.
type AuthService struct {
	logger *slog.Logger
	store  AuthStore
}

func NewAuthService(logger *slog.Logger, store AuthStore) *AuthService {
	return &AuthService{logger: logger, store: store}
}

// IsInitialized reports whether a master passphrase has been set.
func (s *AuthService) IsInitialized(ctx context.Context) (bool, error) {
	_, err := s.store.GetSetting(ctx, settingMasterHash)
	if errors.Is(err, storage.ErrSettingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Initialize sets the master passphrase and recovery key of a fresh vault.
// Fails with ErrVaultInitialized if a master passphrase already exists.
func (s *AuthService) Initialize(ctx context.Context, passphrase, recoveryKey string) error {
	initialized, err := s.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return ErrVaultInitialized
	}

	passphraseHash, err := crypto.HashPassphrase(passphrase)
	if err != nil {
		return err
	}
	recoveryHash, err := crypto.HashPassphrase(recoveryKey)
	if err != nil {
		return err
	}

	if err := s.store.SetSetting(ctx, settingMasterHash, passphraseHash); err != nil {
		return err
	}
	if err := s.store.SetSetting(ctx, settingRecoveryHash, recoveryHash); err != nil {
		return err
	}

	s.logger.Info("vault initialized")
	return nil
}

// Login verifies the master passphrase. A wrong passphrase and an
// uninitialized vault are distinct errors.
func (s *AuthService) Login(ctx context.Context, passphrase string) error {
	return s.verify(ctx, settingMasterHash, passphrase)
}

// ResetPassphrase replaces the master passphrase after verifying the
// recovery key.
func (s *AuthService) ResetPassphrase(ctx context.Context, recoveryKey, newPassphrase string) error {
	if err := s.verify(ctx, settingRecoveryHash, recoveryKey); err != nil {
		return err
	}

	hash, err := crypto.HashPassphrase(newPassphrase)
	if err != nil {
		return err
	}
	if err := s.store.SetSetting(ctx, settingMasterHash, hash); err != nil {
		return err
	}

	s.logger.Info("master passphrase reset via recovery key")
	return nil
}

func (s *AuthService) verify(ctx context.Context, key, value string) error {
	stored, err := s.store.GetSetting(ctx, key)
	if errors.Is(err, storage.ErrSettingNotFound) {
		return ErrVaultNotInitialized
	}
	if err != nil {
		return err
	}

	ok, err := crypto.VerifyPassphrase(value, stored)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	return nil
}

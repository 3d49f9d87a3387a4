package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	// NonceSize is the AES-GCM nonce size (12 bytes, the standard size)
	NonceSize = 12
	// KeySize is the AES-256 key size in bytes
	KeySize = 32
)

// ErrDecryptionFailed indicates that a ciphertext blob is malformed or was
// tampered with. GCM authentication makes this deterministic: a corrupted
// nonce or payload never decrypts to garbage.
var ErrDecryptionFailed = errors.New("decryption failed")

// Encrypt encrypts plaintext with AES-256-GCM.
// Result layout: nonce (12 bytes) + ciphertext + auth tag (16 bytes).
func Encrypt(plaintext, key []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("plaintext cannot be empty")
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// GCM appends the authentication tag to the ciphertext
	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	result := make([]byte, 0, len(nonce)+len(ciphertext))
	result = append(result, nonce...)
	result = append(result, ciphertext...)

	return result, nil
}

// EncryptToBase64 encrypts plaintext and returns the blob base64-encoded,
// the form stored in the credentials table.
func EncryptToBase64(plaintext, key []byte) (string, error) {
	encrypted, err := Encrypt(plaintext, key)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(encrypted), nil
}

// Decrypt decrypts a blob produced by Encrypt.
// Returns ErrDecryptionFailed when the blob is malformed or fails
// authentication.
func Decrypt(encrypted, key []byte) ([]byte, error) {
	if len(encrypted) < NonceSize {
		return nil, fmt.Errorf("%w: encrypted data too short", ErrDecryptionFailed)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := encrypted[:NonceSize]
	ciphertext := encrypted[NonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed or corrupted data", ErrDecryptionFailed)
	}

	return plaintext, nil
}

// DecryptFromBase64 decodes a base64 blob and decrypts it.
func DecryptFromBase64(encryptedBase64 string, key []byte) ([]byte, error) {
	encrypted, err := base64.StdEncoding.DecodeString(encryptedBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64", ErrDecryptionFailed)
	}
	return Decrypt(encrypted, key)
}

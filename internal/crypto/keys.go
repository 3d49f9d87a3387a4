package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DeriveKey derives the process-wide 32-byte encryption key by hashing the
// configured secret with SHA-256. The configured value is never used as key
// material directly; the key is derived once at startup and is read-only
// afterwards.
func DeriveKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("encryption secret cannot be empty")
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:], nil
}

// GeneratePassphrase returns a random 16-character hex passphrase.
func GeneratePassphrase() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

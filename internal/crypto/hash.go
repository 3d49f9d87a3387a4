package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters for one-way hashing of values that must never be
// recovered (the vault master passphrase). The iteration count follows the
// OWASP recommendation for PBKDF2-SHA256.
const (
	PBKDF2Iterations = 600000
	PBKDF2KeyLen     = 32
	PBKDF2SaltSize   = 16
)

// HashPassphrase hashes a value with PBKDF2-SHA256 and a fresh random salt.
// Stored format: "iterations:salt_base64:key_base64", so the iteration count
// can be raised later without invalidating existing hashes.
func HashPassphrase(value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("value cannot be empty")
	}

	salt := make([]byte, PBKDF2SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	derived := pbkdf2.Key([]byte(value), salt, PBKDF2Iterations, PBKDF2KeyLen, sha256.New)

	return fmt.Sprintf("%d:%s:%s",
		PBKDF2Iterations,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(derived),
	), nil
}

// VerifyPassphrase reports whether value matches a hash produced by
// HashPassphrase. The comparison is constant-time.
func VerifyPassphrase(value, storedHash string) (bool, error) {
	parts := strings.Split(storedHash, ":")
	if len(parts) != 3 {
		return false, fmt.Errorf("invalid hash format")
	}

	iterations, err := strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 {
		return false, fmt.Errorf("invalid iteration count in hash")
	}

	salt, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("invalid salt encoding: %w", err)
	}

	expected, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, fmt.Errorf("invalid key encoding: %w", err)
	}

	derived := pbkdf2.Key([]byte(value), salt, iterations, len(expected), sha256.New)

	return subtle.ConstantTimeCompare(derived, expected) == 1, nil
}

package handlers

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig holds the signing material for session tokens.
type JWTConfig struct {
	Secret   []byte
	TokenTTL time.Duration
}

const tokenIssuer = "passenger"

// GenerateAccessToken issues a session token for the vault owner.
// The vault is single-user, so the claims carry no identity beyond the
// issuer and subject.
func GenerateAccessToken(cfg JWTConfig) (string, int64, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
		Subject:   "vault-owner",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, int64(cfg.TokenTTL.Seconds()), nil
}

// ValidateAccessToken checks a session token's signature, expiry and issuer.
func ValidateAccessToken(cfg JWTConfig, tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return fmt.Errorf("invalid token")
	}

	return nil
}

// Package middleware holds the HTTP middleware chain of the vault server.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Elagoht/passenger-reborn/internal/server/handlers"
)

// Auth validates the bearer session token on every request it wraps.
// The vault is single-user, so a valid token is the whole authorization
// story; nothing is added to the request context.
func Auth(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("missing Authorization header", "path", r.URL.Path)
				http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("invalid Authorization header format")
				http.Error(w, "Unauthorized: invalid token format", http.StatusUnauthorized)
				return
			}

			if err := handlers.ValidateAccessToken(jwtConfig, parts[1]); err != nil {
				logger.Warn("invalid access token", "error", err)
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

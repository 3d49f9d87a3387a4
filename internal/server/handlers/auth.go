package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Elagoht/passenger-reborn/internal/server/services"
	"github.com/Elagoht/passenger-reborn/internal/validation"
	"github.com/Elagoht/passenger-reborn/pkg/api"
)

// AuthHandler handles vault initialization and login.
type AuthHandler struct {
	logger    *slog.Logger
	auth      *services.AuthService
	jwtConfig JWTConfig
}

func NewAuthHandler(logger *slog.Logger, auth *services.AuthService, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		logger:    logger,
		auth:      auth,
		jwtConfig: jwtConfig,
	}
}

// Status handles GET /api/v1/auth/status.
// Tells a fresh client whether it should initialize or log in.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	initialized, err := h.auth.IsInitialized(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to check vault status", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(h.logger, w, api.AuthStatusResponse{Initialized: initialized}, http.StatusOK)
}

// Initialize handles POST /api/v1/auth/initialize.
// Sets the master passphrase and recovery key of a fresh vault.
func (h *AuthHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.InitializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidatePassphrase(req.Passphrase); err != nil {
		writeError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.RecoveryKey == "" {
		writeError(h.logger, w, "recovery_key is required", http.StatusBadRequest)
		return
	}

	if err := h.auth.Initialize(ctx, req.Passphrase, req.RecoveryKey); err != nil {
		if errors.Is(err, services.ErrVaultInitialized) {
			writeError(h.logger, w, "vault is already initialized", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to initialize vault", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(h.logger, w, api.MessageResponse{Message: "Vault initialized"}, http.StatusCreated)
}

// Login handles POST /api/v1/auth/login.
// Verifies the master passphrase and issues a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.auth.Login(ctx, req.Passphrase); err != nil {
		switch {
		case errors.Is(err, services.ErrVaultNotInitialized):
			writeError(h.logger, w, "vault is not initialized", http.StatusConflict)
		case errors.Is(err, services.ErrInvalidCredentials):
			h.logger.WarnContext(ctx, "login failed")
			writeError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
		default:
			h.logger.ErrorContext(ctx, "login error", slog.Any("error", err))
			writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	token, expiresIn, err := GenerateAccessToken(h.jwtConfig)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "vault unlocked")
	writeJSON(h.logger, w, api.TokenResponse{AccessToken: token, ExpiresIn: expiresIn}, http.StatusOK)
}

// Reset handles POST /api/v1/auth/reset.
// Replaces the master passphrase after verifying the recovery key.
func (h *AuthHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidatePassphrase(req.NewPassphrase); err != nil {
		writeError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.auth.ResetPassphrase(ctx, req.RecoveryKey, req.NewPassphrase); err != nil {
		switch {
		case errors.Is(err, services.ErrVaultNotInitialized):
			writeError(h.logger, w, "vault is not initialized", http.StatusConflict)
		case errors.Is(err, services.ErrInvalidCredentials):
			h.logger.WarnContext(ctx, "reset failed: wrong recovery key")
			writeError(h.logger, w, "invalid recovery key", http.StatusUnauthorized)
		default:
			h.logger.ErrorContext(ctx, "reset error", slog.Any("error", err))
			writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(h.logger, w, api.MessageResponse{Message: "Master passphrase reset"}, http.StatusOK)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Elagoht/passenger-reborn/internal/models"
	"github.com/Elagoht/passenger-reborn/internal/server/services"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
	"github.com/Elagoht/passenger-reborn/pkg/api"
)

// CredentialsHandler handles credential and tag endpoints.
type CredentialsHandler struct {
	logger *slog.Logger
	creds  *services.CredentialService
}

func NewCredentialsHandler(logger *slog.Logger, creds *services.CredentialService) *CredentialsHandler {
	return &CredentialsHandler{logger: logger, creds: creds}
}

// Create handles POST /api/v1/credentials.
func (h *CredentialsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, ok := h.decodeParams(w, r)
	if !ok {
		return
	}
	if params.Passphrase == "" {
		writeError(h.logger, w, "passphrase is required", http.StatusBadRequest)
		return
	}

	cred, err := h.creds.Create(ctx, params)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateCredential) {
			writeError(h.logger, w, "credential already exists", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create credential", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(h.logger, w, toCredentialResponse(cred), http.StatusCreated)
}

// List handles GET /api/v1/credentials.
func (h *CredentialsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	creds, err := h.creds.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list credentials", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]api.CredentialResponse, 0, len(creds))
	for _, cred := range creds {
		resp = append(resp, toCredentialResponse(cred))
	}

	writeJSON(h.logger, w, resp, http.StatusOK)
}

// Get handles GET /api/v1/credentials/{id}.
func (h *CredentialsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cred, err := h.creds.Get(ctx, r.PathValue("id"))
	if err != nil {
		h.handleError(ctx, w, err, "failed to get credential")
		return
	}

	writeJSON(h.logger, w, toCredentialResponse(cred), http.StatusOK)
}

// Update handles PUT /api/v1/credentials/{id}.
// An empty passphrase in the body keeps the current secret.
func (h *CredentialsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, ok := h.decodeParams(w, r)
	if !ok {
		return
	}

	cred, err := h.creds.Update(ctx, r.PathValue("id"), params)
	if err != nil {
		h.handleError(ctx, w, err, "failed to update credential")
		return
	}

	writeJSON(h.logger, w, toCredentialResponse(cred), http.StatusOK)
}

// Delete handles DELETE /api/v1/credentials/{id}.
func (h *CredentialsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.creds.Delete(ctx, r.PathValue("id")); err != nil {
		h.handleError(ctx, w, err, "failed to delete credential")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Passphrase handles GET /api/v1/credentials/{id}/passphrase.
// Returns the decrypted secret and counts the copy.
func (h *CredentialsHandler) Passphrase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plaintext, err := h.creds.RevealPassphrase(ctx, r.PathValue("id"))
	if err != nil {
		h.handleError(ctx, w, err, "failed to reveal passphrase")
		return
	}

	writeJSON(h.logger, w, api.PassphraseResponse{Passphrase: plaintext}, http.StatusOK)
}

// Similar handles GET /api/v1/credentials/{id}/similar.
func (h *CredentialsHandler) Similar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	similar, err := h.creds.Similar(ctx, r.PathValue("id"))
	if err != nil {
		h.handleError(ctx, w, err, "failed to find similar credentials")
		return
	}

	resp := make([]api.SimilarCredentialResponse, 0, len(similar))
	for _, s := range similar {
		resp = append(resp, api.SimilarCredentialResponse{
			Credential: toCredentialResponse(s.Credential),
			Distance:   s.Distance,
		})
	}

	writeJSON(h.logger, w, resp, http.StatusOK)
}

// CreateTag handles POST /api/v1/tags.
func (h *CredentialsHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeError(h.logger, w, "name is required", http.StatusBadRequest)
		return
	}

	tag, err := h.creds.CreateTag(ctx, req.Name, req.Color, req.Icon)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create tag", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(h.logger, w, toTagResponse(*tag), http.StatusCreated)
}

// ListTags handles GET /api/v1/tags.
func (h *CredentialsHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tags, err := h.creds.ListTags(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tags", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]api.TagResponse, 0, len(tags))
	for _, tag := range tags {
		resp = append(resp, toTagResponse(tag))
	}

	writeJSON(h.logger, w, resp, http.StatusOK)
}

// AddTag handles POST /api/v1/credentials/{id}/tags/{tagID}.
func (h *CredentialsHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.creds.Tag(ctx, r.PathValue("id"), r.PathValue("tagID")); err != nil {
		h.handleError(ctx, w, err, "failed to add tag")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveTag handles DELETE /api/v1/credentials/{id}/tags/{tagID}.
func (h *CredentialsHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.creds.Untag(ctx, r.PathValue("id"), r.PathValue("tagID")); err != nil {
		h.handleError(ctx, w, err, "failed to remove tag")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CredentialsHandler) decodeParams(w http.ResponseWriter, r *http.Request) (services.CredentialParams, bool) {
	var req api.CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return services.CredentialParams{}, false
	}

	if req.Platform == "" {
		writeError(h.logger, w, "platform is required", http.StatusBadRequest)
		return services.CredentialParams{}, false
	}
	if req.Identity == "" {
		writeError(h.logger, w, "identity is required", http.StatusBadRequest)
		return services.CredentialParams{}, false
	}

	return services.CredentialParams{
		Platform:   req.Platform,
		Identity:   req.Identity,
		Passphrase: req.Passphrase,
		URL:        req.URL,
		Note:       req.Note,
		Icon:       req.Icon,
	}, true
}

func (h *CredentialsHandler) handleError(ctx context.Context, w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, storage.ErrCredentialNotFound):
		writeError(h.logger, w, "credential not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrTagNotFound):
		writeError(h.logger, w, "tag not found", http.StatusNotFound)
	case errors.Is(err, services.ErrDuplicateCredential):
		writeError(h.logger, w, "credential already exists", http.StatusConflict)
	default:
		h.logger.ErrorContext(ctx, logMsg, slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
	}
}

func toCredentialResponse(cred *models.Credential) api.CredentialResponse {
	tags := make([]api.TagResponse, 0, len(cred.Tags))
	for _, tag := range cred.Tags {
		tags = append(tags, toTagResponse(tag))
	}

	return api.CredentialResponse{
		CreatedAt:   cred.CreatedAt,
		UpdatedAt:   cred.UpdatedAt,
		ID:          cred.ID,
		Platform:    cred.Platform,
		Identity:    cred.Identity,
		URL:         cred.URL,
		Note:        cred.Note,
		Tags:        tags,
		Icon:        cred.Icon,
		CopiedCount: cred.CopiedCount,
	}
}

func toTagResponse(tag models.Tag) api.TagResponse {
	return api.TagResponse{
		ID:    tag.ID,
		Name:  tag.Name,
		Color: tag.Color,
		Icon:  tag.Icon,
	}
}

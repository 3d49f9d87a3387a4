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
	"github.com/Elagoht/passenger-reborn/internal/validation"
	"github.com/Elagoht/passenger-reborn/pkg/api"
)

// WordlistsHandler handles wordlist lifecycle endpoints.
type WordlistsHandler struct {
	logger    *slog.Logger
	wordlists *services.WordlistService
}

func NewWordlistsHandler(logger *slog.Logger, wordlists *services.WordlistService) *WordlistsHandler {
	return &WordlistsHandler{logger: logger, wordlists: wordlists}
}

// Import handles POST /api/v1/wordlists.
func (h *WordlistsHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ImportWordlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateSlug(req.Slug); err != nil {
		writeError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.MinLength <= 0 || req.MaxLength < req.MinLength {
		writeError(h.logger, w, "invalid length range", http.StatusBadRequest)
		return
	}

	wl, err := h.wordlists.Import(ctx, services.WordlistMetadata{
		DisplayName:    req.DisplayName,
		Slug:           req.Slug,
		Description:    req.Description,
		Repository:     req.Repository,
		Source:         req.Source,
		PublishedBy:    req.PublishedBy,
		AdaptedBy:      req.AdaptedBy,
		SizeUnits:      req.SizeUnits,
		Year:           req.Year,
		Size:           req.Size,
		MinLength:      req.MinLength,
		MaxLength:      req.MaxLength,
		TotalFiles:     req.TotalFiles,
		TotalPasswords: req.TotalPasswords,
	})
	if err != nil {
		if errors.Is(err, storage.ErrWordlistExists) {
			writeError(h.logger, w, "wordlist slug already exists", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to import wordlist", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(h.logger, w, toWordlistResponse(wl), http.StatusCreated)
}

// List handles GET /api/v1/wordlists.
func (h *WordlistsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	wordlists, err := h.wordlists.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list wordlists", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]api.WordlistResponse, 0, len(wordlists))
	for _, wl := range wordlists {
		resp = append(resp, toWordlistResponse(wl))
	}

	writeJSON(h.logger, w, resp, http.StatusOK)
}

// Get handles GET /api/v1/wordlists/{id}.
func (h *WordlistsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	wl, err := h.wordlists.Get(ctx, r.PathValue("id"))
	if err != nil {
		h.handleError(ctx, w, err, "failed to get wordlist")
		return
	}

	writeJSON(h.logger, w, toWordlistResponse(wl), http.StatusOK)
}

// Status handles GET /api/v1/wordlists/{id}/status.
func (h *WordlistsHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, message, err := h.wordlists.Status(ctx, r.PathValue("id"))
	if err != nil {
		h.handleError(ctx, w, err, "failed to get wordlist status")
		return
	}

	writeJSON(h.logger, w, api.WordlistStatusResponse{
		Status:  string(status),
		Message: message,
	}, http.StatusOK)
}

// MarkDownloaded handles POST /api/v1/wordlists/{id}/downloaded.
// Confirms out-of-band placed files and advances the lifecycle.
func (h *WordlistsHandler) MarkDownloaded(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.wordlists.MarkDownloaded(ctx, r.PathValue("id")); err != nil {
		h.handleError(ctx, w, err, "failed to mark wordlist downloaded")
		return
	}

	writeJSON(h.logger, w, api.MessageResponse{Message: "Wordlist marked downloaded"}, http.StatusOK)
}

// Validate handles POST /api/v1/wordlists/{id}/validate.
// The check runs detached; poll the status endpoint for the outcome.
func (h *WordlistsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.wordlists.Validate(ctx, r.PathValue("id")); err != nil {
		h.handleError(ctx, w, err, "failed to start validation")
		return
	}

	writeJSON(h.logger, w, api.MessageResponse{Message: "Validation started"}, http.StatusAccepted)
}

// CancelDownload handles POST /api/v1/wordlists/{id}/cancel.
func (h *WordlistsHandler) CancelDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.wordlists.CancelDownload(ctx, r.PathValue("id")); err != nil {
		h.handleError(ctx, w, err, "failed to cancel download")
		return
	}

	writeJSON(h.logger, w, api.MessageResponse{Message: "Download cancelled"}, http.StatusOK)
}

// Delete handles DELETE /api/v1/wordlists/{id}.
func (h *WordlistsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.wordlists.Delete(ctx, r.PathValue("id")); err != nil {
		h.handleError(ctx, w, err, "failed to delete wordlist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WordlistsHandler) handleError(ctx context.Context, w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, storage.ErrWordlistNotFound):
		writeError(h.logger, w, "wordlist not found", http.StatusNotFound)
	case errors.Is(err, services.ErrWordlistNotDownloaded):
		writeError(h.logger, w, "wordlist files are not on disk", http.StatusConflict)
	case errors.Is(err, services.ErrWordlistNotDownloading):
		writeError(h.logger, w, "wordlist is not downloading", http.StatusConflict)
	case errors.Is(err, services.ErrWordlistBusy):
		writeError(h.logger, w, "wordlist is being validated", http.StatusConflict)
	case errors.Is(err, storage.ErrWordlistInUse):
		writeError(h.logger, w, "wordlist is referenced by an analysis", http.StatusConflict)
	default:
		h.logger.ErrorContext(ctx, logMsg, slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
	}
}

func toWordlistResponse(wl *models.Wordlist) api.WordlistResponse {
	return api.WordlistResponse{
		ID:             wl.ID,
		DisplayName:    wl.DisplayName,
		Slug:           wl.Slug,
		Description:    wl.Description,
		Repository:     wl.Repository,
		Source:         wl.Source,
		PublishedBy:    wl.PublishedBy,
		AdaptedBy:      wl.AdaptedBy,
		SizeUnits:      wl.SizeUnits,
		Status:         string(wl.Status),
		Message:        wl.Message,
		Year:           wl.Year,
		Size:           wl.Size,
		MinLength:      wl.MinLength,
		MaxLength:      wl.MaxLength,
		TotalFiles:     wl.TotalFiles,
		TotalPasswords: wl.TotalPasswords,
	}
}

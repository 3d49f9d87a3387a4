package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Elagoht/passenger-reborn/internal/generator"
	"github.com/Elagoht/passenger-reborn/pkg/api"
)

// GenerateHandler serves passphrase generation.
type GenerateHandler struct {
	logger *slog.Logger
}

func NewGenerateHandler(logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{logger: logger}
}

// Generate handles GET /api/v1/generate.
// The optional length query parameter defaults to 32.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	length := generator.DefaultLength
	if raw := r.URL.Query().Get("length"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(h.logger, w, "length must be an integer", http.StatusBadRequest)
			return
		}
		if parsed > generator.MaxLength {
			writeError(h.logger, w,
				fmt.Sprintf("length must be at most %d", generator.MaxLength),
				http.StatusBadRequest)
			return
		}
		length = parsed
	}

	passphrase, err := generator.Passphrase(length)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate passphrase", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(h.logger, w, api.GeneratedResponse{Passphrase: passphrase}, http.StatusOK)
}

// Alternative handles POST /api/v1/generate/alternative.
// Returns a stronger passphrase that still reads like the input.
func (h *GenerateHandler) Alternative(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.AlternativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Input == "" {
		writeError(h.logger, w, "input is required", http.StatusBadRequest)
		return
	}

	passphrase, err := generator.Alternative(req.Input)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate alternative", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(h.logger, w, api.GeneratedResponse{Passphrase: passphrase}, http.StatusOK)
}

// Package handlers implements the REST surface of the vault.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Elagoht/passenger-reborn/pkg/api"
)

// writeJSON sends a JSON response.
func writeJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// writeError sends a JSON error body with the status text and a detail
// message.
func writeError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	writeJSON(logger, w, api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}, statusCode)
}

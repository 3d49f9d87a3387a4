package handlers

import (
	"log/slog"
	"net/http"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	logger  *slog.Logger
	version string
}

func NewHealthHandler(logger *slog.Logger, version string) *HealthHandler {
	return &HealthHandler{logger: logger, version: version}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.logger, w, map[string]string{
		"status":  "ok",
		"version": h.version,
	}, http.StatusOK)
}

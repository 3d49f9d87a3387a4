package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Elagoht/passenger-reborn/internal/server/services"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
	"github.com/Elagoht/passenger-reborn/pkg/api"
)

// StatsHandler serves the strength graph and vault counters.
type StatsHandler struct {
	logger *slog.Logger
	stats  *services.StatsService
}

func NewStatsHandler(logger *slog.Logger, stats *services.StatsService) *StatsHandler {
	return &StatsHandler{logger: logger, stats: stats}
}

// Graph handles GET /api/v1/stats/strength-graph.
func (h *StatsHandler) Graph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	points, err := h.stats.StrengthGraph(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build strength graph", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]api.GraphPointResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, api.GraphPointResponse{Date: p.Date, Strength: p.Strength})
	}

	writeJSON(h.logger, w, resp, http.StatusOK)
}

// Count handles GET /api/v1/stats/count.
func (h *StatsHandler) Count(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.stats.Count(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count credentials", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(h.logger, w, api.CountResponse{Count: count}, http.StatusOK)
}

// Strength handles GET /api/v1/credentials/{id}/strength.
func (h *StatsHandler) Strength(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	detail, err := h.stats.Strength(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrCredentialNotFound) {
			writeError(h.logger, w, "credential not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get credential strength", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	history := make([]api.StrengthHistoryEntry, 0, len(detail.History))
	for _, row := range detail.History {
		history = append(history, api.StrengthHistoryEntry{
			CreatedAt: row.CreatedAt,
			DeletedAt: row.DeletedAt,
			Strength:  row.Strength,
		})
	}

	writeJSON(h.logger, w, api.StrengthDetailResponse{
		CredentialID: detail.CredentialID,
		Current:      detail.Current,
		History:      history,
	}, http.StatusOK)
}

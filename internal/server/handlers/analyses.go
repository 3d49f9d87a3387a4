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

// AnalysesHandler handles the analysis engine endpoints.
type AnalysesHandler struct {
	logger   *slog.Logger
	analyses *services.AnalysisService
}

func NewAnalysesHandler(logger *slog.Logger, analyses *services.AnalysisService) *AnalysesHandler {
	return &AnalysesHandler{logger: logger, analyses: analyses}
}

// Initialize handles POST /api/v1/analyses.
// Starts a detached run and returns its id right away.
func (h *AnalysesHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.InitializeAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.WordlistID == "" {
		writeError(h.logger, w, "wordlist_id is required", http.StatusBadRequest)
		return
	}

	id, err := h.analyses.Initialize(ctx, req.WordlistID)
	if err != nil {
		h.handleError(ctx, w, err, "failed to initialize analysis")
		return
	}

	writeJSON(h.logger, w, api.InitializeAnalysisResponse{AnalysisID: id}, http.StatusAccepted)
}

// List handles GET /api/v1/analyses.
func (h *AnalysesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	analyses, err := h.analyses.ListReports(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list analyses", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]api.AnalysisResponse, 0, len(analyses))
	for _, a := range analyses {
		resp = append(resp, toAnalysisResponse(a))
	}

	writeJSON(h.logger, w, resp, http.StatusOK)
}

// Report handles GET /api/v1/analyses/{id}.
// Returns the analysis with its matched credentials.
func (h *AnalysesHandler) Report(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.analyses.Report(ctx, r.PathValue("id"))
	if err != nil {
		h.handleError(ctx, w, err, "failed to get analysis report")
		return
	}

	matched := make([]api.CredentialResponse, 0, len(report.MatchedCredentials))
	for i := range report.MatchedCredentials {
		matched = append(matched, toCredentialResponse(&report.MatchedCredentials[i]))
	}

	writeJSON(h.logger, w, api.AnalysisReportResponse{
		AnalysisResponse:   toAnalysisResponse(&report.Analysis),
		MatchedCredentials: matched,
	}, http.StatusOK)
}

// Observe handles GET /api/v1/analyses/{id}/observe.
// The polling endpoint: current logs, parsed progress, active flag.
func (h *AnalysesHandler) Observe(w http.ResponseWriter, r *http.Request) {
	obs := h.analyses.Observe(r.PathValue("id"))

	writeJSON(h.logger, w, api.ObserveResponse{
		ID:       obs.ID,
		Logs:     obs.Logs,
		IsActive: obs.IsActive,
		Progress: api.AnalysisProgressResponse{
			TotalMatched: obs.Progress.TotalMatched,
			TotalChecked: obs.Progress.TotalChecked,
		},
	}, http.StatusOK)
}

// Stop handles POST /api/v1/analyses/{id}/stop.
func (h *AnalysesHandler) Stop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.analyses.Stop(ctx, r.PathValue("id")); err != nil {
		h.handleError(ctx, w, err, "failed to stop analysis")
		return
	}

	writeJSON(h.logger, w, api.MessageResponse{Message: "Analysis stopped"}, http.StatusOK)
}

// AvailableWordlists handles GET /api/v1/analyses/wordlists.
// Lists the validated wordlists a run can use.
func (h *AnalysesHandler) AvailableWordlists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	wordlists, err := h.analyses.AvailableWordlists(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list available wordlists", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]api.WordlistResponse, 0, len(wordlists))
	for _, wl := range wordlists {
		resp = append(resp, toWordlistResponse(wl))
	}

	writeJSON(h.logger, w, resp, http.StatusOK)
}

func (h *AnalysesHandler) handleError(ctx context.Context, w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, storage.ErrAnalysisNotFound):
		writeError(h.logger, w, "analysis not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrWordlistNotFound):
		writeError(h.logger, w, "wordlist not found", http.StatusNotFound)
	case errors.Is(err, services.ErrAnalysisActive):
		writeError(h.logger, w, "an analysis is already running", http.StatusConflict)
	case errors.Is(err, services.ErrAnalysisNotRunning):
		writeError(h.logger, w, "analysis is not running", http.StatusConflict)
	case errors.Is(err, services.ErrWordlistNotDownloaded):
		writeError(h.logger, w, "wordlist is not downloaded", http.StatusConflict)
	case errors.Is(err, services.ErrWordlistNotValidated):
		writeError(h.logger, w, "wordlist is not validated", http.StatusConflict)
	default:
		h.logger.ErrorContext(ctx, logMsg, slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
	}
}

func toAnalysisResponse(a *models.Analysis) api.AnalysisResponse {
	return api.AnalysisResponse{
		CreatedAt:    a.CreatedAt,
		ID:           a.ID,
		WordlistID:   a.WordlistID,
		Status:       string(a.Status),
		Message:      a.Message,
		TotalChecked: a.TotalChecked,
		TotalMatched: a.TotalMatched,
		TookMs:       a.TookMs,
	}
}

package storage

import (
	"context"

	"github.com/Elagoht/passenger-reborn/internal/models"
)

// AnalysisStorage defines persistence for analysis run records.
type AnalysisStorage interface {
	// CreateAnalysis inserts a new run record (normally in IDLE).
	CreateAnalysis(ctx context.Context, analysis *models.Analysis) error

	// UpdateAnalysisStatus sets status and message.
	// Returns ErrAnalysisNotFound if the id is unknown.
	UpdateAnalysisStatus(ctx context.Context, id string, status models.AnalysisStatus, message string) error

	// CompleteAnalysis persists the terminal totals, elapsed time and the
	// matched-credential linkage in one transaction.
	CompleteAnalysis(ctx context.Context, id string, totalChecked, totalMatched int, tookMs int64, message string, matchedIDs []string) error

	// GetAnalysis returns one run record.
	GetAnalysis(ctx context.Context, id string) (*models.Analysis, error)

	// GetAnalysisReport returns a run record with matched credentials.
	GetAnalysisReport(ctx context.Context, id string) (*models.AnalysisReport, error)

	// ListAnalyses returns all run records, newest first.
	ListAnalyses(ctx context.Context) ([]*models.Analysis, error)
}

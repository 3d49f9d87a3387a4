package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Elagoht/passenger-reborn/internal/models"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
)

// CreateAnalysis inserts a new run record.
func (s *Storage) CreateAnalysis(ctx context.Context, analysis *models.Analysis) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (
			id, wordlist_id, status, message,
			total_checked, total_matched, took_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		analysis.ID,
		analysis.WordlistID,
		analysis.Status,
		analysis.Message,
		analysis.TotalChecked,
		analysis.TotalMatched,
		analysis.TookMs,
		analysis.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// UpdateAnalysisStatus sets status and message.
func (s *Storage) UpdateAnalysisStatus(ctx context.Context, id string, status models.AnalysisStatus, message string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, message = ? WHERE id = ?`,
		status, message, id)
	if err != nil {
		return fmt.Errorf("failed to update analysis status: %w", err)
	}
	return rowsAffectedOr(result, storage.ErrAnalysisNotFound)
}

// CompleteAnalysis persists terminal totals and the matched linkage in one
// transaction.
func (s *Storage) CompleteAnalysis(ctx context.Context, id string, totalChecked, totalMatched int, tookMs int64, message string, matchedIDs []string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE analyses
			SET status = ?, message = ?, total_checked = ?, total_matched = ?, took_ms = ?
			WHERE id = ?
		`, models.AnalysisStatusCompleted, message, totalChecked, totalMatched, tookMs, id)
		if err != nil {
			return fmt.Errorf("failed to complete analysis: %w", err)
		}
		if err := rowsAffectedOr(result, storage.ErrAnalysisNotFound); err != nil {
			return err
		}

		for _, credentialID := range matchedIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO analysis_matches (analysis_id, credential_id)
				VALUES (?, ?)
			`, id, credentialID); err != nil {
				return fmt.Errorf("failed to link matched credential: %w", err)
			}
		}

		return nil
	})
}

const analysisColumns = `
	id, wordlist_id, status, message,
	total_checked, total_matched, took_ms, created_at
`

// GetAnalysis returns one run record.
func (s *Storage) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id)

	analysis, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAnalysisNotFound
		}
		return nil, err
	}

	return analysis, nil
}

// GetAnalysisReport returns a run record with its matched credentials.
func (s *Storage) GetAnalysisReport(ctx context.Context, id string) (*models.AnalysisReport, error) {
	analysis, err := s.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+credentialColumns+`
		FROM credentials
		WHERE id IN (SELECT credential_id FROM analysis_matches WHERE analysis_id = ?)
		ORDER BY platform ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query matched credentials: %w", err)
	}
	defer rows.Close()

	matched, err := scanCredentials(rows)
	if err != nil {
		return nil, err
	}

	report := &models.AnalysisReport{Analysis: *analysis}
	for _, cred := range matched {
		tags, err := s.listTagsForCredential(ctx, cred.ID)
		if err != nil {
			return nil, err
		}
		cred.Tags = tags
		report.MatchedCredentials = append(report.MatchedCredentials, *cred)
	}

	return report, nil
}

// ListAnalyses returns all run records, newest first.
func (s *Storage) ListAnalyses(ctx context.Context) ([]*models.Analysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*models.Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, analysis)
	}

	return analyses, rows.Err()
}

func scanAnalysis(row rowScanner) (*models.Analysis, error) {
	var analysis models.Analysis
	var createdAt int64

	err := row.Scan(
		&analysis.ID,
		&analysis.WordlistID,
		&analysis.Status,
		&analysis.Message,
		&analysis.TotalChecked,
		&analysis.TotalMatched,
		&analysis.TookMs,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	analysis.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &analysis, nil
}

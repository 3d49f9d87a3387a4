package models

import "time"

// AnalysisStatus is the lifecycle state of one analysis run.
type AnalysisStatus string

const (
	AnalysisStatusIdle      AnalysisStatus = "IDLE"
	AnalysisStatusRunning   AnalysisStatus = "RUNNING"
	AnalysisStatusCompleted AnalysisStatus = "COMPLETED"
	AnalysisStatusFailed    AnalysisStatus = "FAILED"
)

// Terminal reports whether the status is final.
func (s AnalysisStatus) Terminal() bool {
	return s == AnalysisStatusCompleted || s == AnalysisStatusFailed
}

// Analysis is the record of one brute-force run of all stored credentials
// against a wordlist. Transitions IDLE -> RUNNING -> {COMPLETED | FAILED}
// are driven solely by the analysis engine.
type Analysis struct {
	CreatedAt    time.Time      `json:"created_at"`
	ID           string         `json:"id"`
	WordlistID   string         `json:"wordlist_id"`
	Status       AnalysisStatus `json:"status"`
	Message      string         `json:"message"`
	TotalChecked int            `json:"total_checked"` // TotalChecked wordlist entries scanned over all length files
	TotalMatched int            `json:"total_matched"` // TotalMatched credentials whose secret was found
	TookMs       int64          `json:"took_ms"`
}

// AnalysisReport is an Analysis with the matched credentials attached.
type AnalysisReport struct {
	Analysis
	MatchedCredentials []Credential `json:"matched_credentials"`
}

package api

import "time"

// InitializeAnalysisRequest starts a brute-force run against a wordlist.
type InitializeAnalysisRequest struct {
	WordlistID string `json:"wordlist_id"`
}

// InitializeAnalysisResponse returns the id of the detached run.
type InitializeAnalysisResponse struct {
	AnalysisID string `json:"analysis_id"`
}

// AnalysisResponse is one analysis record.
type AnalysisResponse struct {
	CreatedAt    time.Time `json:"created_at"`
	ID           string    `json:"id"`
	WordlistID   string    `json:"wordlist_id"`
	Status       string    `json:"status"`
	Message      string    `json:"message"`
	TotalChecked int       `json:"total_checked"`
	TotalMatched int       `json:"total_matched"`
	TookMs       int64     `json:"took_ms"`
}

// AnalysisReportResponse is an analysis with the credentials whose secret
// was found in the wordlist.
type AnalysisReportResponse struct {
	AnalysisResponse
	MatchedCredentials []CredentialResponse `json:"matched_credentials"`
}

// AnalysisProgressResponse is the counters parsed out of the run's logs.
type AnalysisProgressResponse struct {
	TotalMatched int `json:"total_matched"`
	TotalChecked int `json:"total_checked"`
}

// ObserveResponse is one polling snapshot of a run.
type ObserveResponse struct {
	ID       string                   `json:"id"`
	Logs     []string                 `json:"logs"`
	Progress AnalysisProgressResponse `json:"progress"`
	IsActive bool                     `json:"is_active"`
}

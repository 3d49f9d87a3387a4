package api

import "time"

// GraphPointResponse is one day of the strength graph.
type GraphPointResponse struct {
	Date     string `json:"date"`     // YYYY-MM-DD
	Strength int    `json:"strength"` // rounded average, 0-100
}

// CountResponse carries the number of stored credentials.
type CountResponse struct {
	Count int `json:"count"`
}

// StrengthHistoryEntry is the score of one past or current secret.
type StrengthHistoryEntry struct {
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	Strength  int        `json:"strength"`
}

// StrengthDetailResponse is the per-credential strength view.
type StrengthDetailResponse struct {
	CredentialID string                 `json:"credential_id"`
	Current      int                    `json:"current"`
	History      []StrengthHistoryEntry `json:"history"`
}

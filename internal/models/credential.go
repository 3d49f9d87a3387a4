package models

import "time"

// Credential represents one stored login.
// Passphrase holds the AES-GCM blob (base64), never the plaintext.
// SimHash is the 64-bit fingerprint of the plaintext (hex), kept so
// near-duplicate secrets can be found without decrypting anything.
type Credential struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	Platform    string    `json:"platform"` // Platform service name (e.g. "GitHub")
	Identity    string    `json:"identity"` // Identity login or email on the platform
	URL         string    `json:"url"`
	Note        string    `json:"note"`
	Passphrase  string    `json:"-"`
	SimHash     string    `json:"-"`
	Tags        []Tag     `json:"tags,omitempty"`
	Icon        int       `json:"icon"`
	CopiedCount int       `json:"copied_count"` // CopiedCount times the secret was copied to clipboard
}

// Tag groups credentials (e.g. "work", "banking").
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  int    `json:"icon"`
}

// PassphraseHistory is an immutable record of one secret generation.
// Exactly one entry per credential is open (DeletedAt == nil) at any time.
// A new entry is appended only when the secret material actually changes;
// metadata-only edits never touch history.
type PassphraseHistory struct {
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	ID           string     `json:"id"`
	CredentialID string     `json:"credential_id"`
	Strength     int        `json:"strength"` // Strength score 0-100
}

// StrengthCacheEntry is a derived day-bucketed aggregate over
// PassphraseHistory: the sum and count of all entries open on Date.
// It is rebuildable at any time and exists only to avoid re-scanning the
// full history on every strength-graph read.
type StrengthCacheEntry struct {
	ID    string `json:"id"`
	Date  string `json:"date"` // Date in YYYY-MM-DD
	Sum   int    `json:"sum"`
	Count int    `json:"count"`
}

// AverageStrength returns the rounded cumulative average for the day,
// or 0 when no credentials were alive.
func (e StrengthCacheEntry) AverageStrength() int {
	if e.Count <= 0 {
		return 0
	}
	// round half away from zero, matching the rebuild path
	return (e.Sum*2 + e.Count) / (e.Count * 2)
}

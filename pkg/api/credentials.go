package api

import "time"

// CredentialRequest is the body of create and update. An empty Passphrase
// on update keeps the current secret.
type CredentialRequest struct {
	Platform   string `json:"platform"`
	Identity   string `json:"identity"`
	Passphrase string `json:"passphrase"`
	URL        string `json:"url"`
	Note       string `json:"note"`
	Icon       int    `json:"icon"`
}

// CredentialResponse is a credential without its secret.
type CredentialResponse struct {
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	ID          string        `json:"id"`
	Platform    string        `json:"platform"`
	Identity    string        `json:"identity"`
	URL         string        `json:"url"`
	Note        string        `json:"note"`
	Tags        []TagResponse `json:"tags,omitempty"`
	Icon        int           `json:"icon"`
	CopiedCount int           `json:"copied_count"`
}

// PassphraseResponse carries a decrypted secret. Requesting it counts as a
// clipboard copy.
type PassphraseResponse struct {
	Passphrase string `json:"passphrase"`
}

// SimilarCredentialResponse pairs a credential with its fingerprint
// distance to the reference secret.
type SimilarCredentialResponse struct {
	Credential CredentialResponse `json:"credential"`
	Distance   int                `json:"distance"`
}

// TagRequest creates a tag.
type TagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  int    `json:"icon"`
}

// TagResponse is one tag.
type TagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  int    `json:"icon"`
}

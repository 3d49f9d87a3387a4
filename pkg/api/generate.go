package api

// AlternativeRequest asks for a look-alike variant of an existing passphrase.
type AlternativeRequest struct {
	Input string `json:"input"`
}

// GeneratedResponse carries a freshly generated passphrase.
type GeneratedResponse struct {
	Passphrase string `json:"passphrase"`
}

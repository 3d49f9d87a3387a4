package api

// InitializeRequest sets up a fresh vault.
type InitializeRequest struct {
	Passphrase  string `json:"passphrase"`
	RecoveryKey string `json:"recovery_key"`
}

// LoginRequest unlocks the vault with the master passphrase.
type LoginRequest struct {
	Passphrase string `json:"passphrase"`
}

// ResetRequest replaces a forgotten master passphrase.
type ResetRequest struct {
	RecoveryKey   string `json:"recovery_key"`
	NewPassphrase string `json:"new_passphrase"`
}

// TokenResponse carries the session token issued on login.
type TokenResponse struct {
	AccessToken string `json:"access_token"` // JWT
	ExpiresIn   int64  `json:"expires_in"`   // seconds
}

// AuthStatusResponse reports whether the vault has been initialized.
type AuthStatusResponse struct {
	Initialized bool `json:"initialized"`
}

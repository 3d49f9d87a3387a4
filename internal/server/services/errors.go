package services

import "errors"

// Conflicting-state and validation errors surfaced to the REST layer.
// Each leaves core state unchanged.
var (
	// ErrAnalysisActive rejects a second initiation while one analysis
	// is running; requests are rejected, never queued.
	ErrAnalysisActive = errors.New("an analysis is already running")

	// ErrAnalysisNotRunning rejects stopping an analysis that is not the
	// currently active one.
	ErrAnalysisNotRunning = errors.New("this analysis is not currently running")

	// ErrWordlistNotDownloaded rejects an analysis against a wordlist
	// whose files are not on disk yet.
	ErrWordlistNotDownloaded = errors.New("wordlist is not downloaded")

	// ErrWordlistNotValidated rejects an analysis against a wordlist that
	// has not passed validation.
	ErrWordlistNotValidated = errors.New("wordlist is not validated")

	// ErrWordlistNotDownloading rejects cancelling a download that is not
	// in progress.
	ErrWordlistNotDownloading = errors.New("wordlist is not currently downloading")

	// ErrWordlistBusy rejects a validation while the wordlist is in a
	// state that cannot be validated.
	ErrWordlistBusy = errors.New("cannot start a validation at the moment")

	// ErrDuplicateCredential rejects storing the same platform/url/secret
	// triple twice.
	ErrDuplicateCredential = errors.New("credential already exists")

	// ErrVaultInitialized rejects a second initialization.
	ErrVaultInitialized = errors.New("vault is already initialized")

	// ErrVaultNotInitialized rejects a login before initialization.
	ErrVaultNotInitialized = errors.New("vault is not initialized")

	// ErrInvalidCredentials rejects a wrong master passphrase or
	// recovery key.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

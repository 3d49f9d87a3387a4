package storage

import "errors"

// Common storage errors
var (
	// ErrCredentialNotFound indicates that the credential does not exist
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrAnalysisNotFound indicates that the analysis does not exist
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrWordlistNotFound indicates that the wordlist does not exist
	ErrWordlistNotFound = errors.New("wordlist not found")

	// ErrTagNotFound indicates that the tag does not exist
	ErrTagNotFound = errors.New("tag not found")

	// ErrSettingNotFound indicates that the settings key has no value yet
	ErrSettingNotFound = errors.New("setting not found")

	// ErrWordlistExists indicates a slug collision on import
	ErrWordlistExists = errors.New("wordlist already exists")

	// ErrWordlistInUse indicates that an analysis still references the wordlist
	ErrWordlistInUse = errors.New("wordlist is referenced by an analysis")
)

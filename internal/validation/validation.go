// Package validation holds the input rules shared by the server handlers
// and the CLI client.
package validation

import (
	"fmt"
	"regexp"
)

// SlugPattern defines the accepted wordlist slug format: lowercase
// letters, digits and hyphens, 2 to 64 characters, starting with a letter
// or digit. Slugs end up in file system paths, so the character set is
// deliberately narrow.
var SlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,63}$`)

// MinPassphraseLen is the minimum master passphrase length.
const MinPassphraseLen = 8

// ValidatePassphrase checks the minimum requirements for a master
// passphrase.
func ValidatePassphrase(passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase cannot be empty")
	}
	if len(passphrase) < MinPassphraseLen {
		return fmt.Errorf("passphrase must be at least %d characters long", MinPassphraseLen)
	}
	return nil
}

// ValidateSlug checks that a wordlist slug matches SlugPattern.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if !SlugPattern.MatchString(slug) {
		return fmt.Errorf("slug can only contain lowercase letters, digits and hyphens (2-64 characters)")
	}
	return nil
}

// Package wordlist reads length-partitioned password files.
// A wordlist on disk is {dir}/{slug}/data/{length}.ticket: newline-delimited
// passwords of exactly that length, pre-sorted lexicographically so a
// membership check is a binary search.
package wordlist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source resolves and reads wordlist files under a base directory.
type Source struct {
	dir string
}

// NewSource creates a Source rooted at dir.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// Dir returns the base directory.
func (s *Source) Dir() string {
	return s.dir
}

// Path returns the on-disk path of one length file.
func (s *Source) Path(slug string, length int) string {
	return filepath.Join(s.dir, slug, "data", fmt.Sprintf("%d.ticket", length))
}

// DataDir returns the directory holding a wordlist's length files.
func (s *Source) DataDir(slug string) string {
	return filepath.Join(s.dir, slug, "data")
}

// LoadLength reads the sorted password file for one length.
// Blank lines are dropped; the slice order is the file order.
func (s *Source) LoadLength(slug string, length int) ([]string, error) {
	content, err := os.ReadFile(s.Path(slug, length))
	if err != nil {
		return nil, fmt.Errorf("failed to read wordlist file: %w", err)
	}

	lines := strings.Split(string(content), "\n")
	passwords := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			passwords = append(passwords, line)
		}
	}

	return passwords, nil
}

// Contains reports whether target is present in a sorted password slice.
// Go string comparison is byte-wise, matching the files' sort order.
func Contains(sorted []string, target string) bool {
	i := sort.SearchStrings(sorted, target)
	return i < len(sorted) && sorted[i] == target
}

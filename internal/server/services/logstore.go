package services

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// defaultLogTTL bounds how long finished analysis logs stay around.
	defaultLogTTL = 24 * time.Hour

	// maskedRunLimit caps the number of mask characters in a masked
	// password so its length leaks at most this much.
	maskedRunLimit = 6
)

// LogStore keeps the append-only, timestamped log lines of analyses in
// memory, keyed by analysis id. Logs do not survive a process restart;
// the polling observe contract only needs them while the vault is up.
// Entries are evicted TTL-based on access instead of growing forever.
type LogStore struct {
	now     func() time.Time
	entries map[string]*logEntry
	mu      sync.Mutex
	ttl     time.Duration
}

type logEntry struct {
	touchedAt time.Time
	lines     []string
}

// NewLogStore creates a store with the given TTL. A zero ttl uses the
// default. now is the injected clock; nil uses time.Now.
func NewLogStore(ttl time.Duration, now func() time.Time) *LogStore {
	if ttl <= 0 {
		ttl = defaultLogTTL
	}
	if now == nil {
		now = time.Now
	}
	return &LogStore{
		entries: make(map[string]*logEntry),
		ttl:     ttl,
		now:     now,
	}
}

// Append adds one timestamped line to an analysis, creating its entry on
// first use.
func (s *LogStore) Append(analysisID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpiredLocked(now)

	entry, ok := s.entries[analysisID]
	if !ok {
		entry = &logEntry{}
		s.entries[analysisID] = entry
	}

	entry.lines = append(entry.lines, fmt.Sprintf("[%s] %s", now.UTC().Format(time.RFC3339), message))
	entry.touchedAt = now
}

// Lines returns a copy of an analysis' log lines and whether it is known.
func (s *LogStore) Lines(analysisID string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpiredLocked(now)

	entry, ok := s.entries[analysisID]
	if !ok {
		return nil, false
	}
	entry.touchedAt = now

	lines := make([]string, len(entry.lines))
	copy(lines, entry.lines)
	return lines, true
}

// evictExpiredLocked drops entries not touched within the TTL.
func (s *LogStore) evictExpiredLocked(now time.Time) {
	for id, entry := range s.entries {
		if now.Sub(entry.touchedAt) > s.ttl {
			delete(s.entries, id)
		}
	}
}

// maskPassword hides a password for logging: first character, a bounded run
// of asterisks, last character. Short passwords are fully masked.
func maskPassword(password string) string {
	if len(password) <= 2 {
		return strings.Repeat("*", len(password))
	}

	run := len(password) - 2
	if run > maskedRunLimit {
		run = maskedRunLimit
	}

	return password[:1] + strings.Repeat("*", run) + password[len(password)-1:]
}

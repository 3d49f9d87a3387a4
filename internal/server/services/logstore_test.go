package services

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogStoreAppendAndLines(t *testing.T) {
	store := NewLogStore(0, fixedClock(t, "2026-08-30T10:00:00Z"))

	store.Append("a1", "first")
	store.Append("a1", "second")

	lines, ok := store.Lines("a1")
	require.True(t, ok)
	require.Len(t, lines, 2)
	assert.Equal(t, "[2026-08-30T10:00:00Z] first", lines[0])
	assert.Equal(t, "[2026-08-30T10:00:00Z] second", lines[1])
}

func TestLogStoreUnknownID(t *testing.T) {
	store := NewLogStore(0, nil)

	lines, ok := store.Lines("missing")
	assert.False(t, ok)
	assert.Nil(t, lines)
}

func TestLogStoreLinesReturnsCopy(t *testing.T) {
	store := NewLogStore(0, nil)
	store.Append("a1", "original")

	lines, ok := store.Lines("a1")
	require.True(t, ok)
	lines[0] = "mutated"

	again, ok := store.Lines("a1")
	require.True(t, ok)
	assert.Contains(t, again[0], "original")
}

func TestLogStoreTTLEviction(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	store := NewLogStore(time.Hour, clock)
	store.Append("a1", "line")

	// access within the TTL keeps the entry alive
	advance(30 * time.Minute)
	_, ok := store.Lines("a1")
	require.True(t, ok)

	advance(30 * time.Minute)
	_, ok = store.Lines("a1")
	require.True(t, ok)

	// an untouched entry past the TTL is gone
	advance(2 * time.Hour)
	_, ok = store.Lines("a1")
	assert.False(t, ok)
}

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"empty", "", ""},
		{"single char", "a", "*"},
		{"two chars", "ab", "**"},
		{"three chars", "abc", "a*c"},
		{"medium", "hunter2", "h*****2"},
		{"long run is bounded", "averylongpassword", "a******d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := maskPassword(tt.password)
			assert.Equal(t, tt.want, got)
			if len(tt.password) > 2 {
				assert.LessOrEqual(t, strings.Count(got, "*"), maskedRunLimit)
			}
		})
	}
}

package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Elagoht/passenger-reborn/internal/crypto"
	"github.com/Elagoht/passenger-reborn/internal/server/storage/sqlite"
)

func newTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()

	st, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return st
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCipherKey(t *testing.T) []byte {
	t.Helper()

	key, err := crypto.DeriveKey("services-test-secret")
	require.NoError(t, err)

	return key
}

// fixedClock returns a clock stuck at an RFC3339 moment.
func fixedClock(t *testing.T, value string) func() time.Time {
	t.Helper()

	moment, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)

	return func() time.Time { return moment }
}

package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elagoht/passenger-reborn/internal/crypto"
	"github.com/Elagoht/passenger-reborn/internal/models"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
	"github.com/Elagoht/passenger-reborn/internal/server/storage/sqlite"
	"github.com/Elagoht/passenger-reborn/internal/wordlist"
)

type analysisEnv struct {
	svc      *AnalysisService
	st       *sqlite.Storage
	logs     *LogStore
	wordlist *models.Wordlist
}

// newAnalysisEnv builds an engine over a validated wordlist whose single
// length-4 file holds "oreo", "pass", "zzzz".
func newAnalysisEnv(t *testing.T) *analysisEnv {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	dataDir := filepath.Join(dir, "rockpool", "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dataDir, "4.ticket"), []byte("oreo\npass\nzzzz\n"), 0o644))

	st := newTestStorage(t)
	wl := &models.Wordlist{
		ID:          uuid.NewString(),
		DisplayName: "Rock Pool",
		Slug:        "rockpool",
		Status:      models.WordlistStatusValidated,
		MinLength:   4,
		MaxLength:   8,
		TotalFiles:  1,
	}
	require.NoError(t, st.CreateWordlist(ctx, wl))

	logs := NewLogStore(0, nil)
	svc := NewAnalysisService(testLogger(), st, testCipherKey(t), wordlist.NewSource(dir), logs)

	return &analysisEnv{svc: svc, st: st, logs: logs, wordlist: wl}
}

// addSecret stores a credential with the given plaintext and returns its id.
func (e *analysisEnv) addSecret(t *testing.T, plaintext string) string {
	t.Helper()

	blob, err := crypto.EncryptToBase64([]byte(plaintext), testCipherKey(t))
	require.NoError(t, err)

	now := time.Now()
	cred := &models.Credential{
		ID:         uuid.NewString(),
		Platform:   "test",
		Identity:   "user",
		Passphrase: blob,
		SimHash:    crypto.FingerprintHex(plaintext),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, e.st.CreateCredential(context.Background(), cred, 50))

	return cred.ID
}

func (e *analysisEnv) waitTerminal(t *testing.T, id string) *models.Analysis {
	t.Helper()

	var result *models.Analysis
	require.Eventually(t, func() bool {
		a, err := e.st.GetAnalysis(context.Background(), id)
		if err != nil || !a.Status.Terminal() {
			return false
		}
		result = a
		return true
	}, 5*time.Second, 10*time.Millisecond)

	return result
}

func TestAnalysisRun(t *testing.T) {
	ctx := context.Background()
	env := newAnalysisEnv(t)

	weak1 := env.addSecret(t, "pass")
	weak2 := env.addSecret(t, "pass") // same secret reused elsewhere
	env.addSecret(t, "frog")          // length 4, not in the file
	env.addSecret(t, "fives")         // length 5, no file on disk
	env.addSecret(t, "far-too-long")  // outside the wordlist range

	id, err := env.svc.Initialize(ctx, env.wordlist.ID)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	analysis := env.waitTerminal(t, id)
	assert.Equal(t, models.AnalysisStatusCompleted, analysis.Status)
	assert.Equal(t, 3, analysis.TotalChecked)
	assert.Equal(t, 2, analysis.TotalMatched)

	report, err := env.svc.Report(ctx, id)
	require.NoError(t, err)
	require.Len(t, report.MatchedCredentials, 2)
	matchedIDs := []string{report.MatchedCredentials[0].ID, report.MatchedCredentials[1].ID}
	assert.ElementsMatch(t, []string{weak1, weak2}, matchedIDs)
}

func TestAnalysisObserve(t *testing.T) {
	ctx := context.Background()
	env := newAnalysisEnv(t)

	env.addSecret(t, "pass")
	env.addSecret(t, "pass")
	env.addSecret(t, "far-too-long")

	id, err := env.svc.Initialize(ctx, env.wordlist.ID)
	require.NoError(t, err)
	env.waitTerminal(t, id)

	obs := env.svc.Observe(id)
	assert.False(t, obs.IsActive)
	assert.Equal(t, 2, obs.Progress.TotalMatched)
	assert.Equal(t, 3, obs.Progress.TotalChecked)

	joined := ""
	for _, line := range obs.Logs {
		joined += line + "\n"
	}
	assert.Contains(t, joined, "Skipping passwords of length 12 (outside wordlist range)")
	assert.Contains(t, joined, `Found match: "p**s" used by 2 credential(s)`)
	// the plaintext itself never appears in the logs
	assert.NotContains(t, joined, `"pass"`)
}

func TestAnalysisObserveUnknown(t *testing.T) {
	env := newAnalysisEnv(t)

	obs := env.svc.Observe("no-such-analysis")
	assert.False(t, obs.IsActive)
	assert.Equal(t, []string{"No logs available for this analysis"}, obs.Logs)
	assert.Zero(t, obs.Progress)
}

func TestAnalysisMissingLengthFileIsNotFatal(t *testing.T) {
	ctx := context.Background()
	env := newAnalysisEnv(t)

	env.addSecret(t, "fives") // length 5 is in range but has no file

	id, err := env.svc.Initialize(ctx, env.wordlist.ID)
	require.NoError(t, err)

	analysis := env.waitTerminal(t, id)
	assert.Equal(t, models.AnalysisStatusCompleted, analysis.Status)
	assert.Equal(t, 0, analysis.TotalMatched)

	lines, ok := env.logs.Lines(id)
	require.True(t, ok)
	joined := ""
	for _, line := range lines {
		joined += line + "\n"
	}
	assert.Contains(t, joined, "Error processing passwords of length 5")
}

func TestAnalysisEmptyVault(t *testing.T) {
	ctx := context.Background()
	env := newAnalysisEnv(t)

	id, err := env.svc.Initialize(ctx, env.wordlist.ID)
	require.NoError(t, err)

	analysis := env.waitTerminal(t, id)
	assert.Equal(t, models.AnalysisStatusCompleted, analysis.Status)
	assert.Equal(t, 0, analysis.TotalChecked)
	assert.Equal(t, "No credentials to analyze", analysis.Message)
}

func TestAnalysisSingleActiveSlot(t *testing.T) {
	ctx := context.Background()
	env := newAnalysisEnv(t)

	_, err := env.svc.reserve("occupant")
	require.NoError(t, err)
	defer env.svc.release("occupant")

	_, err = env.svc.Initialize(ctx, env.wordlist.ID)
	assert.ErrorIs(t, err, ErrAnalysisActive)
}

// gatedAnalysisStore stalls the detached run at its first credential read
// so a test can hold the active slot open for as long as it needs.
type gatedAnalysisStore struct {
	AnalysisStore
	gate chan struct{}
}

func (s *gatedAnalysisStore) ListCredentialSecrets(ctx context.Context) ([]storage.CredentialSecret, error) {
	<-s.gate
	return s.AnalysisStore.ListCredentialSecrets(ctx)
}

func TestAnalysisConcurrentInitialize(t *testing.T) {
	ctx := context.Background()
	env := newAnalysisEnv(t)

	gate := make(chan struct{})
	svc := NewAnalysisService(testLogger(),
		&gatedAnalysisStore{AnalysisStore: env.st, gate: gate},
		testCipherKey(t), env.svc.source, env.logs)

	const attempts = 8

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started []string
		failed  []error
	)
	begin := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-begin
			id, err := svc.Initialize(ctx, env.wordlist.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, err)
				return
			}
			started = append(started, id)
		}()
	}
	close(begin)
	wg.Wait()

	// exactly one initiation wins the slot
	require.Len(t, started, 1)
	require.Len(t, failed, attempts-1)
	for _, err := range failed {
		assert.ErrorIs(t, err, ErrAnalysisActive)
	}

	close(gate)
	analysis := env.waitTerminal(t, started[0])
	assert.Equal(t, models.AnalysisStatusCompleted, analysis.Status)
}

func TestAnalysisInitializeRejectsUnreadyWordlist(t *testing.T) {
	ctx := context.Background()
	env := newAnalysisEnv(t)

	for status, wantErr := range map[models.WordlistStatus]error{
		models.WordlistStatusImported:   ErrWordlistNotDownloaded,
		models.WordlistStatusDownloaded: ErrWordlistNotValidated,
	} {
		require.NoError(t, env.st.UpdateWordlistStatus(ctx, env.wordlist.ID, status, "test"))
		_, err := env.svc.Initialize(ctx, env.wordlist.ID)
		assert.ErrorIs(t, err, wantErr)
	}
}

func TestAnalysisStop(t *testing.T) {
	ctx := context.Background()
	env := newAnalysisEnv(t)

	analysis := &models.Analysis{
		ID:         uuid.NewString(),
		WordlistID: env.wordlist.ID,
		Status:     models.AnalysisStatusRunning,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, env.st.CreateAnalysis(ctx, analysis))

	_, err := env.svc.reserve(analysis.ID)
	require.NoError(t, err)

	require.NoError(t, env.svc.Stop(ctx, analysis.ID))

	stopped, err := env.st.GetAnalysis(ctx, analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisStatusFailed, stopped.Status)
	assert.Equal(t, "Analysis stopped by user", stopped.Message)

	// the slot is free again and a repeat stop is rejected
	assert.ErrorIs(t, env.svc.Stop(ctx, analysis.ID), ErrAnalysisNotRunning)
}

func TestAnalysisAvailableWordlists(t *testing.T) {
	ctx := context.Background()
	env := newAnalysisEnv(t)

	other := &models.Wordlist{
		ID:     uuid.NewString(),
		Slug:   "pending",
		Status: models.WordlistStatusImported,
	}
	require.NoError(t, env.st.CreateWordlist(ctx, other))

	available, err := env.svc.AvailableWordlists(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, env.wordlist.ID, available[0].ID)
}

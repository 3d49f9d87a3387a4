package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Elagoht/passenger-reborn/internal/crypto"
	"github.com/Elagoht/passenger-reborn/internal/models"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
	"github.com/Elagoht/passenger-reborn/internal/wordlist"
)

// AnalysisStore is the storage surface the analysis engine needs.
type AnalysisStore interface {
	CreateAnalysis(ctx context.Context, analysis *models.Analysis) error
	UpdateAnalysisStatus(ctx context.Context, id string, status models.AnalysisStatus, message string) error
	CompleteAnalysis(ctx context.Context, id string, totalChecked, totalMatched int, tookMs int64, message string, matchedIDs []string) error
	GetAnalysis(ctx context.Context, id string) (*models.Analysis, error)
	GetAnalysisReport(ctx context.Context, id string) (*models.AnalysisReport, error)
	ListAnalyses(ctx context.Context) ([]*models.Analysis, error)
	ListCredentialSecrets(ctx context.Context) ([]storage.CredentialSecret, error)
	GetWordlist(ctx context.Context, id string) (*models.Wordlist, error)
	ListWordlistsByStatus(ctx context.Context, status models.WordlistStatus) ([]*models.Wordlist, error)
}

// AnalysisObservation is a polling snapshot of one analysis.
type AnalysisObservation struct {
	ID       string
	Logs     []string
	Progress AnalysisProgress
	IsActive bool
}

// AnalysisProgress carries the running counters, derived from log lines.
type AnalysisProgress struct {
	TotalMatched int
	TotalChecked int
}

// AnalysisService brute-force checks all stored credentials against a
// wordlist, one analysis at a time across the whole process.
//
// An analysis is the vault brute-forcing itself before any attacker does.
// Initiation is fire-and-forget: the scan runs detached and a polling
// caller observes progress through the in-memory log store.
type AnalysisService struct {
	now    func() time.Time
	logger *slog.Logger
	store  AnalysisStore
	source *wordlist.Source
	logs   *LogStore
	key    []byte

	// activeID is the single process-wide running-analysis slot;
	// check-and-set happens under mu so two concurrent initiations can
	// never both succeed.
	mu       sync.Mutex
	activeID string
	cancel   context.CancelFunc
}

// NewAnalysisService creates the engine. key is the process cipher key,
// source resolves wordlist files, logs receives the observe trace.
func NewAnalysisService(logger *slog.Logger, store AnalysisStore, key []byte, source *wordlist.Source, logs *LogStore) *AnalysisService {
	return &AnalysisService{
		logger: logger,
		store:  store,
		key:    key,
		source: source,
		logs:   logs,
		now:    time.Now,
	}
}

// AvailableWordlists returns the wordlists an analysis can run against.
func (s *AnalysisService) AvailableWordlists(ctx context.Context) ([]*models.Wordlist, error) {
	return s.store.ListWordlistsByStatus(ctx, models.WordlistStatusValidated)
}

// ListReports returns all analysis records, newest first.
func (s *AnalysisService) ListReports(ctx context.Context) ([]*models.Analysis, error) {
	return s.store.ListAnalyses(ctx)
}

// Report returns one analysis with its matched credentials.
func (s *AnalysisService) Report(ctx context.Context, id string) (*models.AnalysisReport, error) {
	return s.store.GetAnalysisReport(ctx, id)
}

// Initialize starts an analysis against a wordlist and returns the new
// analysis id immediately; the scan itself runs detached.
// Fails with ErrAnalysisActive when another analysis is running, and with
// ErrWordlistNotDownloaded / ErrWordlistNotValidated when the wordlist is
// not ready (the two are distinguishable on purpose).
func (s *AnalysisService) Initialize(ctx context.Context, wordlistID string) (string, error) {
	wl, err := s.store.GetWordlist(ctx, wordlistID)
	if err != nil {
		return "", err
	}

	if !wl.Downloaded() {
		return "", ErrWordlistNotDownloaded
	}
	if wl.Status != models.WordlistStatusValidated {
		return "", ErrWordlistNotValidated
	}

	analysis := &models.Analysis{
		ID:         uuid.NewString(),
		WordlistID: wl.ID,
		Status:     models.AnalysisStatusIdle,
		Message:    fmt.Sprintf("Analysis initialized for wordlist: %s", wl.DisplayName),
		CreatedAt:  s.now(),
	}

	// Reserve the single active slot before touching storage so a
	// concurrent initiation cannot slip in between check and set.
	runCtx, err := s.reserve(analysis.ID)
	if err != nil {
		return "", err
	}

	if err := s.store.CreateAnalysis(ctx, analysis); err != nil {
		s.release(analysis.ID)
		return "", err
	}

	s.logs.Append(analysis.ID, "Analysis initialized")

	go s.run(runCtx, analysis.ID, wl)

	return analysis.ID, nil
}

// Observe returns the polling snapshot for an analysis. Unknown ids (or ids
// whose logs already expired) report inactive with a placeholder line.
func (s *AnalysisService) Observe(id string) AnalysisObservation {
	lines, known := s.logs.Lines(id)
	if !known {
		return AnalysisObservation{
			ID:       id,
			IsActive: false,
			Logs:     []string{"No logs available for this analysis"},
		}
	}

	s.mu.Lock()
	isActive := s.activeID == id
	s.mu.Unlock()

	return AnalysisObservation{
		ID:       id,
		IsActive: isActive,
		Progress: progressFromLogs(lines),
		Logs:     lines,
	}
}

// Stop aborts the currently active analysis. Only the active one can be
// stopped; anything else fails with ErrAnalysisNotRunning. The in-flight
// scan halts cooperatively: the cancellation is observed between wordlist
// files, not mid-file.
func (s *AnalysisService) Stop(ctx context.Context, id string) error {
	if _, err := s.store.GetAnalysis(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.activeID != id {
		s.mu.Unlock()
		return ErrAnalysisNotRunning
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.activeID = ""
	s.cancel = nil
	s.mu.Unlock()

	if err := s.store.UpdateAnalysisStatus(ctx, id, models.AnalysisStatusFailed, "Analysis stopped by user"); err != nil {
		return err
	}
	s.logs.Append(id, "Analysis was manually stopped")

	return nil
}

// reserve claims the active slot for an analysis id.
func (s *AnalysisService) reserve(id string) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID != "" {
		return nil, ErrAnalysisActive
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.activeID = id
	s.cancel = cancel

	return ctx, nil
}

// release frees the active slot if it still belongs to id.
func (s *AnalysisService) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == id {
		if s.cancel != nil {
			s.cancel()
		}
		s.activeID = ""
		s.cancel = nil
	}
}

// run is the detached scan body. Any failure transitions the analysis to
// FAILED; the active slot is always released.
func (s *AnalysisService) run(ctx context.Context, analysisID string, wl *models.Wordlist) {
	defer s.release(analysisID)

	start := s.now()

	if err := s.transition(ctx, analysisID, models.AnalysisStatusRunning, "Analysis started"); err != nil {
		s.fail(analysisID, err)
		return
	}

	s.logs.Append(analysisID, "Fetching credentials...")
	secrets, err := s.store.ListCredentialSecrets(ctx)
	if err != nil {
		s.fail(analysisID, err)
		return
	}

	if len(secrets) == 0 {
		s.logs.Append(analysisID, "No credentials found to analyze")
		took := s.now().Sub(start).Milliseconds()
		if err := s.store.CompleteAnalysis(ctx, analysisID, 0, 0, took, "No credentials to analyze", nil); err != nil {
			s.fail(analysisID, err)
		}
		return
	}

	passwordToCreds, lengths := s.decryptSecrets(analysisID, secrets)

	s.logs.Append(analysisID, fmt.Sprintf(
		"Analyzing %d credentials against wordlist: %s", len(secrets), wl.DisplayName))

	matched, totalChecked, err := s.scanWordlist(ctx, analysisID, wl, passwordToCreds, lengths)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Stop already set the terminal state and released the slot
			s.logs.Append(analysisID, "Scan halted after stop request")
			return
		}
		s.fail(analysisID, err)
		return
	}

	took := s.now().Sub(start).Milliseconds()
	message := fmt.Sprintf("Analysis completed: %d vulnerable credentials found", len(matched))
	if err := s.store.CompleteAnalysis(ctx, analysisID, totalChecked, len(matched), took, message, matched); err != nil {
		s.fail(analysisID, err)
		return
	}

	s.logs.Append(analysisID, fmt.Sprintf(
		"Analysis completed in %d milliseconds. Found %d vulnerable credentials out of %d total.",
		took, len(matched), len(secrets)))
}

// decryptSecrets builds the reuse-collapsing structures in one pass:
// plaintext -> credential ids, and the set of distinct plaintext lengths.
// A credential whose blob fails authentication is logged and skipped; one
// corrupted record never aborts the whole run.
func (s *AnalysisService) decryptSecrets(analysisID string, secrets []storage.CredentialSecret) (map[string][]string, []int) {
	s.logs.Append(analysisID, "Decrypting credential passphrases...")

	passwordToCreds := make(map[string][]string, len(secrets))
	lengthSet := make(map[int]struct{})

	for _, secret := range secrets {
		plaintext, err := crypto.DecryptFromBase64(secret.Passphrase, s.key)
		if err != nil {
			s.logger.Error("failed to decrypt credential", "credential_id", secret.ID, "error", err)
			s.logs.Append(analysisID, fmt.Sprintf("Skipping credential %s: cannot decrypt", secret.ID))
			continue
		}

		password := string(plaintext)
		passwordToCreds[password] = append(passwordToCreds[password], secret.ID)
		lengthSet[len(password)] = struct{}{}
	}

	lengths := make([]int, 0, len(lengthSet))
	for length := range lengthSet {
		lengths = append(lengths, length)
	}
	sort.Ints(lengths)

	return passwordToCreds, lengths
}

// scanWordlist checks every distinct plaintext against the length files.
// Lengths outside the wordlist range are skipped and logged. A missing or
// unreadable file is local to its length: logged, skipped, the scan goes on.
func (s *AnalysisService) scanWordlist(ctx context.Context, analysisID string, wl *models.Wordlist, passwordToCreds map[string][]string, lengths []int) ([]string, int, error) {
	var matched []string
	totalChecked := 0

	for _, length := range lengths {
		// Cancellation is observed between files so a stop request
		// waits at most one file's processing time
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		if length < wl.MinLength || length > wl.MaxLength {
			s.logs.Append(analysisID, fmt.Sprintf(
				"Skipping passwords of length %d (outside wordlist range)", length))
			continue
		}

		s.logs.Append(analysisID, fmt.Sprintf("Processing passwords of length %d...", length))

		entries, err := s.source.LoadLength(wl.Slug, length)
		if err != nil {
			s.logs.Append(analysisID, fmt.Sprintf(
				"Error processing passwords of length %d: %v", length, err))
			continue
		}

		totalChecked += len(entries)

		candidates := passwordsOfLength(passwordToCreds, length)
		s.logs.Append(analysisID, fmt.Sprintf(
			"Checking %d unique passwords against %d wordlist entries",
			len(candidates), len(entries)))

		for _, password := range candidates {
			if !wordlist.Contains(entries, password) {
				continue
			}

			affected := passwordToCreds[password]
			s.logs.Append(analysisID, fmt.Sprintf(
				"Found match: %q used by %d credential(s)", maskPassword(password), len(affected)))
			matched = append(matched, affected...)
		}
	}

	return matched, totalChecked, nil
}

// transition updates the persisted status and mirrors it into the log.
func (s *AnalysisService) transition(ctx context.Context, analysisID string, status models.AnalysisStatus, message string) error {
	if err := s.store.UpdateAnalysisStatus(ctx, analysisID, status, message); err != nil {
		return err
	}
	s.logs.Append(analysisID, message)
	return nil
}

// fail moves an analysis to FAILED with the captured error message. The run
// is not retried; the process stays up.
func (s *AnalysisService) fail(analysisID string, runErr error) {
	s.logger.Error("analysis failed", "analysis_id", analysisID, "error", runErr)
	s.logs.Append(analysisID, fmt.Sprintf("Error occurred: %v", runErr))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	message := fmt.Sprintf("Analysis failed: %v", runErr)
	if err := s.store.UpdateAnalysisStatus(ctx, analysisID, models.AnalysisStatusFailed, message); err != nil {
		s.logger.Error("failed to record analysis failure", "analysis_id", analysisID, "error", err)
	}
}

// passwordsOfLength returns the distinct plaintexts of one length in a
// deterministic order.
func passwordsOfLength(passwordToCreds map[string][]string, length int) []string {
	var candidates []string
	for password := range passwordToCreds {
		if len(password) == length {
			candidates = append(candidates, password)
		}
	}
	sort.Strings(candidates)
	return candidates
}

var (
	matchedLinePattern = regexp.MustCompile(`used by (\d+) credential`)
	checkedLinePattern = regexp.MustCompile(`against (\d+) wordlist entries`)
)

// progressFromLogs derives the progress counters from the structured log
// lines, so the engine keeps no separate counters to fall out of sync.
func progressFromLogs(lines []string) AnalysisProgress {
	var progress AnalysisProgress

	for _, line := range lines {
		if m := matchedLinePattern.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				progress.TotalMatched += n
			}
		}
		if m := checkedLinePattern.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				progress.TotalChecked += n
			}
		}
	}

	return progress
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Elagoht/passenger-reborn/internal/models"
	"github.com/Elagoht/passenger-reborn/internal/wordlist"
)

// WordlistStore is the storage surface the wordlist service needs.
type WordlistStore interface {
	CreateWordlist(ctx context.Context, wl *models.Wordlist) error
	GetWordlist(ctx context.Context, id string) (*models.Wordlist, error)
	ListWordlists(ctx context.Context) ([]*models.Wordlist, error)
	ListWordlistsByStatus(ctx context.Context, status models.WordlistStatus) ([]*models.Wordlist, error)
	UpdateWordlistStatus(ctx context.Context, id string, status models.WordlistStatus, message string) error
	DeleteWordlist(ctx context.Context, id string) error
}

// WordlistMetadata is the importable description of a wordlist.
type WordlistMetadata struct {
	DisplayName    string
	Slug           string
	Description    string
	Repository     string
	Source         string
	PublishedBy    string
	AdaptedBy      string
	SizeUnits      string
	Year           int
	Size           float64
	MinLength      int
	MaxLength      int
	TotalFiles     int
	TotalPasswords int
}

// WordlistService manages wordlist metadata and the lifecycle
// IMPORTED -> DOWNLOADING -> DOWNLOADED -> VALIDATING -> VALIDATED.
// Fetching the files is outside this service: MarkDownloaded accepts files
// already placed under the data directory, and validation only reads disk.
type WordlistService struct {
	now    func() time.Time
	logger *slog.Logger
	store  WordlistStore
	source *wordlist.Source

	mu         sync.Mutex
	validating map[string]struct{}
}

func NewWordlistService(logger *slog.Logger, store WordlistStore, source *wordlist.Source) *WordlistService {
	return &WordlistService{
		logger:     logger,
		store:      store,
		source:     source,
		validating: make(map[string]struct{}),
		now:        time.Now,
	}
}

// Import registers wordlist metadata in state IMPORTED.
// A slug collision fails with storage.ErrWordlistExists.
func (s *WordlistService) Import(ctx context.Context, meta WordlistMetadata) (*models.Wordlist, error) {
	wl := &models.Wordlist{
		ID:             uuid.NewString(),
		DisplayName:    meta.DisplayName,
		Slug:           meta.Slug,
		Description:    meta.Description,
		Repository:     meta.Repository,
		Source:         meta.Source,
		PublishedBy:    meta.PublishedBy,
		AdaptedBy:      meta.AdaptedBy,
		SizeUnits:      meta.SizeUnits,
		Year:           meta.Year,
		Size:           meta.Size,
		MinLength:      meta.MinLength,
		MaxLength:      meta.MaxLength,
		TotalFiles:     meta.TotalFiles,
		TotalPasswords: meta.TotalPasswords,
		Status:         models.WordlistStatusImported,
		Message:        s.statusMessage("Wordlist imported"),
	}

	if err := s.store.CreateWordlist(ctx, wl); err != nil {
		return nil, err
	}

	s.logger.Info("wordlist imported", "wordlist_id", wl.ID, "slug", wl.Slug)
	return wl, nil
}

// Get returns one wordlist.
func (s *WordlistService) Get(ctx context.Context, id string) (*models.Wordlist, error) {
	return s.store.GetWordlist(ctx, id)
}

// List returns all wordlists.
func (s *WordlistService) List(ctx context.Context) ([]*models.Wordlist, error) {
	return s.store.ListWordlists(ctx)
}

// Status returns the current lifecycle state and its timestamped message.
func (s *WordlistService) Status(ctx context.Context, id string) (models.WordlistStatus, string, error) {
	wl, err := s.store.GetWordlist(ctx, id)
	if err != nil {
		return "", "", err
	}
	return wl.Status, wl.Message, nil
}

// MarkDownloaded moves an IMPORTED wordlist to DOWNLOADED after confirming
// its data directory exists on disk. The files themselves arrive out of
// band; this service never fetches them.
func (s *WordlistService) MarkDownloaded(ctx context.Context, id string) error {
	wl, err := s.store.GetWordlist(ctx, id)
	if err != nil {
		return err
	}

	if wl.Downloaded() {
		return nil
	}

	dataDir := s.source.DataDir(wl.Slug)
	info, err := os.Stat(dataDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("wordlist files not found at %s: %w", dataDir, ErrWordlistNotDownloaded)
	}

	return s.store.UpdateWordlistStatus(ctx, id, models.WordlistStatusDownloaded,
		s.statusMessage("Wordlist files found on disk"))
}

// CancelDownload aborts a DOWNLOADING wordlist, leaving it FAILED so the
// operator can retry or delete it. Any other state fails with
// ErrWordlistNotDownloading.
func (s *WordlistService) CancelDownload(ctx context.Context, id string) error {
	wl, err := s.store.GetWordlist(ctx, id)
	if err != nil {
		return err
	}

	if wl.Status != models.WordlistStatusDownloading {
		return ErrWordlistNotDownloading
	}

	return s.store.UpdateWordlistStatus(ctx, id, models.WordlistStatusFailed,
		s.statusMessage("Download cancelled by user"))
}

// Validate checks a wordlist's on-disk files against its metadata. The
// check runs detached: the call moves the wordlist to VALIDATING and
// returns; the outcome lands as VALIDATED or FAILED. A wordlist already
// being validated fails with ErrWordlistBusy.
func (s *WordlistService) Validate(ctx context.Context, id string) error {
	wl, err := s.store.GetWordlist(ctx, id)
	if err != nil {
		return err
	}

	if !wl.Downloaded() {
		return ErrWordlistNotDownloaded
	}

	s.mu.Lock()
	if _, busy := s.validating[wl.ID]; busy {
		s.mu.Unlock()
		return ErrWordlistBusy
	}
	s.validating[wl.ID] = struct{}{}
	s.mu.Unlock()

	if err := s.store.UpdateWordlistStatus(ctx, id, models.WordlistStatusValidating,
		s.statusMessage("Validation started")); err != nil {
		s.releaseValidation(wl.ID)
		return err
	}

	go s.runValidation(wl)
	return nil
}

// Delete removes wordlist metadata. The files stay on disk.
func (s *WordlistService) Delete(ctx context.Context, id string) error {
	wl, err := s.store.GetWordlist(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if _, busy := s.validating[wl.ID]; busy {
		s.mu.Unlock()
		return ErrWordlistBusy
	}
	s.mu.Unlock()

	return s.store.DeleteWordlist(ctx, id)
}

func (s *WordlistService) releaseValidation(id string) {
	s.mu.Lock()
	delete(s.validating, id)
	s.mu.Unlock()
}

// runValidation is the detached validation body.
func (s *WordlistService) runValidation(wl *models.Wordlist) {
	defer s.releaseValidation(wl.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := s.checkFiles(wl); err != nil {
		s.logger.Warn("wordlist validation failed", "wordlist_id", wl.ID, "error", err)
		message := s.statusMessage(fmt.Sprintf("Validation failed: %v", err))
		if uerr := s.store.UpdateWordlistStatus(ctx, wl.ID, models.WordlistStatusFailed, message); uerr != nil {
			s.logger.Error("failed to record validation failure", "wordlist_id", wl.ID, "error", uerr)
		}
		return
	}

	message := s.statusMessage(fmt.Sprintf("Validated %d files", wl.TotalFiles))
	if err := s.store.UpdateWordlistStatus(ctx, wl.ID, models.WordlistStatusValidated, message); err != nil {
		s.logger.Error("failed to record validation success", "wordlist_id", wl.ID, "error", err)
		return
	}

	s.logger.Info("wordlist validated", "wordlist_id", wl.ID, "slug", wl.Slug)
}

// checkFiles walks the data directory and verifies the layout the scanner
// depends on: every file is {n}.ticket with n inside the declared length
// range, the file count matches the metadata, and each file holds sorted
// lines of exactly its length.
func (s *WordlistService) checkFiles(wl *models.Wordlist) error {
	dataDir := s.source.DataDir(wl.Slug)
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return fmt.Errorf("cannot read data directory: %w", err)
	}

	fileCount := 0
	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("unexpected directory %q in data dir", entry.Name())
		}

		length, err := parseTicketName(entry.Name())
		if err != nil {
			return err
		}
		if length < wl.MinLength || length > wl.MaxLength {
			return fmt.Errorf("file %q outside declared length range %d-%d",
				entry.Name(), wl.MinLength, wl.MaxLength)
		}

		if err := s.checkLengthFile(wl.Slug, length); err != nil {
			return err
		}
		fileCount++
	}

	if fileCount != wl.TotalFiles {
		return fmt.Errorf("found %d files, metadata declares %d", fileCount, wl.TotalFiles)
	}

	return nil
}

// checkLengthFile verifies one length file: every line has exactly the
// file's length and the lines are sorted, the precondition of binary search.
func (s *WordlistService) checkLengthFile(slug string, length int) error {
	passwords, err := s.source.LoadLength(slug, length)
	if err != nil {
		return err
	}

	prev := ""
	for i, password := range passwords {
		if len(password) != length {
			return fmt.Errorf("%d.ticket line %d has length %d", length, i+1, len(password))
		}
		if i > 0 && password < prev {
			return fmt.Errorf("%d.ticket is not sorted at line %d", length, i+1)
		}
		prev = password
	}

	return nil
}

// statusMessage prefixes a lifecycle message with the moment it happened.
func (s *WordlistService) statusMessage(msg string) string {
	return fmt.Sprintf("[%s] %s", s.now().UTC().Format(time.RFC3339), msg)
}

func parseTicketName(name string) (int, error) {
	base, ok := strings.CutSuffix(name, ".ticket")
	if !ok {
		return 0, fmt.Errorf("unexpected file %q in data dir", name)
	}

	length, err := strconv.Atoi(base)
	if err != nil || length <= 0 {
		return 0, fmt.Errorf("file %q is not a length file", name)
	}

	return length, nil
}

package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/Elagoht/passenger-reborn/internal/models"
)

// StatsStore is the storage surface the stats service needs.
type StatsStore interface {
	ApplyStrengthDelta(ctx context.Context, date string, sumDelta, countDelta int) error
	ListStrengthCache(ctx context.Context) ([]models.StrengthCacheEntry, error)
	ReplaceStrengthCache(ctx context.Context, entries []models.StrengthCacheEntry) error
	ListAllHistory(ctx context.Context) ([]*models.PassphraseHistory, error)
	ListHistory(ctx context.Context, credentialID string) ([]*models.PassphraseHistory, error)
	GetCredential(ctx context.Context, id string) (*models.Credential, error)
	CountCredentials(ctx context.Context) (int, error)
}

// GraphPoint is one day of the strength graph: the rounded average score
// of all credentials alive on that day.
type GraphPoint struct {
	Date     string
	Strength int
}

// CredentialStrength is the per-credential strength detail: the score of
// the current passphrase and the scores of every one before it.
type CredentialStrength struct {
	CredentialID string
	Current      int
	History      []*models.PassphraseHistory
}

// StatsService maintains the day-bucketed strength cache and serves the
// graph built from it. Each cache row holds the cumulative sum and count of
// all credentials alive at end of that day, so the average is one division
// away and no query ever re-walks the full history.
type StatsService struct {
	logger *slog.Logger
	store  StatsStore
}

func NewStatsService(logger *slog.Logger, store StatsStore) *StatsService {
	return &StatsService{logger: logger, store: store}
}

// OnStrengthAdded folds a newly created credential's score into every day
// from at onward.
func (s *StatsService) OnStrengthAdded(ctx context.Context, score int, at time.Time) error {
	return s.store.ApplyStrengthDelta(ctx, dayKey(at), score, 1)
}

// OnStrengthRemoved removes a deleted credential's score from every day
// from at onward. Earlier days keep counting it.
func (s *StatsService) OnStrengthRemoved(ctx context.Context, score int, at time.Time) error {
	return s.store.ApplyStrengthDelta(ctx, dayKey(at), -score, -1)
}

// OnStrengthChanged swaps a rotated credential's old score for the new one
// from at onward. The population count is unchanged, and the swap is a
// single atomic delta rather than a remove plus add.
func (s *StatsService) OnStrengthChanged(ctx context.Context, oldScore, newScore int, at time.Time) error {
	return s.store.ApplyStrengthDelta(ctx, dayKey(at), newScore-oldScore, 0)
}

// StrengthGraph returns one point per day that saw a credential event.
// Served from the cache; an empty cache with existing history triggers a
// full rebuild first, so the graph survives a wiped cache table.
func (s *StatsService) StrengthGraph(ctx context.Context) ([]GraphPoint, error) {
	entries, err := s.store.ListStrengthCache(ctx)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		entries, err = s.rebuild(ctx)
		if err != nil {
			return nil, err
		}
	}

	points := make([]GraphPoint, 0, len(entries))
	for _, entry := range entries {
		points = append(points, GraphPoint{
			Date:     entry.Date,
			Strength: entry.AverageStrength(),
		})
	}

	return points, nil
}

// Strength returns the per-credential strength detail. The current score is
// the open history row's; a credential always has exactly one.
func (s *StatsService) Strength(ctx context.Context, credentialID string) (*CredentialStrength, error) {
	// History outlives its credential, so a bare history lookup cannot
	// tell a deleted credential from an unknown id.
	if _, err := s.store.GetCredential(ctx, credentialID); err != nil {
		return nil, err
	}

	history, err := s.store.ListHistory(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	detail := &CredentialStrength{
		CredentialID: credentialID,
		History:      history,
	}
	for _, row := range history {
		if row.DeletedAt == nil {
			detail.Current = row.Strength
		}
	}

	return detail, nil
}

// Count returns the number of stored credentials.
func (s *StatsService) Count(ctx context.Context) (int, error) {
	return s.store.CountCredentials(ctx)
}

// rebuild recomputes the whole cache from passphrase history in one forward
// sweep: every history row adds its score on its creation day and subtracts
// it on its deletion day, then a running total walks the days in order.
// A rotation contributes a subtract and an add on the same day, so the
// result matches what the incremental deltas would have produced.
func (s *StatsService) rebuild(ctx context.Context) ([]models.StrengthCacheEntry, error) {
	history, err := s.store.ListAllHistory(ctx)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}

	type delta struct {
		sum   int
		count int
	}
	deltas := make(map[string]delta)

	for _, row := range history {
		day := dayKey(row.CreatedAt)
		d := deltas[day]
		d.sum += row.Strength
		d.count++
		deltas[day] = d

		if row.DeletedAt != nil {
			day := dayKey(*row.DeletedAt)
			d := deltas[day]
			d.sum -= row.Strength
			d.count--
			deltas[day] = d
		}
	}

	days := make([]string, 0, len(deltas))
	for day := range deltas {
		days = append(days, day)
	}
	sort.Strings(days)

	entries := make([]models.StrengthCacheEntry, 0, len(days))
	sum, count := 0, 0
	for _, day := range days {
		sum += deltas[day].sum
		count += deltas[day].count
		entries = append(entries, models.StrengthCacheEntry{
			Date:  day,
			Sum:   sum,
			Count: count,
		})
	}

	if err := s.store.ReplaceStrengthCache(ctx, entries); err != nil {
		return nil, err
	}

	s.logger.Info("strength cache rebuilt", "days", len(entries), "history_rows", len(history))
	return entries, nil
}

package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/standing"
)

type StandingRepository struct {
	mu      sync.RWMutex
	items   map[string]map[string]standing.Standing
	results *BetResultRepository
}

// NewStandingRepository shares results with ApplyResults so folded rows and
// applied revisions change together.
func NewStandingRepository(results *BetResultRepository) *StandingRepository {
	return &StandingRepository{
		items:   make(map[string]map[string]standing.Standing),
		results: results,
	}
}

func (r *StandingRepository) ListByLeague(_ context.Context, leagueID string) ([]standing.Standing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.items[leagueID]
	out := make([]standing.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })

	return out, nil
}

func (r *StandingRepository) UpsertMany(_ context.Context, rows []standing.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.putLocked(rows)
	return nil
}

func (r *StandingRepository) ApplyResults(_ context.Context, rows []standing.Standing, applied map[string]int) error {
	if len(applied) > 0 && r.results == nil {
		return errors.New("standing repository has no bet result store")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(applied) > 0 {
		r.results.mu.Lock()
		defer r.results.mu.Unlock()
		r.results.markAppliedLocked(applied)
	}
	r.putLocked(rows)
	return nil
}

func (r *StandingRepository) putLocked(rows []standing.Standing) {
	for _, row := range rows {
		if r.items[row.LeagueID] == nil {
			r.items[row.LeagueID] = make(map[string]standing.Standing)
		}
		row.Rank = 0
		r.items[row.LeagueID][row.UserID] = row
	}
}

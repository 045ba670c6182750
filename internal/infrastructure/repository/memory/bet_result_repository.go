package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/betresult"
)

type BetResultRepository struct {
	mu    sync.RWMutex
	items map[string]betresult.Result
}

func NewBetResultRepository() *BetResultRepository {
	return &BetResultRepository{items: make(map[string]betresult.Result)}
}

func (r *BetResultRepository) GetByBetID(_ context.Context, betID string) (betresult.Result, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[betID]
	return item, ok, nil
}

func (r *BetResultRepository) Upsert(_ context.Context, result betresult.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[result.BetID] = result
	return nil
}

func (r *BetResultRepository) ListByLeague(_ context.Context, leagueID string) ([]betresult.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]betresult.Result, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return betresult.ReplayBefore(out[i], out[j])
	})

	return out, nil
}

func (r *BetResultRepository) ListByBetIDs(_ context.Context, betIDs []string) ([]betresult.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]betresult.Result, 0, len(betIDs))
	for _, id := range betIDs {
		if item, ok := r.items[id]; ok {
			out = append(out, item)
		}
	}

	return out, nil
}

// MarkApplied records the revision folded into standings per bet. A result
// recalculated in the meantime keeps its newer revision pending.
func (r *BetResultRepository) MarkApplied(_ context.Context, applied map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.markAppliedLocked(applied)
	return nil
}

func (r *BetResultRepository) markAppliedLocked(applied map[string]int) {
	for betID, revision := range applied {
		item, ok := r.items[betID]
		if !ok {
			continue
		}
		item.AppliedRevision = revision
		r.items[betID] = item
	}
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/bet"
)

type BetRepository struct {
	mu    sync.RWMutex
	items map[string]bet.Bet
	keys  map[string]string
}

func NewBetRepository() *BetRepository {
	return &BetRepository{
		items: make(map[string]bet.Bet),
		keys:  make(map[string]string),
	}
}

func (r *BetRepository) GetByID(_ context.Context, leagueID, betID string) (bet.Bet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.items[betID]
	if !ok || b.LeagueID != leagueID {
		return bet.Bet{}, false, nil
	}

	return cloneBet(b), true, nil
}

func (r *BetRepository) GetByKey(_ context.Context, leagueID, userID, matchID string) (bet.Bet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.keys[betKey(leagueID, userID, matchID)]
	if !ok {
		return bet.Bet{}, false, nil
	}

	return cloneBet(r.items[id]), true, nil
}

func (r *BetRepository) Upsert(_ context.Context, b bet.Bet) (bet.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := betKey(b.LeagueID, b.UserID, b.MatchID)
	if id, ok := r.keys[key]; ok {
		stored := r.items[id]
		stored.HomeScore = b.HomeScore
		stored.AwayScore = b.AwayScore
		stored.UpdatedAt = cloneTime(b.UpdatedAt)
		r.items[id] = stored
		return cloneBet(stored), nil
	}

	r.items[b.ID] = cloneBet(b)
	r.keys[key] = b.ID
	return cloneBet(b), nil
}

func (r *BetRepository) Delete(_ context.Context, leagueID, betID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.items[betID]
	if !ok || b.LeagueID != leagueID {
		return nil
	}
	delete(r.items, betID)
	delete(r.keys, betKey(b.LeagueID, b.UserID, b.MatchID))
	return nil
}

func (r *BetRepository) ListByUser(_ context.Context, leagueID, userID string) ([]bet.Bet, error) {
	return r.list(func(b bet.Bet) bool { return b.LeagueID == leagueID && b.UserID == userID }), nil
}

func (r *BetRepository) ListByLeagueAndMatch(_ context.Context, leagueID, matchID string) ([]bet.Bet, error) {
	return r.list(func(b bet.Bet) bool { return b.LeagueID == leagueID && b.MatchID == matchID }), nil
}

func (r *BetRepository) ListByMatch(_ context.Context, matchID string) ([]bet.Bet, error) {
	return r.list(func(b bet.Bet) bool { return b.MatchID == matchID }), nil
}

func (r *BetRepository) list(keep func(bet.Bet) bool) []bet.Bet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bet.Bet, 0)
	for _, b := range r.items {
		if keep(b) {
			out = append(out, cloneBet(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].PlacedAt.Before(out[j].PlacedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out
}

func betKey(leagueID, userID, matchID string) string {
	return leagueID + "::" + userID + "::" + matchID
}

func cloneBet(b bet.Bet) bet.Bet {
	copied := b
	copied.UpdatedAt = cloneTime(b.UpdatedAt)
	return copied
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

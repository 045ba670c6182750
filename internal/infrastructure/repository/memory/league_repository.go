package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/league"
)

type LeagueRepository struct {
	mu      sync.RWMutex
	items   map[string]league.League
	orders  []string
	members map[string][]league.Member
}

func NewLeagueRepository(leagues []league.League, members []league.Member) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	orders := make([]string, 0, len(leagues))

	for _, l := range leagues {
		items[l.ID] = cloneLeague(l)
		orders = append(orders, l.ID)
	}

	byLeague := make(map[string][]league.Member)
	for _, m := range members {
		byLeague[m.LeagueID] = append(byLeague[m.LeagueID], cloneMember(m))
	}

	return &LeagueRepository{
		items:   items,
		orders:  orders,
		members: byLeague,
	}
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}

	return cloneLeague(l), true, nil
}

func (r *LeagueRepository) ListBotsEnabled(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.orders))
	for _, id := range r.orders {
		if l := r.items[id]; l.BotsEnabled {
			out = append(out, cloneLeague(l))
		}
	}

	return out, nil
}

func (r *LeagueRepository) GetMember(_ context.Context, leagueID, userID string) (league.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members[leagueID] {
		if m.UserID == userID {
			return cloneMember(m), true, nil
		}
	}

	return league.Member{}, false, nil
}

func (r *LeagueRepository) ListActiveMembers(_ context.Context, leagueID string) ([]league.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.Member, 0, len(r.members[leagueID]))
	for _, m := range r.members[leagueID] {
		if m.IsActive() {
			out = append(out, cloneMember(m))
		}
	}

	return out, nil
}

// Leave marks a member as departed. Membership changes are owned by another
// service; this exists for seeds and tests.
func (r *LeagueRepository) Leave(leagueID, userID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.members[leagueID] {
		if r.members[leagueID][i].UserID == userID {
			left := at
			r.members[leagueID][i].LeftAt = &left
		}
	}
}

func cloneLeague(l league.League) league.League {
	copied := l
	copied.AllowedCompetitionIDs = slices.Clone(l.AllowedCompetitionIDs)
	return copied
}

func cloneMember(m league.Member) league.Member {
	copied := m
	if m.LeftAt != nil {
		left := *m.LeftAt
		copied.LeftAt = &left
	}
	return copied
}

package cache

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/league"
	basecache "github.com/riskibarqy/prediction-league/internal/platform/cache"
)

// LeagueRepository caches league settings. Membership reads pass through
// because joins and departures must be visible immediately.
type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, "league:id:"+leagueID, func(ctx context.Context) (cachedLeagueByID, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return cachedLeagueByID{}, err
		}
		return cachedLeagueByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	return cloneLeague(cached.value), cached.exists, nil
}

func (r *LeagueRepository) ListBotsEnabled(ctx context.Context) ([]league.League, error) {
	items, err := basecache.Load(ctx, r.cache, "league:bots-enabled", func(ctx context.Context) ([]league.League, error) {
		return r.next.ListBotsEnabled(ctx)
	})
	if err != nil {
		return nil, err
	}

	out := make([]league.League, 0, len(items))
	for _, item := range items {
		out = append(out, cloneLeague(item))
	}
	return out, nil
}

func (r *LeagueRepository) GetMember(ctx context.Context, leagueID, userID string) (league.Member, bool, error) {
	return r.next.GetMember(ctx, leagueID, userID)
}

func (r *LeagueRepository) ListActiveMembers(ctx context.Context, leagueID string) ([]league.Member, error) {
	return r.next.ListActiveMembers(ctx, leagueID)
}

type cachedLeagueByID struct {
	value  league.League
	exists bool
}

func cloneLeague(l league.League) league.League {
	copied := l
	copied.AllowedCompetitionIDs = append([]string(nil), l.AllowedCompetitionIDs...)
	return copied
}

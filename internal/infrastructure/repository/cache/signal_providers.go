package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/signal"
	basecache "github.com/riskibarqy/prediction-league/internal/platform/cache"
)

// SignalProviders memoizes provider reads. Concurrent misses on one key share
// a single upstream call and failures are never cached.
type SignalProviders struct {
	next   signal.Providers
	data   *basecache.Store
	health *basecache.Store
}

// NewSignalProviders caches data reads in data and availability checks in
// health, which usually has a shorter TTL.
func NewSignalProviders(next signal.Providers, data, health *basecache.Store) *SignalProviders {
	return &SignalProviders{next: next, data: data, health: health}
}

// Providers returns the decorated bundle. Categories missing upstream stay
// nil so they remain unavailable.
func (p *SignalProviders) Providers() signal.Providers {
	var out signal.Providers
	if p.next.Form != nil {
		out.Form = p
	}
	if p.next.XG != nil {
		out.XG = p
	}
	if p.next.Odds != nil {
		out.Odds = p
	}
	if p.next.Injuries != nil {
		out.Injuries = p
	}
	if p.next.Elo != nil {
		out.Elo = p
	}
	if p.next.Health != nil {
		out.Health = p
	}
	return out
}

func (p *SignalProviders) GetForm(ctx context.Context, teamID, competitionID string, lookbackMatches int) (signal.Form, error) {
	key := "signal:form:" + competitionID + ":" + teamID + ":" + strconv.Itoa(lookbackMatches)
	return basecache.Load(ctx, p.data, key, func(ctx context.Context) (signal.Form, error) {
		return p.next.Form.GetForm(ctx, teamID, competitionID, lookbackMatches)
	})
}

func (p *SignalProviders) GetTeamXG(ctx context.Context, teamID, competitionID, season string) (signal.ExpectedGoals, error) {
	key := "signal:xg:" + competitionID + ":" + season + ":" + teamID
	return basecache.Load(ctx, p.data, key, func(ctx context.Context) (signal.ExpectedGoals, error) {
		return p.next.XG.GetTeamXG(ctx, teamID, competitionID, season)
	})
}

func (p *SignalProviders) GetOddsForMatch(ctx context.Context, m match.Match) (signal.Odds, error) {
	return basecache.Load(ctx, p.data, "signal:odds:"+m.ID, func(ctx context.Context) (signal.Odds, error) {
		return p.next.Odds.GetOddsForMatch(ctx, m)
	})
}

func (p *SignalProviders) GetTeamInjuries(ctx context.Context, teamID string) (signal.Injuries, error) {
	return basecache.Load(ctx, p.data, "signal:injuries:"+teamID, func(ctx context.Context) (signal.Injuries, error) {
		return p.next.Injuries.GetTeamInjuries(ctx, teamID)
	})
}

func (p *SignalProviders) GetTeamElo(ctx context.Context, teamID string) (signal.Elo, error) {
	return basecache.Load(ctx, p.data, "signal:elo:"+teamID, func(ctx context.Context) (signal.Elo, error) {
		return p.next.Elo.GetTeamElo(ctx, teamID)
	})
}

func (p *SignalProviders) GetDataAvailability(ctx context.Context) (signal.Availability, error) {
	flags, err := basecache.Load(ctx, p.health, "signal:availability", func(ctx context.Context) (signal.Availability, error) {
		return p.next.Health.GetDataAvailability(ctx)
	})
	if err != nil {
		return nil, err
	}

	out := make(signal.Availability, len(flags))
	for k, v := range flags {
		out[k] = v
	}
	return out, nil
}

package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/signal"
)

// SignalStore serves fixed signal data for every provider interface. A
// category is reported available once the store holds any data for it.
type SignalStore struct {
	mu       sync.RWMutex
	form     map[string]signal.Form
	xg       map[string]signal.ExpectedGoals
	odds     map[string]signal.Odds
	injuries map[string]signal.Injuries
	elo      map[string]signal.Elo
}

func NewSignalStore() *SignalStore {
	return &SignalStore{
		form:     make(map[string]signal.Form),
		xg:       make(map[string]signal.ExpectedGoals),
		odds:     make(map[string]signal.Odds),
		injuries: make(map[string]signal.Injuries),
		elo:      make(map[string]signal.Elo),
	}
}

// Providers exposes the store through the provider bundle.
func (s *SignalStore) Providers() signal.Providers {
	return signal.Providers{
		Form:     s,
		XG:       s,
		Odds:     s,
		Injuries: s,
		Elo:      s,
		Health:   s,
	}
}

func (s *SignalStore) PutForm(v signal.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form[v.TeamID] = v
}

func (s *SignalStore) PutXG(v signal.ExpectedGoals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.xg[v.TeamID] = v
}

func (s *SignalStore) PutOdds(v signal.Odds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.odds[v.MatchID] = v
}

func (s *SignalStore) PutInjuries(v signal.Injuries) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.injuries[v.TeamID] = v
}

func (s *SignalStore) PutElo(v signal.Elo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elo[v.TeamID] = v
}

func (s *SignalStore) GetForm(_ context.Context, teamID, _ string, _ int) (signal.Form, error) {
	return lookup(&s.mu, s.form, teamID, signal.CategoryForm)
}

func (s *SignalStore) GetTeamXG(_ context.Context, teamID, _, _ string) (signal.ExpectedGoals, error) {
	return lookup(&s.mu, s.xg, teamID, signal.CategoryXG)
}

func (s *SignalStore) GetOddsForMatch(_ context.Context, m match.Match) (signal.Odds, error) {
	return lookup(&s.mu, s.odds, m.ID, signal.CategoryOdds)
}

func (s *SignalStore) GetTeamInjuries(_ context.Context, teamID string) (signal.Injuries, error) {
	return lookup(&s.mu, s.injuries, teamID, signal.CategoryInjuries)
}

func (s *SignalStore) GetTeamElo(_ context.Context, teamID string) (signal.Elo, error) {
	return lookup(&s.mu, s.elo, teamID, signal.CategoryElo)
}

func (s *SignalStore) GetDataAvailability(_ context.Context) (signal.Availability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return signal.Availability{
		signal.CategoryForm:     len(s.form) > 0,
		signal.CategoryXG:       len(s.xg) > 0,
		signal.CategoryOdds:     len(s.odds) > 0,
		signal.CategoryInjuries: len(s.injuries) > 0,
		signal.CategoryLineups:  len(s.injuries) > 0,
		signal.CategoryElo:      len(s.elo) > 0,
	}, nil
}

func lookup[T any](mu *sync.RWMutex, items map[string]T, key string, category signal.Category) (T, error) {
	mu.RLock()
	defer mu.RUnlock()

	v, ok := items[key]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s for %s", signal.ErrNoData, category, key)
	}
	return v, nil
}

package prediction

import (
	"context"
	"errors"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/signal"
)

var errProviderDown = errors.New("provider down")

type callCounter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *callCounter) add(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[key]++
}

func (c *callCounter) get(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[key]
}

type stubProviders struct {
	counter  callCounter
	failing  map[signal.Category]bool
	panicOn  map[signal.Category]bool
	forms    map[string]signal.Form
	xgs      map[string]signal.ExpectedGoals
	injuries map[string]signal.Injuries
	elos     map[string]signal.Elo
	odds     signal.Odds
	health   signal.Availability
}

func newStubProviders() *stubProviders {
	return &stubProviders{
		failing: map[signal.Category]bool{},
		panicOn: map[signal.Category]bool{},
		forms: map[string]signal.Form{
			"home": {TeamID: "home", PointsPerMatch: 2.2, GoalsForPerMatch: 1.9, GoalsAgainstPerMatch: 0.8, HomeWinRate: 0.7, AwayWinRate: 0.4, Streak: 3},
			"away": {TeamID: "away", PointsPerMatch: 1.1, GoalsForPerMatch: 1.0, GoalsAgainstPerMatch: 1.6, HomeWinRate: 0.4, AwayWinRate: 0.2, Streak: -2},
		},
		xgs: map[string]signal.ExpectedGoals{
			"home": {TeamID: "home", XGPerMatch: 1.8, XGAgainstPerMatch: 0.9, Overperformance: 0.1},
			"away": {TeamID: "away", XGPerMatch: 1.0, XGAgainstPerMatch: 1.7, Overperformance: -0.2},
		},
		injuries: map[string]signal.Injuries{
			"home": {TeamID: "home", ImpactScore: 0.1, MissingStarters: 1},
			"away": {TeamID: "away", ImpactScore: 0.5, MissingStarters: 3},
		},
		elos: map[string]signal.Elo{
			"home": {TeamID: "home", Rating: 1720, Rank: 4},
			"away": {TeamID: "away", Rating: 1580, Rank: 15},
		},
		odds:   signal.Odds{MatchID: "m1", Favorite: signal.FavoriteHome, Confidence: 0.6},
		health: signal.AllAvailable(),
	}
}

func (p *stubProviders) check(category signal.Category) error {
	if p.panicOn[category] {
		panic("provider exploded")
	}
	if p.failing[category] {
		return errProviderDown
	}
	return nil
}

func (p *stubProviders) GetForm(_ context.Context, teamID, _ string, _ int) (signal.Form, error) {
	p.counter.add("form:" + teamID)
	if err := p.check(signal.CategoryForm); err != nil {
		return signal.Form{}, err
	}
	return p.forms[teamID], nil
}

func (p *stubProviders) GetTeamXG(_ context.Context, teamID, _, _ string) (signal.ExpectedGoals, error) {
	p.counter.add("xg:" + teamID)
	if err := p.check(signal.CategoryXG); err != nil {
		return signal.ExpectedGoals{}, err
	}
	return p.xgs[teamID], nil
}

func (p *stubProviders) GetOddsForMatch(_ context.Context, m match.Match) (signal.Odds, error) {
	p.counter.add("odds:" + m.ID)
	if err := p.check(signal.CategoryOdds); err != nil {
		return signal.Odds{}, err
	}
	return p.odds, nil
}

func (p *stubProviders) GetTeamInjuries(_ context.Context, teamID string) (signal.Injuries, error) {
	p.counter.add("injuries:" + teamID)
	if err := p.check(signal.CategoryInjuries); err != nil {
		return signal.Injuries{}, err
	}
	return p.injuries[teamID], nil
}

func (p *stubProviders) GetTeamElo(_ context.Context, teamID string) (signal.Elo, error) {
	p.counter.add("elo:" + teamID)
	if err := p.check(signal.CategoryElo); err != nil {
		return signal.Elo{}, err
	}
	return p.elos[teamID], nil
}

func (p *stubProviders) GetDataAvailability(context.Context) (signal.Availability, error) {
	return p.health, nil
}

func (p *stubProviders) bundle() signal.Providers {
	return signal.Providers{Form: p, XG: p, Odds: p, Injuries: p, Elo: p, Health: p}
}

func testMatch() match.Match {
	return match.Match{ID: "m1", CompetitionID: "PL", Season: "2025", HomeTeamID: "home", AwayTeamID: "away", Status: match.StatusScheduled}
}

type recordingStrategy struct {
	kind  Kind
	score Score
	calls int
}

func (s *recordingStrategy) Kind() Kind { return s.kind }

func (s *recordingStrategy) Predict(context.Context, match.Match, Config) (Score, error) {
	s.calls++
	return s.score, nil
}

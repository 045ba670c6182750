package memory

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/bot"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/signal"
)

const (
	LeagueIDOffice  = "league-office-2025"
	LeagueIDFriends = "league-friends-2025"

	CompetitionPremierLeague = "PL"
	CompetitionChampions     = "CL"
)

func SeedLeagues(now time.Time) []league.League {
	return []league.League{
		{
			ID:                     LeagueIDOffice,
			OwnerUserID:            "user-alice",
			Name:                   "Office Predictor",
			MaxMembers:             20,
			IsPublic:               false,
			PointsExactMatch:       3,
			PointsCorrectResult:    1,
			BettingDeadlineMinutes: 15,
			AllowedCompetitionIDs:  []string{CompetitionPremierLeague},
			BotsEnabled:            true,
			CreatedAt:              now.AddDate(0, -1, 0),
		},
		{
			ID:                     LeagueIDFriends,
			OwnerUserID:            "user-bob",
			Name:                   "Sunday Friends",
			MaxMembers:             10,
			IsPublic:               true,
			PointsExactMatch:       5,
			PointsCorrectResult:    2,
			BettingDeadlineMinutes: 60,
			CreatedAt:              now.AddDate(0, -1, 0),
		},
	}
}

func SeedMembers(now time.Time) []league.Member {
	joined := now.AddDate(0, -1, 0)
	return []league.Member{
		{LeagueID: LeagueIDOffice, UserID: "user-alice", JoinedAt: joined},
		{LeagueID: LeagueIDOffice, UserID: "user-bob", JoinedAt: joined},
		{LeagueID: LeagueIDOffice, UserID: "bot-user-homer", IsBot: true, JoinedAt: joined},
		{LeagueID: LeagueIDOffice, UserID: "bot-user-analyst", IsBot: true, JoinedAt: joined},
		{LeagueID: LeagueIDFriends, UserID: "user-bob", JoinedAt: joined},
		{LeagueID: LeagueIDFriends, UserID: "user-carol", JoinedAt: joined},
	}
}

func SeedUserIDs() []string {
	return []string{"user-alice", "user-bob", "user-carol", "bot-user-homer", "bot-user-analyst"}
}

func SeedBots() []bot.Bot {
	return []bot.Bot{
		{ID: "bot-homer", UserID: "bot-user-homer", Name: "Homer", Strategy: "home_favorer", Active: true},
		{
			ID:       "bot-analyst",
			UserID:   "bot-user-analyst",
			Name:     "The Analyst",
			Strategy: "stats_analyst",
			Config:   []byte(`{"profile":"balanced"}`),
			Active:   true,
		},
	}
}

func SeedMatches(now time.Time) []match.Match {
	day := now.UTC().Truncate(24 * time.Hour)
	two, one := 2, 1
	return []match.Match{
		{
			ID:            "match-ars-liv-r28",
			CompetitionID: CompetitionPremierLeague,
			Season:        "2025",
			HomeTeamID:    "team-ars",
			AwayTeamID:    "team-liv",
			KickoffAt:     day.Add(-48*time.Hour + 15*time.Hour),
			Status:        match.StatusFinished,
			HomeScore:     &two,
			AwayScore:     &one,
		},
		{
			ID:            "match-che-mci-r29",
			CompetitionID: CompetitionPremierLeague,
			Season:        "2025",
			HomeTeamID:    "team-che",
			AwayTeamID:    "team-mci",
			KickoffAt:     day.Add(24*time.Hour + 17*time.Hour + 30*time.Minute),
			Status:        match.StatusScheduled,
		},
		{
			ID:            "match-liv-ars-cl",
			CompetitionID: CompetitionChampions,
			Season:        "2025",
			HomeTeamID:    "team-liv",
			AwayTeamID:    "team-ars",
			KickoffAt:     day.Add(48*time.Hour + 20*time.Hour),
			Status:        match.StatusTimed,
		},
	}
}

// SeedSignals loads a small, partly incomplete signal set so the ensemble
// exercises its degradation path.
func SeedSignals(store *SignalStore, now time.Time) {
	teams := []struct {
		id      string
		ppm     float64
		gf, ga  float64
		streak  int
		xg, xga float64
		elo     float64
	}{
		{"team-ars", 2.2, 2.1, 0.8, 3, 1.9, 0.9, 1905},
		{"team-liv", 2.0, 2.3, 1.1, 1, 2.0, 1.1, 1880},
		{"team-che", 1.5, 1.6, 1.4, -1, 1.5, 1.3, 1790},
		{"team-mci", 2.1, 2.2, 0.9, 2, 2.2, 0.8, 1920},
	}
	for _, t := range teams {
		store.PutForm(signal.Form{
			TeamID:               t.id,
			Matches:              5,
			PointsPerMatch:       t.ppm,
			GoalsForPerMatch:     t.gf,
			GoalsAgainstPerMatch: t.ga,
			HomeWinRate:          0.6,
			AwayWinRate:          0.4,
			Streak:               t.streak,
			AsOf:                 now,
		})
		store.PutXG(signal.ExpectedGoals{TeamID: t.id, XGPerMatch: t.xg, XGAgainstPerMatch: t.xga, AsOf: now})
		store.PutElo(signal.Elo{TeamID: t.id, Rating: t.elo, AsOf: now})
	}
	store.PutOdds(signal.Odds{MatchID: "match-che-mci-r29", Favorite: signal.FavoriteAway, Confidence: 0.55, AsOf: now})
}

package httpapi

import (
	"context"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/standing"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type placeBetRequest struct {
	HomeScore *int `json:"homeScore" validate:"required"`
	AwayScore *int `json:"awayScore" validate:"required"`
}

type calculateResultsJobRequest struct {
	MatchID    string `json:"match_id" validate:"required"`
	DispatchID string `json:"dispatch_id"`
}

type recalculateStandingsJobRequest struct {
	LeagueIDs  []string `json:"league_ids" validate:"required,min=1,dive,required"`
	Full       bool     `json:"full"`
	DispatchID string   `json:"dispatch_id"`
}

type runBotsJobRequest struct {
	DispatchID string `json:"dispatch_id"`
}

type betResultDTO struct {
	Points       int       `json:"points"`
	IsExact      bool      `json:"isExact"`
	IsCorrect    bool      `json:"isCorrect"`
	CalculatedAt time.Time `json:"calculatedAt"`
}

type betDTO struct {
	ID        string        `json:"id"`
	LeagueID  string        `json:"leagueId"`
	UserID    string        `json:"userId"`
	MatchID   string        `json:"matchId"`
	HomeScore int           `json:"homeScore"`
	AwayScore int           `json:"awayScore"`
	PlacedAt  time.Time     `json:"placedAt"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
	Result    *betResultDTO `json:"result,omitempty"`
}

type standingDTO struct {
	Rank          int        `json:"rank"`
	UserID        string     `json:"userId"`
	TotalPoints   int        `json:"totalPoints"`
	BetsPlaced    int        `json:"betsPlaced"`
	ExactCount    int        `json:"exactCount"`
	CorrectCount  int        `json:"correctCount"`
	CurrentStreak int        `json:"currentStreak"`
	BestStreak    int        `json:"bestStreak"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

func betViewToDTO(ctx context.Context, v usecase.BetView) betDTO {
	_, span := startSpan(ctx, "httpapi.betViewToDTO")
	defer span.End()

	out := betDTO{
		ID:        v.Bet.ID,
		LeagueID:  v.Bet.LeagueID,
		UserID:    v.Bet.UserID,
		MatchID:   v.Bet.MatchID,
		HomeScore: v.Bet.HomeScore,
		AwayScore: v.Bet.AwayScore,
		PlacedAt:  v.Bet.PlacedAt,
		UpdatedAt: v.Bet.UpdatedAt,
	}
	if v.Result != nil {
		out.Result = &betResultDTO{
			Points:       v.Result.Points,
			IsExact:      v.Result.IsExact,
			IsCorrect:    v.Result.IsCorrect,
			CalculatedAt: v.Result.CalculatedAt,
		}
	}
	return out
}

func standingToDTO(s standing.Standing) standingDTO {
	out := standingDTO{
		Rank:          s.Rank,
		UserID:        s.UserID,
		TotalPoints:   s.TotalPoints,
		BetsPlaced:    s.BetsPlaced,
		ExactCount:    s.ExactCount,
		CorrectCount:  s.CorrectCount,
		CurrentStreak: s.CurrentStreak,
		BestStreak:    s.BestStreak,
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt
		out.UpdatedAt = &updatedAt
	}
	return out
}

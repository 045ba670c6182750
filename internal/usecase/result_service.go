package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/betresult"
	"github.com/riskibarqy/prediction-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

const defaultStandingsJobBucket = 5 * time.Minute

type CalculateResultsSummary struct {
	MatchID   string   `json:"match_id"`
	Scored    int      `json:"scored"`
	Changed   int      `json:"changed"`
	LeagueIDs []string `json:"league_ids"`
}

type ResultService struct {
	leagueRepo league.Repository
	matchRepo  match.Repository
	betRepo    bet.Repository
	resultRepo betresult.Repository
	jobs       *JobDispatcher
	clock      clockwork.Clock
	logger     *logging.Logger
}

func NewResultService(
	leagueRepo league.Repository,
	matchRepo match.Repository,
	betRepo bet.Repository,
	resultRepo betresult.Repository,
	jobs *JobDispatcher,
	clock clockwork.Clock,
	logger *logging.Logger,
) *ResultService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ResultService{
		leagueRepo: leagueRepo,
		matchRepo:  matchRepo,
		betRepo:    betRepo,
		resultRepo: resultRepo,
		jobs:       jobs,
		clock:      clock,
		logger:     logger,
	}
}

// CalculateMatchResults scores every bet on a finished match across all
// leagues. Re-running it is harmless: unchanged outcomes keep their revision.
func (s *ResultService) CalculateMatchResults(ctx context.Context, matchID string) (CalculateResultsSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.CalculateMatchResults")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return CalculateResultsSummary{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return CalculateResultsSummary{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return CalculateResultsSummary{}, fmt.Errorf("%w: match=%s", ErrMatchNotFound, matchID)
	}
	actualHome, actualAway, ok := m.FinalScore()
	if !ok {
		return CalculateResultsSummary{}, fmt.Errorf("%w: match=%s status=%s", ErrMatchNotFinalized, m.ID, m.Status)
	}

	bets, err := s.betRepo.ListByMatch(ctx, m.ID)
	if err != nil {
		return CalculateResultsSummary{}, fmt.Errorf("list bets by match: %w", err)
	}

	summary := CalculateResultsSummary{MatchID: m.ID, LeagueIDs: []string{}}
	if len(bets) == 0 {
		return summary, nil
	}

	betIDs := make([]string, 0, len(bets))
	for _, item := range bets {
		betIDs = append(betIDs, item.ID)
	}
	existing, err := s.resultRepo.ListByBetIDs(ctx, betIDs)
	if err != nil {
		return CalculateResultsSummary{}, fmt.Errorf("list existing results: %w", err)
	}
	existingByBet := make(map[string]betresult.Result, len(existing))
	for _, r := range existing {
		existingByBet[r.BetID] = r
	}

	rules := make(map[string]betresult.Rule)
	touched := make(map[string]struct{})
	unapplied := make(map[string]struct{})
	revisionSum := 0
	now := s.clock.Now().UTC()

	for _, item := range bets {
		rule, ok := rules[item.LeagueID]
		if !ok {
			lg, exists, err := s.leagueRepo.GetByID(ctx, item.LeagueID)
			if err != nil {
				return summary, fmt.Errorf("get league=%s: %w", item.LeagueID, err)
			}
			if !exists {
				s.logger.WarnContext(ctx, "skip bets of unknown league",
					"league_id", item.LeagueID,
					"match_id", m.ID,
				)
				rules[item.LeagueID] = betresult.Rule{}
				continue
			}
			rule = betresult.Rule{
				PointsExactMatch:    lg.PointsExactMatch,
				PointsCorrectResult: lg.PointsCorrectResult,
			}
			rules[item.LeagueID] = rule
		}

		score := rule.Evaluate(item.HomeScore, item.AwayScore, actualHome, actualAway)
		next := betresult.Result{
			BetID:          item.ID,
			LeagueID:       item.LeagueID,
			UserID:         item.UserID,
			MatchID:        m.ID,
			MatchKickoffAt: m.KickoffAt,
			Points:         score.Points,
			IsExact:        score.IsExact,
			IsCorrect:      score.IsCorrect,
			CalculatedAt:   now,
			Revision:       1,
		}

		prev, had := existingByBet[item.ID]
		if had {
			next.AppliedRevision = prev.AppliedRevision
			next.Revision = prev.Revision
			if !prev.SameOutcome(next) {
				next.Revision = prev.Revision + 1
			}
		}
		summary.Scored++
		revisionSum += next.Revision
		if had && next.Revision == prev.Revision && prev.MatchKickoffAt.Equal(next.MatchKickoffAt) {
			if prev.IsPending() || prev.IsStale() {
				unapplied[item.LeagueID] = struct{}{}
			}
			continue
		}

		if err := s.resultRepo.Upsert(ctx, next); err != nil {
			return summary, fmt.Errorf("upsert result bet=%s: %w", item.ID, err)
		}
		summary.Changed++
		touched[item.LeagueID] = struct{}{}
	}

	for leagueID := range touched {
		summary.LeagueIDs = append(summary.LeagueIDs, leagueID)
	}
	sort.Strings(summary.LeagueIDs)

	// leagues with results not yet folded are refreshed again, so a lost
	// standings job is retried by the next run.
	refresh := make([]string, 0, len(touched)+len(unapplied))
	refresh = append(refresh, summary.LeagueIDs...)
	for leagueID := range unapplied {
		if _, ok := touched[leagueID]; !ok {
			refresh = append(refresh, leagueID)
		}
	}
	sort.Strings(refresh)

	if len(refresh) > 0 {
		s.enqueueStandings(ctx, m.ID, revisionSum, refresh)
	}

	s.logger.InfoContext(ctx, "match results calculated",
		"match_id", m.ID,
		"scored", summary.Scored,
		"changed", summary.Changed,
		"leagues", len(summary.LeagueIDs),
	)
	return summary, nil
}

// enqueueStandings scopes the dedup id by the match's revision total, which
// grows with every correction, so a corrected score is never collapsed into
// the dispatch of the score it replaces.
func (s *ResultService) enqueueStandings(ctx context.Context, matchID string, revisionSum int, leagueIDs []string) {
	if s.jobs == nil {
		return
	}
	_, err := s.jobs.Enqueue(ctx, JobRequest{
		Job:     jobscheduler.JobRecalculateStandings,
		Scope:   fmt.Sprintf("%s-r%d", matchID, revisionSum),
		Payload: map[string]any{"league_ids": leagueIDs, "match_id": matchID},
		Bucket:  defaultStandingsJobBucket,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "enqueue standings recalculation failed",
			"match_id", matchID,
			"error", err,
		)
	}
}

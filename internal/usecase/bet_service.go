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
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

type PlaceBetInput struct {
	LeagueID  string
	UserID    string
	MatchID   string
	HomeScore int
	AwayScore int
}

// BetView is a bet joined with its result once the match has been scored.
type BetView struct {
	Bet    bet.Bet
	Result *betresult.Result
}

type BetService struct {
	leagueRepo league.Repository
	matchRepo  match.Repository
	betRepo    bet.Repository
	resultRepo betresult.Repository
	idGen      id.Generator
	clock      clockwork.Clock
	logger     *logging.Logger
}

func NewBetService(
	leagueRepo league.Repository,
	matchRepo match.Repository,
	betRepo bet.Repository,
	resultRepo betresult.Repository,
	idGen id.Generator,
	clock clockwork.Clock,
	logger *logging.Logger,
) *BetService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}

	return &BetService{
		leagueRepo: leagueRepo,
		matchRepo:  matchRepo,
		betRepo:    betRepo,
		resultRepo: resultRepo,
		idGen:      idGen,
		clock:      clock,
		logger:     logger,
	}
}

// PlaceBet creates the caller's bet on a match or replaces its scores.
func (s *BetService) PlaceBet(ctx context.Context, input PlaceBetInput) (bet.Bet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BetService.PlaceBet")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.MatchID = strings.TrimSpace(input.MatchID)

	if input.HomeScore < 0 || input.AwayScore < 0 {
		return bet.Bet{}, ErrInvalidPrediction
	}
	if input.LeagueID == "" {
		return bet.Bet{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if input.UserID == "" {
		return bet.Bet{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.MatchID == "" {
		return bet.Bet{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	lg, err := s.getLeague(ctx, input.LeagueID)
	if err != nil {
		return bet.Bet{}, err
	}
	m, err := s.getMatch(ctx, input.MatchID)
	if err != nil {
		return bet.Bet{}, err
	}
	if err := s.requireActiveMember(ctx, lg.ID, input.UserID); err != nil {
		return bet.Bet{}, err
	}
	if !lg.AllowsCompetition(m.CompetitionID) {
		return bet.Bet{}, fmt.Errorf("%w: competition=%s is not part of league=%s", ErrInvalidInput, m.CompetitionID, lg.ID)
	}

	now := s.clock.Now().UTC()
	if err := checkBettingWindow(lg, m, now); err != nil {
		return bet.Bet{}, err
	}

	existing, exists, err := s.betRepo.GetByKey(ctx, lg.ID, input.UserID, m.ID)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("get existing bet: %w", err)
	}

	item := bet.Bet{
		LeagueID:  lg.ID,
		UserID:    input.UserID,
		MatchID:   m.ID,
		HomeScore: input.HomeScore,
		AwayScore: input.AwayScore,
	}
	if exists {
		item.ID = existing.ID
		item.PlacedAt = existing.PlacedAt
		item.UpdatedAt = &now
	} else {
		item.ID, err = s.idGen.NewID()
		if err != nil {
			return bet.Bet{}, fmt.Errorf("generate bet id: %w", err)
		}
		item.PlacedAt = now
	}
	if err := item.Validate(); err != nil {
		return bet.Bet{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	stored, err := s.betRepo.Upsert(ctx, item)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("upsert bet: %w", err)
	}

	s.logger.InfoContext(ctx, "bet placed",
		"league_id", stored.LeagueID,
		"user_id", stored.UserID,
		"match_id", stored.MatchID,
		"bet_id", stored.ID,
		"updated", exists,
	)
	return stored, nil
}

// DeleteBet removes a bet while its betting window is still open. Only the
// owner may delete it.
func (s *BetService) DeleteBet(ctx context.Context, leagueID, betID, actorUserID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.BetService.DeleteBet")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	betID = strings.TrimSpace(betID)
	actorUserID = strings.TrimSpace(actorUserID)
	if leagueID == "" || betID == "" || actorUserID == "" {
		return fmt.Errorf("%w: league id, bet id and user id are required", ErrInvalidInput)
	}

	item, exists, err := s.betRepo.GetByID(ctx, leagueID, betID)
	if err != nil {
		return fmt.Errorf("get bet: %w", err)
	}
	if !exists {
		return ErrBetNotFound
	}
	if item.UserID != actorUserID {
		return ErrNotBetOwner
	}

	lg, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return err
	}
	m, err := s.getMatch(ctx, item.MatchID)
	if err != nil {
		return err
	}
	if err := checkBettingWindow(lg, m, s.clock.Now().UTC()); err != nil {
		return err
	}

	if err := s.betRepo.Delete(ctx, leagueID, betID); err != nil {
		return fmt.Errorf("delete bet: %w", err)
	}

	s.logger.InfoContext(ctx, "bet deleted",
		"league_id", leagueID,
		"user_id", actorUserID,
		"bet_id", betID,
	)
	return nil
}

// ListMyBets returns the member's bets ordered by match kickoff.
func (s *BetService) ListMyBets(ctx context.Context, leagueID, userID string) ([]BetView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BetService.ListMyBets")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" || userID == "" {
		return nil, fmt.Errorf("%w: league id and user id are required", ErrInvalidInput)
	}

	if _, err := s.getLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	if err := s.requireActiveMember(ctx, leagueID, userID); err != nil {
		return nil, err
	}

	items, err := s.betRepo.ListByUser(ctx, leagueID, userID)
	if err != nil {
		return nil, fmt.Errorf("list bets by user: %w", err)
	}

	matchIDs := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.MatchID]; ok {
			continue
		}
		seen[item.MatchID] = struct{}{}
		matchIDs = append(matchIDs, item.MatchID)
	}
	matches, err := s.matchRepo.ListByIDs(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("list matches by ids: %w", err)
	}
	kickoffByMatch := make(map[string]int64, len(matches))
	for _, m := range matches {
		kickoffByMatch[m.ID] = m.KickoffAt.UnixNano()
	}

	sort.SliceStable(items, func(i, j int) bool {
		left, right := kickoffByMatch[items[i].MatchID], kickoffByMatch[items[j].MatchID]
		if left != right {
			return left < right
		}
		return items[i].MatchID < items[j].MatchID
	})

	return s.attachResults(ctx, items)
}

// ListMatchBets returns every bet on a match in the league. The list stays
// empty until the league's betting deadline for the match has passed.
func (s *BetService) ListMatchBets(ctx context.Context, leagueID, matchID, viewerUserID string) ([]BetView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BetService.ListMatchBets")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	matchID = strings.TrimSpace(matchID)
	viewerUserID = strings.TrimSpace(viewerUserID)
	if leagueID == "" || matchID == "" || viewerUserID == "" {
		return nil, fmt.Errorf("%w: league id, match id and user id are required", ErrInvalidInput)
	}

	lg, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveMember(ctx, leagueID, viewerUserID); err != nil {
		return nil, err
	}
	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if lg.IsBettingOpen(s.clock.Now().UTC(), m.KickoffAt) {
		return []BetView{}, nil
	}

	items, err := s.betRepo.ListByLeagueAndMatch(ctx, leagueID, matchID)
	if err != nil {
		return nil, fmt.Errorf("list bets by match: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UserID < items[j].UserID
	})

	return s.attachResults(ctx, items)
}

func (s *BetService) attachResults(ctx context.Context, items []bet.Bet) ([]BetView, error) {
	out := make([]BetView, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}

	betIDs := make([]string, 0, len(items))
	for _, item := range items {
		betIDs = append(betIDs, item.ID)
	}
	results, err := s.resultRepo.ListByBetIDs(ctx, betIDs)
	if err != nil {
		return nil, fmt.Errorf("list bet results: %w", err)
	}
	resultByBet := make(map[string]betresult.Result, len(results))
	for _, r := range results {
		resultByBet[r.BetID] = r
	}

	for _, item := range items {
		view := BetView{Bet: item}
		if r, ok := resultByBet[item.ID]; ok {
			view.Result = &r
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *BetService) getLeague(ctx context.Context, leagueID string) (league.League, error) {
	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return lg, nil
}

func (s *BetService) getMatch(ctx context.Context, matchID string) (match.Match, error) {
	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrMatchNotFound, matchID)
	}
	return m, nil
}

func (s *BetService) requireActiveMember(ctx context.Context, leagueID, userID string) error {
	return requireActiveMember(ctx, s.leagueRepo, leagueID, userID)
}

func requireActiveMember(ctx context.Context, repo league.Repository, leagueID, userID string) error {
	member, exists, err := repo.GetMember(ctx, leagueID, userID)
	if err != nil {
		return fmt.Errorf("get league member: %w", err)
	}
	if !exists || !member.IsActive() {
		return ErrNotALeagueMember
	}
	return nil
}

func checkBettingWindow(lg league.League, m match.Match, now time.Time) error {
	if !m.IsPreKickoff() {
		return ErrMatchAlreadyStarted
	}
	if !lg.IsBettingOpen(now, m.KickoffAt) {
		return ErrDeadlinePassed
	}
	return nil
}

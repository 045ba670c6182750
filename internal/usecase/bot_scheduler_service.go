package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/bot"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/prediction"
)

const defaultBotLookAhead = 72 * time.Hour

type StrategyResolver interface {
	Resolve(id string) prediction.Strategy
}

type BetPlacer interface {
	PlaceBet(ctx context.Context, input PlaceBetInput) (bet.Bet, error)
}

type BotSchedulerConfig struct {
	LookAhead time.Duration
}

type BotRunSummary struct {
	Leagues    int `json:"leagues"`
	Matches    int `json:"matches"`
	BetsPlaced int `json:"bets_placed"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

type BotSchedulerService struct {
	leagueRepo league.Repository
	botRepo    bot.Repository
	matchRepo  match.Repository
	betRepo    bet.Repository
	strategies StrategyResolver
	placer     BetPlacer
	cfg        BotSchedulerConfig
	clock      clockwork.Clock
	logger     *logging.Logger
}

func NewBotSchedulerService(
	leagueRepo league.Repository,
	botRepo bot.Repository,
	matchRepo match.Repository,
	betRepo bet.Repository,
	strategies StrategyResolver,
	placer BetPlacer,
	cfg BotSchedulerConfig,
	clock clockwork.Clock,
	logger *logging.Logger,
) *BotSchedulerService {
	if cfg.LookAhead <= 0 {
		cfg.LookAhead = defaultBotLookAhead
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &BotSchedulerService{
		leagueRepo: leagueRepo,
		botRepo:    botRepo,
		matchRepo:  matchRepo,
		betRepo:    betRepo,
		strategies: strategies,
		placer:     placer,
		cfg:        cfg,
		clock:      clock,
		logger:     logger.Named("bot-scheduler"),
	}
}

// RunOnce places one bet per active bot on every upcoming match that is
// still open for betting in its league. Failures of a single bot or match
// are logged and counted; only listing leagues or matches aborts the run.
func (s *BotSchedulerService) RunOnce(ctx context.Context) (BotRunSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BotSchedulerService.RunOnce")
	defer span.End()

	now := s.clock.Now().UTC()
	summary := BotRunSummary{}

	leagues, err := s.leagueRepo.ListBotsEnabled(ctx)
	if err != nil {
		return summary, fmt.Errorf("list bot leagues: %w", err)
	}
	if len(leagues) == 0 {
		return summary, nil
	}

	upcoming, err := s.matchRepo.ListUpcoming(ctx, now, now.Add(s.cfg.LookAhead))
	if err != nil {
		return summary, fmt.Errorf("list upcoming matches: %w", err)
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		if !upcoming[i].KickoffAt.Equal(upcoming[j].KickoffAt) {
			return upcoming[i].KickoffAt.Before(upcoming[j].KickoffAt)
		}
		return upcoming[i].ID < upcoming[j].ID
	})

	sort.SliceStable(leagues, func(i, j int) bool { return leagues[i].ID < leagues[j].ID })
	for _, lg := range leagues {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Leagues++
		s.runLeague(ctx, lg, upcoming, now, &summary)
	}

	s.logger.InfoContext(ctx, "bot run finished",
		"leagues", summary.Leagues,
		"matches", summary.Matches,
		"bets_placed", summary.BetsPlaced,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (s *BotSchedulerService) runLeague(ctx context.Context, lg league.League, upcoming []match.Match, now time.Time, summary *BotRunSummary) {
	bots, err := s.leagueBots(ctx, lg.ID)
	if err != nil {
		summary.Failed++
		s.logger.WarnContext(ctx, "load league bots failed", "league_id", lg.ID, "error", err)
		return
	}
	if len(bots) == 0 {
		return
	}

	for _, m := range upcoming {
		if !m.IsPreKickoff() || !lg.AllowsCompetition(m.CompetitionID) || !lg.IsBettingOpen(now, m.KickoffAt) {
			continue
		}
		summary.Matches++

		for _, b := range bots {
			placed, err := s.placeBotBet(ctx, lg, m, b)
			switch {
			case err != nil:
				summary.Failed++
				s.logger.WarnContext(ctx, "bot bet failed",
					"league_id", lg.ID,
					"match_id", m.ID,
					"bot_id", b.ID,
					"strategy", b.Strategy,
					"error", err,
				)
			case placed:
				summary.BetsPlaced++
			default:
				summary.Skipped++
			}
		}
	}
}

func (s *BotSchedulerService) leagueBots(ctx context.Context, leagueID string) ([]bot.Bot, error) {
	members, err := s.leagueRepo.ListActiveMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}
	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		if m.IsBot && m.IsActive() {
			userIDs = append(userIDs, m.UserID)
		}
	}
	if len(userIDs) == 0 {
		return nil, nil
	}

	bots, err := s.botRepo.ListActiveByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list active bots: %w", err)
	}
	active := make([]bot.Bot, 0, len(bots))
	for _, b := range bots {
		if b.Active {
			active = append(active, b)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, nil
}

func (s *BotSchedulerService) placeBotBet(ctx context.Context, lg league.League, m match.Match, b bot.Bot) (bool, error) {
	_, exists, err := s.betRepo.GetByKey(ctx, lg.ID, b.UserID, m.ID)
	if err != nil {
		return false, fmt.Errorf("get existing bet: %w", err)
	}
	if exists {
		return false, nil
	}

	strategy := s.strategies.Resolve(b.Strategy)
	cfg, err := prediction.ParseConfig(strategy.Kind(), b.Config)
	if err != nil {
		s.logger.WarnContext(ctx, "bot config invalid, using defaults",
			"bot_id", b.ID,
			"strategy", strategy.Kind(),
			"error", err,
		)
	}

	score, err := strategy.Predict(ctx, m, cfg)
	if err != nil {
		return false, fmt.Errorf("predict with %s: %w", strategy.Kind(), err)
	}

	if _, err := s.placer.PlaceBet(ctx, PlaceBetInput{
		LeagueID:  lg.ID,
		UserID:    b.UserID,
		MatchID:   m.ID,
		HomeScore: score.Home,
		AwayScore: score.Away,
	}); err != nil {
		if errors.Is(err, ErrDeadlinePassed) || errors.Is(err, ErrMatchAlreadyStarted) {
			return false, nil
		}
		return false, fmt.Errorf("place bet: %w", err)
	}

	if err := s.botRepo.TouchActivity(ctx, b.ID, s.clock.Now().UTC()); err != nil {
		s.logger.WarnContext(ctx, "touch bot activity failed", "bot_id", b.ID, "error", err)
	}
	return true, nil
}

package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prediction-league/internal/domain/betresult"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/standing"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

const defaultStandingWorkers = 4

type StandingServiceConfig struct {
	Workers int
}

type RefreshMode string

const (
	RefreshModeNone        RefreshMode = "none"
	RefreshModeIncremental RefreshMode = "incremental"
	RefreshModeFull        RefreshMode = "full"
)

type RefreshResult struct {
	LeagueID string      `json:"league_id"`
	Mode     RefreshMode `json:"mode"`
	Applied  int         `json:"applied"`
	Error    string      `json:"error,omitempty"`
}

type RecalculateSummary struct {
	Leagues     []RefreshResult `json:"leagues"`
	FailedCount int             `json:"failed_count"`
}

type StandingService struct {
	leagueRepo   league.Repository
	resultRepo   betresult.Repository
	standingRepo standing.Repository
	userRepo     user.Repository
	cfg          StandingServiceConfig
	clock        clockwork.Clock
	logger       *logging.Logger
	locksMu      sync.Mutex
	locks        map[string]*sync.Mutex
}

func NewStandingService(
	leagueRepo league.Repository,
	resultRepo betresult.Repository,
	standingRepo standing.Repository,
	userRepo user.Repository,
	cfg StandingServiceConfig,
	clock clockwork.Clock,
	logger *logging.Logger,
) *StandingService {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultStandingWorkers
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &StandingService{
		leagueRepo:   leagueRepo,
		resultRepo:   resultRepo,
		standingRepo: standingRepo,
		userRepo:     userRepo,
		cfg:          cfg,
		clock:        clock,
		logger:       logger,
		locks:        make(map[string]*sync.Mutex),
	}
}

// RefreshLeague folds pending results into the stored rows. It falls back to
// a full recompute when an applied result changed or a pending result would
// land before one already folded for the same member.
func (s *StandingService) RefreshLeague(ctx context.Context, leagueID string) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.RefreshLeague")
	defer span.End()

	return s.serialize(ctx, leagueID, false)
}

// RecomputeLeague replays every result of the league from zeroed rows.
func (s *StandingService) RecomputeLeague(ctx context.Context, leagueID string) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.RecomputeLeague")
	defer span.End()

	return s.serialize(ctx, leagueID, true)
}

// serialize runs at most one refresh per league at a time so a result is
// never folded twice.
func (s *StandingService) serialize(ctx context.Context, leagueID string, full bool) (RefreshResult, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return RefreshResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	lock := s.leagueLock(leagueID)
	lock.Lock()
	defer lock.Unlock()

	if full {
		return s.recompute(ctx, leagueID)
	}
	return s.refresh(ctx, leagueID)
}

func (s *StandingService) leagueLock(leagueID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[leagueID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[leagueID] = lock
	}
	return lock
}

func (s *StandingService) refresh(ctx context.Context, leagueID string) (RefreshResult, error) {
	members, err := s.activeMembers(ctx, leagueID)
	if err != nil {
		return RefreshResult{}, err
	}
	results, err := s.resultRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("list results: %w", err)
	}

	pending := make([]betresult.Result, 0)
	lastApplied := make(map[string]betresult.Result)
	for _, r := range results {
		// departed members' results stay untouched until they rejoin.
		if _, ok := members[r.UserID]; !ok {
			continue
		}
		if r.IsStale() {
			return s.recompute(ctx, leagueID)
		}
		if r.IsPending() {
			pending = append(pending, r)
			continue
		}
		if last, ok := lastApplied[r.UserID]; !ok || betresult.ReplayBefore(last, r) {
			lastApplied[r.UserID] = r
		}
	}
	for _, r := range pending {
		if last, ok := lastApplied[r.UserID]; ok && betresult.ReplayBefore(r, last) {
			return s.recompute(ctx, leagueID)
		}
	}
	if len(pending) == 0 {
		return RefreshResult{LeagueID: leagueID, Mode: RefreshModeNone}, nil
	}

	rows, err := s.standingRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("list standings: %w", err)
	}
	byUser := make(map[string]*standing.Standing, len(rows))
	for i := range rows {
		byUser[rows[i].UserID] = &rows[i]
	}

	now := s.clock.Now().UTC()
	sort.SliceStable(pending, func(i, j int) bool {
		return betresult.ReplayBefore(pending[i], pending[j])
	})

	applied := make(map[string]int, len(pending))
	dirty := make(map[string]*standing.Standing)
	for _, r := range pending {
		applied[r.BetID] = r.Revision
		row, ok := byUser[r.UserID]
		if !ok {
			fresh := standing.New(leagueID, r.UserID, now)
			row = &fresh
			byUser[r.UserID] = row
		}
		row.ApplyBetResult(r.Points, r.IsExact, r.IsCorrect, now)
		dirty[r.UserID] = row
	}

	changed := make([]standing.Standing, 0, len(dirty))
	for _, row := range dirty {
		changed = append(changed, *row)
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].UserID < changed[j].UserID })

	if err := s.standingRepo.ApplyResults(ctx, changed, applied); err != nil {
		return RefreshResult{}, fmt.Errorf("apply standings: %w", err)
	}

	s.logger.InfoContext(ctx, "league standings refreshed",
		"league_id", leagueID,
		"mode", RefreshModeIncremental,
		"applied", len(applied),
	)
	return RefreshResult{LeagueID: leagueID, Mode: RefreshModeIncremental, Applied: len(applied)}, nil
}

func (s *StandingService) recompute(ctx context.Context, leagueID string) (RefreshResult, error) {
	members, err := s.activeMembers(ctx, leagueID)
	if err != nil {
		return RefreshResult{}, err
	}
	results, err := s.resultRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("list results: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return betresult.ReplayBefore(results[i], results[j])
	})

	now := s.clock.Now().UTC()
	byUser := make(map[string]*standing.Standing, len(members))
	for userID := range members {
		row := standing.New(leagueID, userID, now)
		byUser[userID] = &row
	}

	applied := make(map[string]int, len(results))
	for _, r := range results {
		row, ok := byUser[r.UserID]
		if !ok {
			continue
		}
		applied[r.BetID] = r.Revision
		row.ApplyBetResult(r.Points, r.IsExact, r.IsCorrect, now)
	}

	rows := make([]standing.Standing, 0, len(byUser))
	for _, row := range byUser {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UserID < rows[j].UserID })

	if err := s.standingRepo.ApplyResults(ctx, rows, applied); err != nil {
		return RefreshResult{}, fmt.Errorf("apply standings: %w", err)
	}

	s.logger.InfoContext(ctx, "league standings recomputed",
		"league_id", leagueID,
		"mode", RefreshModeFull,
		"members", len(rows),
		"results", len(results),
	)
	return RefreshResult{LeagueID: leagueID, Mode: RefreshModeFull, Applied: len(applied)}, nil
}

// RecalculateLeagues refreshes several leagues on a worker pool. One league
// failing does not stop the others.
func (s *StandingService) RecalculateLeagues(ctx context.Context, leagueIDs []string, full bool) (RecalculateSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.RecalculateLeagues")
	defer span.End()

	ids := uniqueTrimmed(leagueIDs)
	summary := RecalculateSummary{Leagues: make([]RefreshResult, 0, len(ids))}
	if len(ids) == 0 {
		return summary, nil
	}

	pool, err := ants.NewPool(min(s.cfg.Workers, len(ids)))
	if err != nil {
		return RecalculateSummary{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		workers sync.WaitGroup
	)
	collect := func(row RefreshResult) {
		mu.Lock()
		defer mu.Unlock()
		summary.Leagues = append(summary.Leagues, row)
		if row.Error != "" {
			summary.FailedCount++
		}
	}

	for _, leagueID := range ids {
		leagueID := leagueID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			var (
				row RefreshResult
				err error
			)
			if full {
				row, err = s.RecomputeLeague(ctx, leagueID)
			} else {
				row, err = s.RefreshLeague(ctx, leagueID)
			}
			row.LeagueID = leagueID
			if err != nil {
				row.Error = err.Error()
				s.logger.WarnContext(ctx, "league standings recalculation failed",
					"league_id", leagueID,
					"full", full,
					"error", err,
				)
			}
			collect(row)
		}); err != nil {
			workers.Done()
			return RecalculateSummary{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.SliceStable(summary.Leagues, func(i, j int) bool {
		return summary.Leagues[i].LeagueID < summary.Leagues[j].LeagueID
	})
	return summary, nil
}

// GetLeagueStandings ranks the league's active members. Members with no
// stored row yet appear with zero counters.
func (s *StandingService) GetLeagueStandings(ctx context.Context, leagueID string) ([]standing.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.GetLeagueStandings")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	_, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	return s.ranked(ctx, leagueID)
}

// GetMemberStats returns one member's ranked row.
func (s *StandingService) GetMemberStats(ctx context.Context, leagueID, userID string) (standing.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.GetMemberStats")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" || userID == "" {
		return standing.Standing{}, fmt.Errorf("%w: league id and user id are required", ErrInvalidInput)
	}

	if s.userRepo != nil {
		ok, err := s.userRepo.Exists(ctx, userID)
		if err != nil {
			return standing.Standing{}, fmt.Errorf("check user: %w", err)
		}
		if !ok {
			return standing.Standing{}, ErrUserNotFound
		}
	}
	if err := requireActiveMember(ctx, s.leagueRepo, leagueID, userID); err != nil {
		return standing.Standing{}, err
	}

	rows, err := s.ranked(ctx, leagueID)
	if err != nil {
		return standing.Standing{}, err
	}
	for _, row := range rows {
		if row.UserID == userID {
			return row, nil
		}
	}
	return standing.Standing{}, ErrNotALeagueMember
}

func (s *StandingService) ranked(ctx context.Context, leagueID string) ([]standing.Standing, error) {
	members, err := s.activeMembers(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	stored, err := s.standingRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}

	byUser := make(map[string]standing.Standing, len(stored))
	for _, row := range stored {
		byUser[row.UserID] = row
	}

	rows := make([]standing.Standing, 0, len(members))
	for userID, member := range members {
		row, ok := byUser[userID]
		if !ok {
			row = standing.New(leagueID, userID, member.JoinedAt)
		}
		rows = append(rows, row)
	}
	return standing.Rank(rows), nil
}

func (s *StandingService) activeMembers(ctx context.Context, leagueID string) (map[string]league.Member, error) {
	members, err := s.leagueRepo.ListActiveMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}
	out := make(map[string]league.Member, len(members))
	for _, m := range members {
		if !m.IsActive() {
			continue
		}
		out[m.UserID] = m
	}
	return out, nil
}

func uniqueTrimmed(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

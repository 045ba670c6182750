package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

type CalculateResultsJob struct {
	MatchID    string `json:"match_id"`
	DispatchID string `json:"dispatch_id,omitempty"`
}

type RecalculateStandingsJob struct {
	LeagueIDs  []string `json:"league_ids"`
	Full       bool     `json:"full,omitempty"`
	DispatchID string   `json:"dispatch_id,omitempty"`
}

type RunBotsJob struct {
	DispatchID string `json:"dispatch_id,omitempty"`
}

// JobHandler runs one job from its raw JSON payload.
type JobHandler func(ctx context.Context, payload []byte) error

// JobService runs the asynchronous jobs and reports their outcome to the
// dispatch log.
type JobService struct {
	results   *ResultService
	standings *StandingService
	bots      *BotSchedulerService
	jobs      *JobDispatcher
	logger    *logging.Logger
}

func NewJobService(
	results *ResultService,
	standings *StandingService,
	bots *BotSchedulerService,
	jobs *JobDispatcher,
	logger *logging.Logger,
) *JobService {
	if logger == nil {
		logger = logging.Default()
	}
	if jobs == nil {
		jobs = NewJobDispatcher(nil, nil, nil, logger)
	}

	return &JobService{
		results:   results,
		standings: standings,
		bots:      bots,
		jobs:      jobs,
		logger:    logger,
	}
}

func (s *JobService) HandleCalculateResults(ctx context.Context, input CalculateResultsJob) (CalculateResultsSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobService.HandleCalculateResults")
	defer span.End()

	input.MatchID = strings.TrimSpace(input.MatchID)
	if input.MatchID == "" {
		return CalculateResultsSummary{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}

	out, err := s.results.CalculateMatchResults(ctx, input.MatchID)
	s.jobs.Complete(ctx, jobscheduler.JobCalculateResults, input.MatchID, input.DispatchID, err)
	return out, err
}

func (s *JobService) HandleRecalculateStandings(ctx context.Context, input RecalculateStandingsJob) (RecalculateSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobService.HandleRecalculateStandings")
	defer span.End()

	ids := uniqueTrimmed(input.LeagueIDs)
	if len(ids) == 0 {
		return RecalculateSummary{}, fmt.Errorf("%w: league_ids are required", ErrInvalidInput)
	}

	out, err := s.standings.RecalculateLeagues(ctx, ids, input.Full)
	runErr := err
	if runErr == nil && out.FailedCount > 0 {
		runErr = fmt.Errorf("%d of %d leagues failed", out.FailedCount, len(out.Leagues))
	}
	s.jobs.Complete(ctx, jobscheduler.JobRecalculateStandings, strings.Join(ids, ","), input.DispatchID, runErr)
	return out, err
}

func (s *JobService) HandleRunBots(ctx context.Context, input RunBotsJob) (BotRunSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobService.HandleRunBots")
	defer span.End()

	out, err := s.bots.RunOnce(ctx)
	s.jobs.Complete(ctx, jobscheduler.JobRunBots, "all", input.DispatchID, err)
	return out, err
}

// Handlers exposes every job keyed by name for in-process and broker
// consumers.
func (s *JobService) Handlers() map[string]JobHandler {
	return map[string]JobHandler{
		jobscheduler.JobCalculateResults: func(ctx context.Context, payload []byte) error {
			var input CalculateResultsJob
			if err := decodeJobPayload(payload, &input); err != nil {
				return err
			}
			_, err := s.HandleCalculateResults(ctx, input)
			return err
		},
		jobscheduler.JobRecalculateStandings: func(ctx context.Context, payload []byte) error {
			var input RecalculateStandingsJob
			if err := decodeJobPayload(payload, &input); err != nil {
				return err
			}
			_, err := s.HandleRecalculateStandings(ctx, input)
			return err
		},
		jobscheduler.JobRunBots: func(ctx context.Context, payload []byte) error {
			var input RunBotsJob
			if err := decodeJobPayload(payload, &input); err != nil {
				return err
			}
			_, err := s.HandleRunBots(ctx, input)
			return err
		},
	}
}

func decodeJobPayload(payload []byte, out any) error {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode job payload: %v", ErrInvalidInput, err)
	}
	return nil
}

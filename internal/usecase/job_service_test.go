package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

func newJobServiceFixture(t *testing.T) (*JobService, *stubDispatchRepository, *fakeStandingRepo) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(testNow)
	l1 := testLeague("l1")
	leagues := newFakeLeagueRepo(l1)
	leagues.join("l1", "alice")
	matches := newFakeMatchRepo(finishedMatch("m1", testNow.Add(-2*time.Hour), 1, 0))
	bets := newFakeBetRepo(bet.Bet{ID: "b1", LeagueID: "l1", UserID: "alice", MatchID: "m1", HomeScore: 1, AwayScore: 0})
	results := newFakeResultRepo()
	standings := newFakeStandingRepo(results)
	events := &stubDispatchRepository{}
	jobs := NewJobDispatcher(&recordingJobQueue{}, events, clock, logging.NewNop())

	resultSvc := NewResultService(leagues, matches, bets, results, jobs, clock, logging.NewNop())
	standingSvc := NewStandingService(leagues, results, standings, nil, StandingServiceConfig{}, clock, logging.NewNop())
	botSvc := NewBotSchedulerService(leagues, newFakeBotRepo(), matches, bets, mapResolver{}, nil, BotSchedulerConfig{}, clock, logging.NewNop())

	return NewJobService(resultSvc, standingSvc, botSvc, jobs, logging.NewNop()), events, standings
}

func TestJobService_HandlersRunResultsThenStandings(t *testing.T) {
	t.Parallel()

	svc, events, standings := newJobServiceFixture(t)
	handlers := svc.Handlers()
	ctx := context.Background()

	if err := handlers[jobscheduler.JobCalculateResults](ctx, []byte(`{"match_id":"m1","dispatch_id":"calc-1"}`)); err != nil {
		t.Fatalf("calculate results: %v", err)
	}
	if err := handlers[jobscheduler.JobRecalculateStandings](ctx, []byte(`{"league_ids":["l1"],"dispatch_id":"stand-1"}`)); err != nil {
		t.Fatalf("recalculate standings: %v", err)
	}

	row, ok := standings.get("l1", "alice")
	if !ok || row.TotalPoints != 3 || row.ExactCount != 1 {
		t.Fatalf("unexpected standing: %+v", row)
	}

	for _, dispatchID := range []string{"calc-1", "stand-1"} {
		event, ok, _ := events.GetByDispatchID(ctx, dispatchID)
		if !ok || event.Status != jobscheduler.StatusCompleted {
			t.Fatalf("expected completed event for %s, got %+v", dispatchID, event)
		}
	}
}

func TestJobService_HandleRecalculateStandings_RequiresLeagues(t *testing.T) {
	t.Parallel()

	svc, _, _ := newJobServiceFixture(t)
	_, err := svc.HandleRecalculateStandings(context.Background(), RecalculateStandingsJob{LeagueIDs: []string{" "}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestJobService_Handlers_RejectMalformedPayload(t *testing.T) {
	t.Parallel()

	svc, _, _ := newJobServiceFixture(t)
	err := svc.Handlers()[jobscheduler.JobCalculateResults](context.Background(), []byte(`{"match_id":`))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestJobService_HandleCalculateResults_RecordsFailure(t *testing.T) {
	t.Parallel()

	svc, events, _ := newJobServiceFixture(t)
	ctx := context.Background()

	_, err := svc.HandleCalculateResults(ctx, CalculateResultsJob{MatchID: "missing", DispatchID: "calc-x"})
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected match not found, got %v", err)
	}
	event, ok, _ := events.GetByDispatchID(ctx, "calc-x")
	if !ok || event.Status != jobscheduler.StatusFailed {
		t.Fatalf("expected failed event, got %+v", event)
	}
}

func TestJobService_HandleRunBots_NoLeagues(t *testing.T) {
	t.Parallel()

	svc, events, _ := newJobServiceFixture(t)
	got, err := svc.HandleRunBots(context.Background(), RunBotsJob{DispatchID: "bots-1"})
	if err != nil {
		t.Fatalf("run bots: %v", err)
	}
	if got.Leagues != 0 {
		t.Fatalf("expected no bot leagues, got %+v", got)
	}
	if event, ok, _ := events.GetByDispatchID(context.Background(), "bots-1"); !ok || event.Status != jobscheduler.StatusCompleted {
		t.Fatalf("expected completed event, got %+v", event)
	}
}

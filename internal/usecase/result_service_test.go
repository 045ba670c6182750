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

type resultFixture struct {
	clock   *clockwork.FakeClock
	matches *fakeMatchRepo
	bets    *fakeBetRepo
	results *fakeResultRepo
	queue   *recordingJobQueue
	service *ResultService
}

func newResultFixture(t *testing.T) *resultFixture {
	t.Helper()

	l1 := testLeague("l1")
	l2 := testLeague("l2")
	l2.PointsExactMatch = 5
	l2.PointsCorrectResult = 2

	f := &resultFixture{
		clock:   clockwork.NewFakeClockAt(testNow),
		matches: newFakeMatchRepo(finishedMatch("m1", testNow.Add(-3*time.Hour), 2, 1)),
		bets: newFakeBetRepo(
			bet.Bet{ID: "b1", LeagueID: "l1", UserID: "alice", MatchID: "m1", HomeScore: 2, AwayScore: 1},
			bet.Bet{ID: "b2", LeagueID: "l1", UserID: "bob", MatchID: "m1", HomeScore: 3, AwayScore: 0},
			bet.Bet{ID: "b3", LeagueID: "l1", UserID: "carol", MatchID: "m1", HomeScore: 1, AwayScore: 1},
			bet.Bet{ID: "b4", LeagueID: "l2", UserID: "alice", MatchID: "m1", HomeScore: 2, AwayScore: 1},
		),
		results: newFakeResultRepo(),
		queue:   &recordingJobQueue{},
	}
	jobs := NewJobDispatcher(f.queue, &stubDispatchRepository{}, f.clock, logging.NewNop())
	f.service = NewResultService(newFakeLeagueRepo(l1, l2), f.matches, f.bets, f.results, jobs, f.clock, logging.NewNop())
	return f
}

func TestResultService_CalculateMatchResults_ScoresEveryLeague(t *testing.T) {
	t.Parallel()

	f := newResultFixture(t)
	got, err := f.service.CalculateMatchResults(context.Background(), "m1")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got.Scored != 4 || got.Changed != 4 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if len(got.LeagueIDs) != 2 || got.LeagueIDs[0] != "l1" || got.LeagueIDs[1] != "l2" {
		t.Fatalf("unexpected leagues: %v", got.LeagueIDs)
	}

	want := map[string]struct {
		points         int
		exact, correct bool
	}{
		"b1": {3, true, true},
		"b2": {1, false, true},
		"b3": {0, false, false},
		"b4": {5, true, true},
	}
	for betID, w := range want {
		r := f.results.results[betID]
		if r.Points != w.points || r.IsExact != w.exact || r.IsCorrect != w.correct {
			t.Fatalf("bet %s: unexpected result %+v", betID, r)
		}
		if r.Revision != 1 || !r.IsPending() {
			t.Fatalf("bet %s: expected first pending revision, got %+v", betID, r)
		}
		if !r.MatchKickoffAt.Equal(testNow.Add(-3 * time.Hour)) {
			t.Fatalf("bet %s: unexpected kickoff %s", betID, r.MatchKickoffAt)
		}
	}

	if len(f.queue.calls) != 1 {
		t.Fatalf("expected one standings job, got %d", len(f.queue.calls))
	}
	if f.queue.calls[0].path != JobPath(jobscheduler.JobRecalculateStandings) {
		t.Fatalf("unexpected job path %s", f.queue.calls[0].path)
	}
}

func TestResultService_CalculateMatchResults_Idempotent(t *testing.T) {
	t.Parallel()

	f := newResultFixture(t)
	ctx := context.Background()
	if _, err := f.service.CalculateMatchResults(ctx, "m1"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := f.results.MarkApplied(ctx, map[string]int{"b1": 1, "b2": 1, "b3": 1, "b4": 1}); err != nil {
		t.Fatalf("mark applied: %v", err)
	}
	upserts := f.results.upserts

	got, err := f.service.CalculateMatchResults(ctx, "m1")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got.Changed != 0 || len(got.LeagueIDs) != 0 {
		t.Fatalf("expected no changes on rerun, got %+v", got)
	}
	if f.results.upserts != upserts {
		t.Fatalf("expected no writes on rerun")
	}
	if len(f.queue.calls) != 1 {
		t.Fatalf("expected no extra standings job, got %d", len(f.queue.calls))
	}
}

func TestResultService_CalculateMatchResults_CorrectionBumpsRevision(t *testing.T) {
	t.Parallel()

	f := newResultFixture(t)
	ctx := context.Background()
	if _, err := f.service.CalculateMatchResults(ctx, "m1"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := f.results.MarkApplied(ctx, map[string]int{"b1": 1, "b2": 1, "b3": 1, "b4": 1}); err != nil {
		t.Fatalf("mark applied: %v", err)
	}

	// the score is corrected to a draw.
	home, away := 1, 1
	m := f.matches.matches["m1"]
	m.HomeScore, m.AwayScore = &home, &away
	f.matches.matches["m1"] = m

	got, err := f.service.CalculateMatchResults(ctx, "m1")
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if got.Changed != 4 {
		t.Fatalf("expected every result to change, got %+v", got)
	}
	b3 := f.results.results["b3"]
	if b3.Points != 3 || !b3.IsExact || b3.Revision != 2 || b3.AppliedRevision != 1 {
		t.Fatalf("unexpected corrected result: %+v", b3)
	}
	if !b3.IsStale() {
		t.Fatalf("expected corrected result to be stale")
	}
}

func TestResultService_CalculateMatchResults_Failures(t *testing.T) {
	t.Parallel()

	f := newResultFixture(t)
	f.matches.matches["m2"] = upcomingMatch("m2", testNow.Add(time.Hour))
	ctx := context.Background()

	if _, err := f.service.CalculateMatchResults(ctx, "nope"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected match not found, got %v", err)
	}
	if _, err := f.service.CalculateMatchResults(ctx, "m2"); !errors.Is(err, ErrMatchNotFinalized) {
		t.Fatalf("expected not finalized, got %v", err)
	}
	if _, err := f.service.CalculateMatchResults(ctx, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestResultService_CalculateMatchResults_QueueFailureIsRetriedByRerun(t *testing.T) {
	t.Parallel()

	f := newResultFixture(t)
	f.queue.err = errBoom
	ctx := context.Background()

	got, err := f.service.CalculateMatchResults(ctx, "m1")
	if err != nil {
		t.Fatalf("expected fire-and-forget enqueue, got %v", err)
	}
	if got.Changed != 4 || len(f.queue.calls) != 0 {
		t.Fatalf("unexpected first run: summary=%+v calls=%d", got, len(f.queue.calls))
	}

	f.queue.err = nil
	got, err = f.service.CalculateMatchResults(ctx, "m1")
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if got.Changed != 0 {
		t.Fatalf("expected no changes on rerun, got %+v", got)
	}
	if len(f.queue.calls) != 1 {
		t.Fatalf("expected pending results to enqueue standings again, got %d calls", len(f.queue.calls))
	}
	payload, _ := f.queue.calls[0].payload.(map[string]any)
	leagueIDs, _ := payload["league_ids"].([]string)
	if len(leagueIDs) != 2 || leagueIDs[0] != "l1" || leagueIDs[1] != "l2" {
		t.Fatalf("unexpected league ids: %v", payload["league_ids"])
	}
}

func TestResultService_CalculateMatchResults_CorrectionGetsNewDispatchID(t *testing.T) {
	t.Parallel()

	f := newResultFixture(t)
	ctx := context.Background()
	if _, err := f.service.CalculateMatchResults(ctx, "m1"); err != nil {
		t.Fatalf("first run: %v", err)
	}

	f.clock.Advance(2 * time.Minute)
	home, away := 1, 1
	m := f.matches.matches["m1"]
	m.HomeScore, m.AwayScore = &home, &away
	f.matches.matches["m1"] = m

	got, err := f.service.CalculateMatchResults(ctx, "m1")
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if got.Changed != 4 {
		t.Fatalf("expected every result to change, got %+v", got)
	}
	if len(f.queue.calls) != 2 {
		t.Fatalf("expected two standings jobs, got %d", len(f.queue.calls))
	}
	if f.queue.calls[0].dedupID == f.queue.calls[1].dedupID {
		t.Fatalf("correction reused dispatch id %s", f.queue.calls[0].dedupID)
	}
}

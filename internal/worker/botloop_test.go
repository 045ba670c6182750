package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type countingRunner struct {
	calls atomic.Int32
	ran   chan struct{}
	block chan struct{}
	err   error
}

func newCountingRunner() *countingRunner {
	return &countingRunner{ran: make(chan struct{}, 16)}
}

func (r *countingRunner) RunOnce(ctx context.Context) (usecase.BotRunSummary, error) {
	r.calls.Add(1)
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
		}
	}
	r.ran <- struct{}{}
	return usecase.BotRunSummary{BetsPlaced: 1}, r.err
}

func waitRun(t *testing.T, r *countingRunner) {
	t.Helper()
	select {
	case <-r.ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("runner was not called")
	}
}

func TestBotLoop_RunHonoursInitialDelayAndInterval(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 7, 3, 0, 0, 0, time.UTC))
	runner := newCountingRunner()
	loop := NewBotLoop(runner, BotLoopConfig{
		InitialDelay:       30 * time.Second,
		Interval:           30 * time.Minute,
		MatchHoursInterval: 5 * time.Minute,
		MatchHoursStart:    12,
		MatchHoursEnd:      23,
	}, clock, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()

	if err := clock.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("waiting for initial timer: %v", err)
	}
	clock.Advance(29 * time.Second)
	if runner.calls.Load() != 0 {
		t.Fatalf("runner called before initial delay")
	}
	clock.Advance(time.Second)
	waitRun(t, runner)

	if err := clock.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("waiting for interval timer: %v", err)
	}
	clock.Advance(30 * time.Minute)
	waitRun(t, runner)

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not stop")
	}
	if got := runner.calls.Load(); got != 2 {
		t.Fatalf("expected 2 runs, got %d", got)
	}
}

func TestBotLoop_NextInterval(t *testing.T) {
	t.Parallel()

	loop := NewBotLoop(newCountingRunner(), BotLoopConfig{
		Interval:           30 * time.Minute,
		MatchHoursInterval: 5 * time.Minute,
		MatchHoursStart:    12,
		MatchHoursEnd:      23,
	}, clockwork.NewFakeClock(), logging.NewNop())

	tests := []struct {
		hour int
		want time.Duration
	}{
		{hour: 11, want: 30 * time.Minute},
		{hour: 12, want: 5 * time.Minute},
		{hour: 22, want: 5 * time.Minute},
		{hour: 23, want: 30 * time.Minute},
	}
	for _, tc := range tests {
		now := time.Date(2026, 3, 7, tc.hour, 30, 0, 0, time.UTC)
		if got := loop.NextInterval(now); got != tc.want {
			t.Fatalf("hour %d: got %s want %s", tc.hour, got, tc.want)
		}
	}
}

func TestBotLoop_NextIntervalWrapsMidnight(t *testing.T) {
	t.Parallel()

	loop := NewBotLoop(newCountingRunner(), BotLoopConfig{
		Interval:           time.Hour,
		MatchHoursInterval: 10 * time.Minute,
		MatchHoursStart:    22,
		MatchHoursEnd:      2,
	}, clockwork.NewFakeClock(), logging.NewNop())

	if got := loop.NextInterval(time.Date(2026, 3, 7, 1, 0, 0, 0, time.UTC)); got != 10*time.Minute {
		t.Fatalf("expected match hours interval after midnight, got %s", got)
	}
	if got := loop.NextInterval(time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)); got != time.Hour {
		t.Fatalf("expected base interval at noon, got %s", got)
	}
}

func TestBotLoop_TickSkipsOverlappingRun(t *testing.T) {
	t.Parallel()

	runner := newCountingRunner()
	runner.block = make(chan struct{})
	loop := NewBotLoop(runner, BotLoopConfig{Interval: time.Minute}, clockwork.NewFakeClock(), logging.NewNop())

	first := make(chan bool, 1)
	go func() { first <- loop.Tick(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for runner.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first tick never started")
		}
		time.Sleep(time.Millisecond)
	}

	if loop.Tick(context.Background()) {
		t.Fatalf("expected overlapping tick to be skipped")
	}

	close(runner.block)
	if !<-first {
		t.Fatalf("expected first tick to run")
	}
	if runner.calls.Load() != 1 {
		t.Fatalf("expected a single run, got %d", runner.calls.Load())
	}
}

func TestBotLoop_TickLogsRunnerError(t *testing.T) {
	t.Parallel()

	runner := newCountingRunner()
	runner.err = errors.New("boom")
	loop := NewBotLoop(runner, BotLoopConfig{}, clockwork.NewFakeClock(), logging.NewNop())

	if !loop.Tick(context.Background()) {
		t.Fatalf("expected tick to run despite error")
	}
}

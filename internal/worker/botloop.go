// Package worker holds long-running background loops.
package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// BotRunner executes one scheduling pass.
type BotRunner interface {
	RunOnce(ctx context.Context) (usecase.BotRunSummary, error)
}

type BotLoopConfig struct {
	InitialDelay       time.Duration
	Interval           time.Duration
	MatchHoursInterval time.Duration
	// MatchHoursStart and MatchHoursEnd bound the busy window in UTC hours,
	// start inclusive and end exclusive. A start after the end wraps
	// midnight; equal values disable the window.
	MatchHoursStart int
	MatchHoursEnd   int
}

type BotLoop struct {
	runner  BotRunner
	cfg     BotLoopConfig
	clock   clockwork.Clock
	logger  *logging.Logger
	running atomic.Bool
}

func NewBotLoop(runner BotRunner, cfg BotLoopConfig, clock clockwork.Clock, logger *logging.Logger) *BotLoop {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &BotLoop{
		runner: runner,
		cfg:    cfg,
		clock:  clock,
		logger: logger.Named("bot-loop"),
	}
}

// Run blocks until ctx is cancelled. The first pass starts after
// InitialDelay; later passes wait NextInterval after the previous one ends.
func (l *BotLoop) Run(ctx context.Context) error {
	l.logger.Info("bot loop started",
		"initial_delay", l.cfg.InitialDelay.String(),
		"interval", l.cfg.Interval.String(),
		"match_hours_interval", l.cfg.MatchHoursInterval.String(),
	)

	if !l.sleep(ctx, l.cfg.InitialDelay) {
		l.logger.Info("bot loop stopped")
		return ctx.Err()
	}

	for {
		l.Tick(ctx)

		if !l.sleep(ctx, l.NextInterval(l.clock.Now())) {
			l.logger.Info("bot loop stopped")
			return ctx.Err()
		}
	}
}

// Tick runs one pass unless another is still in flight. It reports whether
// the pass ran.
func (l *BotLoop) Tick(ctx context.Context) bool {
	if !l.running.CompareAndSwap(false, true) {
		l.logger.WarnContext(ctx, "bot run skipped, previous run still active")
		return false
	}
	defer l.running.Store(false)

	start := l.clock.Now()
	summary, err := l.runner.RunOnce(ctx)
	if err != nil {
		l.logger.ErrorContext(ctx, "bot run failed", "error", err)
		return true
	}

	l.logger.InfoContext(ctx, "bot run completed",
		"bets_placed", summary.BetsPlaced,
		"failed", summary.Failed,
		"duration_ms", l.clock.Since(start).Milliseconds(),
	)
	return true
}

// NextInterval is the wait before the next pass. Inside match hours the
// shorter of Interval and MatchHoursInterval applies.
func (l *BotLoop) NextInterval(now time.Time) time.Duration {
	if l.cfg.MatchHoursInterval > 0 && l.cfg.MatchHoursInterval < l.cfg.Interval && l.inMatchHours(now) {
		return l.cfg.MatchHoursInterval
	}
	return l.cfg.Interval
}

func (l *BotLoop) inMatchHours(now time.Time) bool {
	start, end := l.cfg.MatchHoursStart, l.cfg.MatchHoursEnd
	if start == end {
		return false
	}
	hour := now.UTC().Hour()
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

func (l *BotLoop) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := l.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

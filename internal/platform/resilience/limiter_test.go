package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestLimiter_FirstCallDoesNotWait(t *testing.T) {
	t.Parallel()

	l := NewLimiter(time.Second, clockwork.NewFakeClock())
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLimiter_SecondCallWaitsForInterval(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	l := NewLimiter(time.Second, clock)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- l.Wait(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("waiter never blocked: %v", err)
	}

	select {
	case <-done:
		t.Fatalf("second call returned before interval elapsed")
	default:
	}

	clock.Advance(time.Second)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("second wait: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("second call did not return after advancing clock")
	}
}

func TestLimiter_CanceledContext(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	l := NewLimiter(time.Minute, clock)
	_ = l.Wait(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestLimiter_NilAndZeroIntervalNeverBlock(t *testing.T) {
	t.Parallel()

	var l *Limiter
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("nil limiter: %v", err)
	}
	if err := NewLimiter(0, nil).Wait(context.Background()); err != nil {
		t.Fatalf("zero interval: %v", err)
	}
}

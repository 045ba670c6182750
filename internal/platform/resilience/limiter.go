package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Limiter spaces outbound calls at least minInterval apart. Each client owns
// its own instance.
type Limiter struct {
	mu          sync.Mutex
	clock       clockwork.Clock
	minInterval time.Duration
	next        time.Time
}

func NewLimiter(minInterval time.Duration, clock clockwork.Clock) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Limiter{
		clock:       clock,
		minInterval: minInterval,
	}
}

// Wait blocks until the caller owns the next slot or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.minInterval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := l.clock.Now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	l.next = slot.Add(l.minInterval)
	l.mu.Unlock()

	delay := slot.Sub(now)
	if delay <= 0 {
		return nil
	}

	timer := l.clock.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		l.release(slot)
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}

// release hands a reserved slot back when it was the most recent one.
func (l *Limiter) release(slot time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.next.Equal(slot.Add(l.minInterval)) {
		l.next = slot
	}
}

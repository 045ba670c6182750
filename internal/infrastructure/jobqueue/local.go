package jobqueue

import (
	"context"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type LocalQueueConfig struct {
	Workers int
	// DedupWindow is how long a deduplication ID suppresses repeats.
	DedupWindow time.Duration
}

// LocalQueue runs jobs in-process on an ants pool. Delays are measured on
// the injected clock.
type LocalQueue struct {
	dispatcher  *Dispatcher
	pool        *ants.Pool
	clock       clockwork.Clock
	logger      *logging.Logger
	dedupWindow time.Duration

	mu   sync.Mutex
	seen map[string]time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewLocalQueue(dispatcher *Dispatcher, cfg LocalQueueConfig, clock clockwork.Clock, logger *logging.Logger) (*LocalQueue, error) {
	if dispatcher == nil {
		return nil, crerr.New("dispatcher is required")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	window := cfg.DedupWindow
	if window <= 0 {
		window = 10 * time.Minute
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, crerr.Wrap(err, "create local job pool")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &LocalQueue{
		dispatcher:  dispatcher,
		pool:        pool,
		clock:       clock,
		logger:      logger.Named("localqueue"),
		dedupWindow: window,
		seen:        make(map[string]time.Time),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

var _ usecase.JobQueue = (*LocalQueue)(nil)

func (q *LocalQueue) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	if q.ctx.Err() != nil {
		return crerr.New("local job queue is closed")
	}
	name := usecase.JobNameFromPath(path)
	if !q.dispatcher.Has(name) {
		return crerr.Wrapf(ErrUnknownJob, "path=%q", path)
	}
	body, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	if q.isDuplicate(strings.TrimSpace(deduplicationID)) {
		q.logger.DebugContext(ctx, "duplicate job dropped", "job", name, "deduplication_id", deduplicationID)
		return nil
	}

	// the job outlives the request that enqueued it but keeps its trace.
	jobCtx := context.WithoutCancel(ctx)

	q.wg.Add(1)
	go func() {
		if delay > 0 {
			timer := q.clock.NewTimer(delay)
			select {
			case <-q.ctx.Done():
				timer.Stop()
				q.wg.Done()
				return
			case <-timer.Chan():
			}
		}

		err := q.pool.Submit(func() {
			defer q.wg.Done()
			if err := q.dispatcher.DispatchJob(jobCtx, name, body); err != nil {
				q.logger.WarnContext(jobCtx, "local job failed", "job", name, "error", err)
			}
		})
		if err != nil {
			q.wg.Done()
			q.logger.ErrorContext(jobCtx, "submit local job", "job", name, "error", err)
		}
	}()
	return nil
}

func (q *LocalQueue) isDuplicate(id string) bool {
	if id == "" {
		return false
	}
	now := q.clock.Now()

	q.mu.Lock()
	defer q.mu.Unlock()

	for key, at := range q.seen {
		if now.Sub(at) >= q.dedupWindow {
			delete(q.seen, key)
		}
	}
	if _, ok := q.seen[id]; ok {
		return true
	}
	q.seen[id] = now
	return false
}

// Close drops pending delayed jobs and waits for running ones until ctx is
// done.
func (q *LocalQueue) Close(ctx context.Context) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	defer q.pool.Release()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package jobqueue

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// ErrUnknownJob is returned for job names without a registered handler.
var ErrUnknownJob = crerr.New("jobqueue: unknown job")

// Dispatcher routes raw job payloads to their handlers. It backs both the
// in-process queue and the NATS subscriber.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]usecase.JobHandler
	logger   *logging.Logger
}

func NewDispatcher(handlers map[string]usecase.JobHandler, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	copied := make(map[string]usecase.JobHandler, len(handlers))
	for name, h := range handlers {
		if h != nil {
			copied[name] = h
		}
	}
	return &Dispatcher{handlers: copied, logger: logger.Named("jobs")}
}

// Register adds or replaces handlers. Queues are built before the services
// that own the handlers, so registration happens after construction.
func (d *Dispatcher) Register(handlers map[string]usecase.JobHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for name, h := range handlers {
		if h != nil {
			d.handlers[name] = h
		}
	}
}

func (d *Dispatcher) Has(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[name]
	return ok
}

func (d *Dispatcher) Jobs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dispatch resolves an internal job path such as /v1/internal/jobs/run-bots.
func (d *Dispatcher) Dispatch(ctx context.Context, path string, payload []byte) error {
	return d.DispatchJob(ctx, usecase.JobNameFromPath(path), payload)
}

func (d *Dispatcher) DispatchJob(ctx context.Context, name string, payload []byte) error {
	name = strings.TrimSpace(name)
	d.mu.RLock()
	handler, ok := d.handlers[name]
	d.mu.RUnlock()
	if !ok {
		return crerr.Wrapf(ErrUnknownJob, "job=%q", name)
	}

	started := time.Now()
	if err := handler(ctx, payload); err != nil {
		d.logger.WarnContext(ctx, "job failed", "job", name, "duration", time.Since(started), "error", err)
		return err
	}
	d.logger.InfoContext(ctx, "job completed", "job", name, "duration", time.Since(started))
	return nil
}

// IsPermanent reports whether retrying the job cannot succeed.
func IsPermanent(err error) bool {
	return crerr.Is(err, ErrUnknownJob) ||
		crerr.Is(err, usecase.ErrInvalidInput) ||
		crerr.Is(err, usecase.ErrNotFound)
}

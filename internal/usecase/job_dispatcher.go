package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

const internalJobPathPrefix = "/v1/internal/jobs/"

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

// JobPath is the internal endpoint that runs the named job.
func JobPath(job string) string {
	return internalJobPathPrefix + job
}

// JobNameFromPath reverses JobPath. It returns "" for foreign paths.
func JobNameFromPath(path string) string {
	name, ok := strings.CutPrefix(strings.TrimSpace(path), internalJobPathPrefix)
	if !ok {
		return ""
	}
	return strings.Trim(name, "/")
}

// JobRequest describes one job to enqueue. Bucket sets the dedup window: two
// requests with the same job, scope and bucket collapse into one dispatch.
type JobRequest struct {
	Job     string
	Scope   string
	Payload map[string]any
	Delay   time.Duration
	Bucket  time.Duration
}

// JobDispatcher enqueues jobs and records every dispatch transition.
type JobDispatcher struct {
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	clock        clockwork.Clock
	logger       *logging.Logger
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobDispatcher(queue JobQueue, dispatchRepo jobscheduler.Repository, clock clockwork.Clock, logger *logging.Logger) *JobDispatcher {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &JobDispatcher{
		queue:        queue,
		dispatchRepo: dispatchRepo,
		clock:        clock,
		logger:       logger,
	}
}

// Enqueue sends the job and returns its dispatch id. The id is also added
// to the payload so the handler can report completion against it.
func (d *JobDispatcher) Enqueue(ctx context.Context, req JobRequest) (string, error) {
	now := d.clock.Now().UTC()
	dispatchID := dedupKey(req.Job, req.Scope, now.Add(req.Delay), req.Bucket)

	payload := make(map[string]any, len(req.Payload)+1)
	for k, v := range req.Payload {
		payload[k] = v
	}
	payload["dispatch_id"] = dispatchID

	path := JobPath(req.Job)
	event := jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    req.Job,
		JobPath:    path,
		Scope:      req.Scope,
		Payload:    payload,
		OccurredAt: now,
	}

	if err := d.queue.Enqueue(ctx, path, payload, req.Delay, dispatchID); err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		d.record(ctx, event)
		return "", fmt.Errorf("enqueue %s scope=%s: %w", req.Job, req.Scope, err)
	}

	event.Status = jobscheduler.StatusSent
	d.record(ctx, event)
	return dispatchID, nil
}

// Complete records the outcome of a handled job. An empty dispatch id means
// the job was triggered directly and is not tracked.
func (d *JobDispatcher) Complete(ctx context.Context, job, scope, dispatchID string, runErr error) {
	event := jobscheduler.DispatchEvent{
		DispatchID: strings.TrimSpace(dispatchID),
		JobName:    job,
		JobPath:    JobPath(job),
		Scope:      scope,
		Status:     jobscheduler.StatusCompleted,
	}
	if runErr != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = runErr.Error()
	}
	d.record(ctx, event)
}

func (d *JobDispatcher) record(ctx context.Context, event jobscheduler.DispatchEvent) {
	if d.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.clock.Now().UTC()
	}
	if err := d.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		d.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func dedupKey(prefix, scope string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	scope = sanitizeDedupSegment(scope)
	return prefix + "-" + scope + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}

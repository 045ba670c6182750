package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

const (
	JobCalculateResults     = "calculate-results"
	JobRecalculateStandings = "recalculate-standings"
	JobRunBots              = "run-bots"
)

// DispatchEvent records one transition of an asynchronous job. DispatchID
// doubles as the queue deduplication key.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	Scope        string
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	mu    sync.RWMutex
	items map[string]jobscheduler.DispatchEvent
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{items: make(map[string]jobscheduler.DispatchEvent)}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.items[event.DispatchID]; ok && event.Payload == nil {
		event.Payload = prev.Payload
	}
	event.Payload = maps.Clone(event.Payload)
	r.items[event.DispatchID] = event
	return nil
}

func (r *JobDispatchRepository) GetByDispatchID(_ context.Context, dispatchID string) (jobscheduler.DispatchEvent, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.items[dispatchID]
	return event, ok, nil
}

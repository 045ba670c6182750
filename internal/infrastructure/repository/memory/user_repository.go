package memory

import (
	"context"
	"sync"
)

// UserRepository is a fixed set of known account ids.
type UserRepository struct {
	mu    sync.RWMutex
	items map[string]struct{}
}

func NewUserRepository(userIDs []string) *UserRepository {
	items := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		items[id] = struct{}{}
	}

	return &UserRepository{items: items}
}

func (r *UserRepository) Exists(_ context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[userID]
	return ok, nil
}

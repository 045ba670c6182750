package match

import (
	"context"
	"time"
)

// Repository exposes match read operations. Matches are synced elsewhere.
type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	ListByIDs(ctx context.Context, matchIDs []string) ([]Match, error)
	ListUpcoming(ctx context.Context, from, to time.Time) ([]Match, error)
}

package bot

import (
	"context"
	"time"
)

type Repository interface {
	ListActiveByUserIDs(ctx context.Context, userIDs []string) ([]Bot, error)
	TouchActivity(ctx context.Context, botID string, at time.Time) error
}

package betresult

import "context"

type Repository interface {
	GetByBetID(ctx context.Context, betID string) (Result, bool, error)
	Upsert(ctx context.Context, result Result) error
	ListByLeague(ctx context.Context, leagueID string) ([]Result, error)
	ListByBetIDs(ctx context.Context, betIDs []string) ([]Result, error)
	MarkApplied(ctx context.Context, applied map[string]int) error
}

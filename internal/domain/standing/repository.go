package standing

import "context"

type Repository interface {
	ListByLeague(ctx context.Context, leagueID string) ([]Standing, error)
	// UpsertMany writes all rows atomically. Rows not listed are kept.
	UpsertMany(ctx context.Context, rows []Standing) error
	// ApplyResults writes rows and records the bet result revisions folded
	// into them (bet id to revision) in one unit of work. On error neither
	// write is visible.
	ApplyResults(ctx context.Context, rows []Standing, applied map[string]int) error
}

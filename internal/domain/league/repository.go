package league

import "context"

// Repository describes league and membership reads needed by use cases.
type Repository interface {
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	ListBotsEnabled(ctx context.Context) ([]League, error)
	GetMember(ctx context.Context, leagueID, userID string) (Member, bool, error)
	ListActiveMembers(ctx context.Context, leagueID string) ([]Member, error)
}

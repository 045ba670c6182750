package bet

import "context"

type Repository interface {
	GetByID(ctx context.Context, leagueID, betID string) (Bet, bool, error)
	GetByKey(ctx context.Context, leagueID, userID, matchID string) (Bet, bool, error)
	// Upsert stores the bet keyed by (league, user, match). On conflict the
	// stored row keeps its id and placement time and the stored value is
	// returned.
	Upsert(ctx context.Context, b Bet) (Bet, error)
	Delete(ctx context.Context, leagueID, betID string) error
	ListByUser(ctx context.Context, leagueID, userID string) ([]Bet, error)
	ListByLeagueAndMatch(ctx context.Context, leagueID, matchID string) ([]Bet, error)
	ListByMatch(ctx context.Context, matchID string) ([]Bet, error)
}

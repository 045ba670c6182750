package postgres

import "time"

type betResultTableModel struct {
	BetPublicID     string    `db:"bet_public_id"`
	LeaguePublicID  string    `db:"league_public_id"`
	UserID          string    `db:"user_id"`
	MatchPublicID   string    `db:"match_public_id"`
	MatchKickoffAt  time.Time `db:"match_kickoff_at"`
	Points          int       `db:"points"`
	IsExact         bool      `db:"is_exact"`
	IsCorrect       bool      `db:"is_correct"`
	CalculatedAt    time.Time `db:"calculated_at"`
	Revision        int       `db:"revision"`
	AppliedRevision int       `db:"applied_revision"`
}

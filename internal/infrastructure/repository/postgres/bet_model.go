package postgres

import (
	"database/sql"
	"time"
)

type betTableModel struct {
	ID             int64        `db:"id"`
	PublicID       string       `db:"public_id"`
	LeaguePublicID string       `db:"league_public_id"`
	UserID         string       `db:"user_id"`
	MatchPublicID  string       `db:"match_public_id"`
	HomeScore      int          `db:"home_score"`
	AwayScore      int          `db:"away_score"`
	PlacedAt       time.Time    `db:"placed_at"`
	UpdatedAt      sql.NullTime `db:"updated_at"`
}

type betInsertModel struct {
	PublicID       string       `db:"public_id"`
	LeaguePublicID string       `db:"league_public_id"`
	UserID         string       `db:"user_id"`
	MatchPublicID  string       `db:"match_public_id"`
	HomeScore      int          `db:"home_score"`
	AwayScore      int          `db:"away_score"`
	PlacedAt       time.Time    `db:"placed_at"`
	UpdatedAt      sql.NullTime `db:"updated_at"`
}

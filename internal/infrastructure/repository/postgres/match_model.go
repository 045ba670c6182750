package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID            int64         `db:"id"`
	PublicID      string        `db:"public_id"`
	CompetitionID string        `db:"competition_id"`
	Season        string        `db:"season"`
	HomeTeamID    string        `db:"home_team_id"`
	AwayTeamID    string        `db:"away_team_id"`
	KickoffAt     time.Time     `db:"kickoff_at"`
	Status        string        `db:"status"`
	HomeScore     sql.NullInt64 `db:"home_score"`
	AwayScore     sql.NullInt64 `db:"away_score"`
	HalfTimeHome  sql.NullInt64 `db:"half_time_home"`
	HalfTimeAway  sql.NullInt64 `db:"half_time_away"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type leagueTableModel struct {
	ID                     int64          `db:"id"`
	PublicID               string         `db:"public_id"`
	OwnerUserID            string         `db:"owner_user_id"`
	Name                   string         `db:"name"`
	MaxMembers             int            `db:"max_members"`
	IsPublic               bool           `db:"is_public"`
	PointsExactMatch       int            `db:"points_exact_match"`
	PointsCorrectResult    int            `db:"points_correct_result"`
	BettingDeadlineMinutes int            `db:"betting_deadline_minutes"`
	AllowedCompetitionIDs  pq.StringArray `db:"allowed_competition_ids"`
	BotsEnabled            bool           `db:"bots_enabled"`
	CreatedAt              time.Time      `db:"created_at"`
	UpdatedAt              time.Time      `db:"updated_at"`
	DeletedAt              *time.Time     `db:"deleted_at"`
}

type leagueMemberTableModel struct {
	ID             int64        `db:"id"`
	LeaguePublicID string       `db:"league_public_id"`
	UserID         string       `db:"user_id"`
	IsBot          bool         `db:"is_bot"`
	JoinedAt       time.Time    `db:"joined_at"`
	LeftAt         sql.NullTime `db:"left_at"`
}

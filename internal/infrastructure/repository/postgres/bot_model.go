package postgres

import (
	"database/sql"
	"time"
)

type botTableModel struct {
	ID             int64          `db:"id"`
	PublicID       string         `db:"public_id"`
	UserID         string         `db:"user_id"`
	Name           string         `db:"name"`
	Strategy       string         `db:"strategy"`
	Config         sql.NullString `db:"config"`
	IsActive       bool           `db:"is_active"`
	LastActivityAt sql.NullTime   `db:"last_activity_at"`
	CreatedAt      time.Time      `db:"created_at"`
}

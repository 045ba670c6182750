package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UserRepository treats a user as known once they have joined any league.
// Accounts themselves live in the external auth service.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM league_members WHERE user_id = $1)`, userID); err != nil {
		return false, fmt.Errorf("check user exists user=%s: %w", userID, err)
	}
	return exists, nil
}

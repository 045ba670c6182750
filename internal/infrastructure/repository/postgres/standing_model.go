package postgres

import "time"

type memberStandingTableModel struct {
	LeaguePublicID string    `db:"league_public_id"`
	UserID         string    `db:"user_id"`
	TotalPoints    int       `db:"total_points"`
	BetsPlaced     int       `db:"bets_placed"`
	ExactCount     int       `db:"exact_count"`
	CorrectCount   int       `db:"correct_count"`
	CurrentStreak  int       `db:"current_streak"`
	BestStreak     int       `db:"best_streak"`
	UpdatedAt      time.Time `db:"updated_at"`
}

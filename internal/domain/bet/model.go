package bet

import (
	"fmt"
	"time"
)

// Bet is one bettor's score prediction for a match inside a league.
// At most one bet exists per (league, user, match).
type Bet struct {
	ID        string
	LeagueID  string
	UserID    string
	MatchID   string
	HomeScore int
	AwayScore int
	PlacedAt  time.Time
	UpdatedAt *time.Time
}

func (b Bet) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("bet id is required")
	}
	if b.LeagueID == "" || b.UserID == "" || b.MatchID == "" {
		return fmt.Errorf("bet league, user and match are required")
	}
	if b.HomeScore < 0 || b.AwayScore < 0 {
		return fmt.Errorf("bet scores must be >= 0")
	}

	return nil
}

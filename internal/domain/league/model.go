package league

import (
	"fmt"
	"slices"
	"time"
)

// League is a prediction league with its own scoring rule and deadline.
type League struct {
	ID                     string
	OwnerUserID            string
	Name                   string
	MaxMembers             int
	IsPublic               bool
	PointsExactMatch       int
	PointsCorrectResult    int
	BettingDeadlineMinutes int
	AllowedCompetitionIDs  []string
	BotsEnabled            bool
	CreatedAt              time.Time
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.PointsExactMatch < 0 || l.PointsCorrectResult < 0 {
		return fmt.Errorf("league points must be >= 0")
	}
	if l.BettingDeadlineMinutes < 0 {
		return fmt.Errorf("league betting deadline must be >= 0")
	}

	return nil
}

// BettingClosesAt is the last instant a bet on a match kicking off at
// kickoff is accepted.
func (l League) BettingClosesAt(kickoff time.Time) time.Time {
	return kickoff.Add(-time.Duration(l.BettingDeadlineMinutes) * time.Minute)
}

func (l League) IsBettingOpen(now, kickoff time.Time) bool {
	return !now.After(l.BettingClosesAt(kickoff))
}

// AllowsCompetition reports whether matches of the competition count in this
// league. An empty allow-list admits every competition.
func (l League) AllowsCompetition(competitionID string) bool {
	if len(l.AllowedCompetitionIDs) == 0 {
		return true
	}
	return slices.Contains(l.AllowedCompetitionIDs, competitionID)
}

type Member struct {
	LeagueID string
	UserID   string
	IsBot    bool
	JoinedAt time.Time
	LeftAt   *time.Time
}

func (m Member) IsActive() bool {
	return m.LeftAt == nil
}

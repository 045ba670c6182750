package match

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled       Status = "SCHEDULED"
	StatusTimed           Status = "TIMED"
	StatusInPlay          Status = "IN_PLAY"
	StatusPaused          Status = "PAUSED"
	StatusExtraTime       Status = "EXTRA_TIME"
	StatusPenaltyShootout Status = "PENALTY_SHOOTOUT"
	StatusFinished        Status = "FINISHED"
	StatusPostponed       Status = "POSTPONED"
	StatusSuspended       Status = "SUSPENDED"
	StatusCancelled       Status = "CANCELLED"
	StatusAwarded         Status = "AWARDED"
)

// Match is one fixture between two teams in a competition.
type Match struct {
	ID            string
	CompetitionID string
	Season        string
	HomeTeamID    string
	AwayTeamID    string
	KickoffAt     time.Time
	Status        Status
	HomeScore     *int
	AwayScore     *int
	HalfTimeHome  *int
	HalfTimeAway  *int
}

func NormalizeStatus(value string) Status {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if status == "" {
		return StatusScheduled
	}
	return status
}

// IsPreKickoff reports whether the match has not started yet.
func (m Match) IsPreKickoff() bool {
	switch m.Status {
	case StatusScheduled, StatusTimed:
		return true
	default:
		return false
	}
}

func (m Match) IsFinal() bool {
	return m.Status == StatusFinished || m.Status == StatusAwarded
}

// FinalScore returns the full-time score once the match is final.
func (m Match) FinalScore() (home, away int, ok bool) {
	if !m.IsFinal() || m.HomeScore == nil || m.AwayScore == nil {
		return 0, 0, false
	}
	return *m.HomeScore, *m.AwayScore, true
}

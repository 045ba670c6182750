package standing

import (
	"sort"
	"time"
)

// Standing is a member's aggregate record inside one league.
type Standing struct {
	LeagueID      string
	UserID        string
	TotalPoints   int
	BetsPlaced    int
	ExactCount    int
	CorrectCount  int
	CurrentStreak int
	BestStreak    int
	UpdatedAt     time.Time
	Rank          int
}

func New(leagueID, userID string, at time.Time) Standing {
	return Standing{LeagueID: leagueID, UserID: userID, UpdatedAt: at}
}

// ApplyBetResult folds one scored bet into the record. Any points extend the
// streak; a zero-point bet resets it.
func (s *Standing) ApplyBetResult(points int, isExact, isCorrect bool, at time.Time) {
	s.BetsPlaced++
	s.TotalPoints += points
	if isExact {
		s.ExactCount++
	}
	if isCorrect {
		s.CorrectCount++
	}
	if points > 0 {
		s.CurrentStreak++
	} else {
		s.CurrentStreak = 0
	}
	if s.CurrentStreak > s.BestStreak {
		s.BestStreak = s.CurrentStreak
	}
	s.UpdatedAt = at
}

// Less is the ranking order: points desc, exact desc, bets asc, then user id.
func Less(a, b Standing) bool {
	if a.TotalPoints != b.TotalPoints {
		return a.TotalPoints > b.TotalPoints
	}
	if a.ExactCount != b.ExactCount {
		return a.ExactCount > b.ExactCount
	}
	if a.BetsPlaced != b.BetsPlaced {
		return a.BetsPlaced < b.BetsPlaced
	}
	return a.UserID < b.UserID
}

// Rank sorts rows in place and assigns 1-based positions.
func Rank(rows []Standing) []Standing {
	sort.SliceStable(rows, func(i, j int) bool {
		return Less(rows[i], rows[j])
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

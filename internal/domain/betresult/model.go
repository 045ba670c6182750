package betresult

import "time"

// Result is the scored outcome of one bet. Revision moves only when points
// or flags change; AppliedRevision is the revision already folded into the
// member's standing (0 means pending).
type Result struct {
	BetID           string
	LeagueID        string
	UserID          string
	MatchID         string
	MatchKickoffAt  time.Time
	Points          int
	IsExact         bool
	IsCorrect       bool
	CalculatedAt    time.Time
	Revision        int
	AppliedRevision int
}

func (r Result) IsPending() bool {
	return r.AppliedRevision == 0
}

// IsStale reports a result that changed after it was applied.
func (r Result) IsStale() bool {
	return r.AppliedRevision != 0 && r.AppliedRevision != r.Revision
}

func (r Result) SameOutcome(other Result) bool {
	return r.Points == other.Points && r.IsExact == other.IsExact && r.IsCorrect == other.IsCorrect
}

// ReplayBefore orders results the way standings replay them: by kickoff,
// then match, then bet.
func ReplayBefore(a, b Result) bool {
	if !a.MatchKickoffAt.Equal(b.MatchKickoffAt) {
		return a.MatchKickoffAt.Before(b.MatchKickoffAt)
	}
	if a.MatchID != b.MatchID {
		return a.MatchID < b.MatchID
	}
	return a.BetID < b.BetID
}

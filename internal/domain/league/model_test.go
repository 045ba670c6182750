package league

import (
	"testing"
	"time"
)

func TestLeague_IsBettingOpen_DeadlineBoundary(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	l := League{BettingDeadlineMinutes: 60}

	if !l.IsBettingOpen(kickoff.Add(-61*time.Minute), kickoff) {
		t.Fatalf("expected betting open at T-61m")
	}
	if !l.IsBettingOpen(kickoff.Add(-60*time.Minute), kickoff) {
		t.Fatalf("expected betting open exactly at deadline")
	}
	if l.IsBettingOpen(kickoff.Add(-59*time.Minute), kickoff) {
		t.Fatalf("expected betting closed at T-59m")
	}
}

func TestLeague_AllowsCompetition(t *testing.T) {
	t.Parallel()

	open := League{}
	if !open.AllowsCompetition("PL") {
		t.Fatalf("expected empty allow-list to admit all")
	}

	restricted := League{AllowedCompetitionIDs: []string{"PL", "CL"}}
	if !restricted.AllowsCompetition("CL") {
		t.Fatalf("expected CL allowed")
	}
	if restricted.AllowsCompetition("SA") {
		t.Fatalf("expected SA rejected")
	}
}

func TestLeague_Validate(t *testing.T) {
	t.Parallel()

	valid := League{ID: "l1", Name: "Office", PointsExactMatch: 3, PointsCorrectResult: 1, BettingDeadlineMinutes: 15}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	negative := valid
	negative.PointsExactMatch = -1
	if err := negative.Validate(); err == nil {
		t.Fatalf("expected error for negative points")
	}
}

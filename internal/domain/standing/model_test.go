package standing

import (
	"testing"
	"time"
)

func TestStanding_ApplyBetResult(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New("l1", "u1", at)

	s.ApplyBetResult(3, true, true, at)
	s.ApplyBetResult(1, false, true, at)
	s.ApplyBetResult(0, false, false, at)
	s.ApplyBetResult(1, false, true, at.Add(time.Hour))

	if s.TotalPoints != 5 || s.BetsPlaced != 4 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.ExactCount != 1 || s.CorrectCount != 3 {
		t.Fatalf("unexpected counters: %+v", s)
	}
	if s.CurrentStreak != 1 || s.BestStreak != 2 {
		t.Fatalf("unexpected streaks: current=%d best=%d", s.CurrentStreak, s.BestStreak)
	}
	if !s.UpdatedAt.Equal(at.Add(time.Hour)) {
		t.Fatalf("unexpected updated at %s", s.UpdatedAt)
	}
}

func TestRank_TieBreaks(t *testing.T) {
	t.Parallel()

	rows := Rank([]Standing{
		{UserID: "b", TotalPoints: 8, ExactCount: 0, BetsPlaced: 3},
		{UserID: "c", TotalPoints: 10, ExactCount: 0, BetsPlaced: 9},
		{UserID: "a", TotalPoints: 8, ExactCount: 1, BetsPlaced: 6},
		{UserID: "e", TotalPoints: 8, ExactCount: 0, BetsPlaced: 5},
		{UserID: "d", TotalPoints: 8, ExactCount: 0, BetsPlaced: 5},
	})

	want := []string{"c", "a", "b", "d", "e"}
	for i, row := range rows {
		if row.UserID != want[i] {
			t.Fatalf("position %d: got %s want %s", i+1, row.UserID, want[i])
		}
		if row.Rank != i+1 {
			t.Fatalf("position %d: rank %d", i+1, row.Rank)
		}
	}
}

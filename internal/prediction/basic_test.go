package prediction

import (
	"context"
	"testing"
)

func TestSimpleStrategies_StayInEnvelope(t *testing.T) {
	t.Parallel()

	src := NewSource(42)
	cases := []struct {
		strategy         Strategy
		homeMin, homeMax int
		awayMin, awayMax int
		check            func(Score) bool
	}{
		{strategy: NewRandomStrategy(src), homeMax: 4, awayMax: 3},
		{strategy: NewHomeFavorerStrategy(src), homeMin: 1, homeMax: 3, awayMax: 2, check: func(s Score) bool { return s.Home >= s.Away }},
		{strategy: NewUnderdogSupporterStrategy(src), homeMax: 2, awayMin: 1, awayMax: 3, check: func(s Score) bool { return s.Away >= s.Home }},
		{strategy: NewDrawPredictorStrategy(src), homeMax: 3, awayMax: 3, check: func(s Score) bool { d := s.Home - s.Away; return d >= -1 && d <= 1 }},
		{strategy: NewHighScorerStrategy(src), homeMin: 2, homeMax: 4, awayMin: 1, awayMax: 3, check: func(s Score) bool { return s.Home+s.Away >= 3 }},
		{strategy: NewFallbackStrategy(src), homeMin: 1, homeMax: 2, awayMax: 2},
	}

	for _, tc := range cases {
		for i := 0; i < 2000; i++ {
			got, err := tc.strategy.Predict(context.Background(), testMatch(), Config{})
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tc.strategy.Kind(), err)
			}
			if got.Home < tc.homeMin || got.Home > tc.homeMax || got.Away < tc.awayMin || got.Away > tc.awayMax {
				t.Fatalf("%s: score %+v outside envelope", tc.strategy.Kind(), got)
			}
			if tc.check != nil && !tc.check(got) {
				t.Fatalf("%s: score %+v violates shape", tc.strategy.Kind(), got)
			}
		}
	}
}

func TestDrawPredictor_MostlyDraws(t *testing.T) {
	t.Parallel()

	strategy := NewDrawPredictorStrategy(NewSource(7))
	const runs = 5000
	draws := 0
	for i := 0; i < runs; i++ {
		got, _ := strategy.Predict(context.Background(), testMatch(), Config{})
		if got.Home == got.Away {
			draws++
		}
		if got.Home > 2 && got.Away > 2 {
			t.Fatalf("unexpected score %+v", got)
		}
	}

	ratio := float64(draws) / runs
	if ratio < 0.65 || ratio > 0.75 {
		t.Fatalf("draw ratio %.3f outside expected band", ratio)
	}
}

func TestRandomStrategy_CoversRange(t *testing.T) {
	t.Parallel()

	strategy := NewRandomStrategy(NewSource(1))
	seenHome := map[int]bool{}
	seenAway := map[int]bool{}
	for i := 0; i < 2000; i++ {
		got, _ := strategy.Predict(context.Background(), testMatch(), Config{})
		seenHome[got.Home] = true
		seenAway[got.Away] = true
	}
	if len(seenHome) != 5 || len(seenAway) != 4 {
		t.Fatalf("expected full coverage, home=%v away=%v", seenHome, seenAway)
	}
}

package prediction

import (
	"context"
	"testing"

	"github.com/riskibarqy/prediction-league/internal/domain/signal"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

func TestEnsemble_OutputWithinStyleEnvelope(t *testing.T) {
	t.Parallel()

	categories := signal.Categories()
	for _, styleName := range []string{"conservative", "balanced", "bold"} {
		for mask := 0; mask < 1<<len(categories); mask++ {
			stubs := newStubProviders()
			for i, c := range categories {
				stubs.health[c] = mask&(1<<i) != 0
			}
			builder := NewContextBuilder(stubs.bundle(), ContextBuilderConfig{}, logging.NewNop())
			fallback := NewFallbackStrategy(NewSource(3))
			strategy := NewEnsembleStrategy(builder, DefaultProfileSet(), fallback, NewSource(uint64(mask)), logging.NewNop())

			cfg := Config{Kind: KindStatsAnalyst, Ensemble: &EnsembleConfig{Profile: "balanced", Style: styleName}}
			style, _ := DefaultProfileSet().Style(styleName)

			got, err := strategy.Predict(context.Background(), testMatch(), cfg)
			if err != nil {
				t.Fatalf("style=%s mask=%b: unexpected error %v", styleName, mask, err)
			}
			inStyle := got.Home >= style.MinGoals && got.Home <= style.MaxGoals && got.Away >= style.MinGoals && got.Away <= style.MaxGoals
			inFallback := got.Home >= 1 && got.Home <= 2 && got.Away >= 0 && got.Away <= 2
			if !inStyle && !inFallback {
				t.Fatalf("style=%s mask=%b: score %+v outside envelope", styleName, mask, got)
			}
		}
	}
}

func TestEnsemble_DefersToFallbackBelowThreshold(t *testing.T) {
	t.Parallel()

	stubs := newStubProviders()
	stubs.health[signal.CategoryOdds] = false
	builder := NewContextBuilder(stubs.bundle(), ContextBuilderConfig{}, logging.NewNop())
	fallback := &recordingStrategy{kind: KindFallback, score: Score{Home: 1, Away: 0}}
	strategy := NewEnsembleStrategy(builder, DefaultProfileSet(), fallback, NewSource(1), logging.NewNop())

	got, err := strategy.Predict(context.Background(), testMatch(), Config{Kind: KindStatsAnalyst, Ensemble: &EnsembleConfig{Profile: "market_follower"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.calls != 1 || got != (Score{Home: 1, Away: 0}) {
		t.Fatalf("expected fallback prediction, calls=%d got=%+v", fallback.calls, got)
	}
}

func TestEnsemble_ZeroQualityAlwaysFallsBack(t *testing.T) {
	t.Parallel()

	stubs := newStubProviders()
	stubs.failing[signal.CategoryForm] = true
	builder := NewContextBuilder(stubs.bundle(), ContextBuilderConfig{}, logging.NewNop())
	fallback := &recordingStrategy{kind: KindFallback, score: Score{Home: 2, Away: 2}}
	strategy := NewEnsembleStrategy(builder, DefaultProfileSet(), fallback, NewSource(1), logging.NewNop())

	zero := 0.0
	cfg := Config{Kind: KindStatsAnalyst, Ensemble: &EnsembleConfig{Weights: map[string]float64{"form": 1}, MinDataQuality: &zero}}
	if _, err := strategy.Predict(context.Background(), testMatch(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.calls != 1 {
		t.Fatalf("expected fallback when quality is zero")
	}
}

func TestEnsemble_FavorsStrongerHomeSide(t *testing.T) {
	t.Parallel()

	stubs := newStubProviders()
	builder := NewContextBuilder(stubs.bundle(), ContextBuilderConfig{}, logging.NewNop())
	pc := builder.Build(context.Background(), testMatch(), DefaultProfileSet().Resolve(nil))

	home, away := Synthesize(pc)
	if home <= away {
		t.Fatalf("expected home expected goals above away, got %.2f vs %.2f", home, away)
	}
}

func TestToGoals_RoundingAndClamp(t *testing.T) {
	t.Parallel()

	noJitter := Style{MinGoals: 0, MaxGoals: 3}
	if got := toGoals(1.4, noJitter, nil); got != 1 {
		t.Fatalf("nearest rounding: got %d", got)
	}
	if got := toGoals(5.2, noJitter, nil); got != 3 {
		t.Fatalf("clamp: got %d", got)
	}

	roundUp := Style{MinGoals: 1, MaxGoals: 6, RoundUp: true}
	if got := toGoals(1.1, roundUp, nil); got != 2 {
		t.Fatalf("ceiling rounding: got %d", got)
	}
	if got := toGoals(-0.4, roundUp, nil); got != 1 {
		t.Fatalf("min clamp: got %d", got)
	}
}

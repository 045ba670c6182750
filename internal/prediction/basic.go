package prediction

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

type RandomStrategy struct {
	src Source
}

func NewRandomStrategy(src Source) *RandomStrategy {
	return &RandomStrategy{src: src}
}

func (s *RandomStrategy) Kind() Kind { return KindRandom }

func (s *RandomStrategy) Predict(_ context.Context, _ match.Match, _ Config) (Score, error) {
	return Score{Home: between(s.src, 0, 4), Away: between(s.src, 0, 3)}, nil
}

type HomeFavorerStrategy struct {
	src Source
}

func NewHomeFavorerStrategy(src Source) *HomeFavorerStrategy {
	return &HomeFavorerStrategy{src: src}
}

func (s *HomeFavorerStrategy) Kind() Kind { return KindHomeFavorer }

func (s *HomeFavorerStrategy) Predict(_ context.Context, _ match.Match, _ Config) (Score, error) {
	home := between(s.src, 1, 3)
	return Score{Home: home, Away: between(s.src, 0, home-1)}, nil
}

type UnderdogSupporterStrategy struct {
	src Source
}

func NewUnderdogSupporterStrategy(src Source) *UnderdogSupporterStrategy {
	return &UnderdogSupporterStrategy{src: src}
}

func (s *UnderdogSupporterStrategy) Kind() Kind { return KindUnderdogSupporter }

func (s *UnderdogSupporterStrategy) Predict(_ context.Context, _ match.Match, _ Config) (Score, error) {
	away := between(s.src, 1, 3)
	return Score{Home: between(s.src, 0, away-1), Away: away}, nil
}

// drawProbability is the share of draw predictions.
const drawProbability = 0.7

type DrawPredictorStrategy struct {
	src Source
}

func NewDrawPredictorStrategy(src Source) *DrawPredictorStrategy {
	return &DrawPredictorStrategy{src: src}
}

func (s *DrawPredictorStrategy) Kind() Kind { return KindDrawPredictor }

func (s *DrawPredictorStrategy) Predict(_ context.Context, _ match.Match, _ Config) (Score, error) {
	base := between(s.src, 0, 2)
	if s.src.Float64() < drawProbability {
		return Score{Home: base, Away: base}, nil
	}
	if s.src.IntN(2) == 0 {
		return Score{Home: base + 1, Away: base}, nil
	}
	return Score{Home: base, Away: base + 1}, nil
}

type HighScorerStrategy struct {
	src Source
}

func NewHighScorerStrategy(src Source) *HighScorerStrategy {
	return &HighScorerStrategy{src: src}
}

func (s *HighScorerStrategy) Kind() Kind { return KindHighScorer }

func (s *HighScorerStrategy) Predict(_ context.Context, _ match.Match, _ Config) (Score, error) {
	return Score{Home: between(s.src, 2, 4), Away: between(s.src, 1, 3)}, nil
}

// FallbackStrategy is the minimal-data prediction used when richer
// strategies cannot run.
type FallbackStrategy struct {
	src Source
}

func NewFallbackStrategy(src Source) *FallbackStrategy {
	return &FallbackStrategy{src: src}
}

func (s *FallbackStrategy) Kind() Kind { return KindFallback }

func (s *FallbackStrategy) Predict(_ context.Context, _ match.Match, _ Config) (Score, error) {
	return Score{Home: between(s.src, 1, 2), Away: between(s.src, 0, 2)}, nil
}

// Package prediction turns a match into a predicted score. Strategies are
// resolved by identifier through a Registry; the stats ensemble combines
// weighted signals and degrades when data is missing.
package prediction

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

type Kind string

const (
	KindRandom            Kind = "random"
	KindHomeFavorer       Kind = "home_favorer"
	KindUnderdogSupporter Kind = "underdog_supporter"
	KindDrawPredictor     Kind = "draw_predictor"
	KindHighScorer        Kind = "high_scorer"
	KindStatsAnalyst      Kind = "stats_analyst"
	KindMachineLearning   Kind = "machine_learning"
	KindFallback          Kind = "fallback"
)

type Score struct {
	Home int
	Away int
}

type Strategy interface {
	Kind() Kind
	Predict(ctx context.Context, m match.Match, cfg Config) (Score, error)
}

// Source is the randomness used by strategies. *rand.Rand satisfies it but
// is not safe for concurrent use; wrap it with NewSource.
type Source interface {
	IntN(n int) int
	Float64() float64
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a goroutine-safe source seeded deterministically.
func NewSource(seed uint64) Source {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func NewRandomSource() Source {
	return NewSource(rand.Uint64())
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// between returns a uniform integer in [lo, hi].
func between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

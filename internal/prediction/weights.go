package prediction

import (
	"strings"

	"github.com/riskibarqy/prediction-league/internal/domain/signal"
)

type Signal string

const (
	SignalForm          Signal = "form"
	SignalHomeAdvantage Signal = "home_advantage"
	SignalGoalTrend     Signal = "goal_trend"
	SignalStreak        Signal = "streak"
	SignalLineup        Signal = "lineup"
	SignalXGOffense     Signal = "xg_offense"
	SignalXGDefense     Signal = "xg_defense"
	SignalMarketOdds    Signal = "market_odds"
	SignalInjury        Signal = "injury"
	SignalElo           Signal = "elo"
)

// Signals lists every signal in a fixed order; iteration over weights
// always follows it.
func Signals() []Signal {
	return []Signal{
		SignalForm, SignalHomeAdvantage, SignalGoalTrend, SignalStreak, SignalLineup,
		SignalXGOffense, SignalXGDefense, SignalMarketOdds, SignalInjury, SignalElo,
	}
}

func (s Signal) Category() signal.Category {
	switch s {
	case SignalForm, SignalHomeAdvantage, SignalGoalTrend, SignalStreak:
		return signal.CategoryForm
	case SignalLineup:
		return signal.CategoryLineups
	case SignalXGOffense, SignalXGDefense:
		return signal.CategoryXG
	case SignalMarketOdds:
		return signal.CategoryOdds
	case SignalInjury:
		return signal.CategoryInjuries
	case SignalElo:
		return signal.CategoryElo
	default:
		return ""
	}
}

var categoryLabels = map[signal.Category]string{
	signal.CategoryForm:     "form",
	signal.CategoryXG:       "xG",
	signal.CategoryOdds:     "odds",
	signal.CategoryInjuries: "injury",
	signal.CategoryElo:      "Elo",
	signal.CategoryLineups:  "lineup",
}

func ParseSignal(v string) (Signal, bool) {
	candidate := Signal(strings.ToLower(strings.TrimSpace(v)))
	for _, s := range Signals() {
		if s == candidate {
			return s, true
		}
	}
	return "", false
}

// Weights are relative; they need not sum to 1. Non-positive weights are
// ignored.
type Weights map[Signal]float64

func (w Weights) Total() float64 {
	total := 0.0
	for _, s := range Signals() {
		if v := w[s]; v > 0 {
			total += v
		}
	}
	return total
}

func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Weighting is the outcome of redistributing weight away from unavailable
// signals.
type Weighting struct {
	Effective Weights
	// Quality is the share of configured weight still backed by data, 0-100.
	Quality     float64
	Unavailable []Signal
}

// EffectiveWeights removes the weight of unavailable signals and spreads it
// over the available ones in proportion to their own weight, so the total
// mass is unchanged whenever anything remains available.
func EffectiveWeights(weights Weights, available signal.Availability) Weighting {
	total := weights.Total()
	availableMass := 0.0
	out := Weighting{Effective: make(Weights, len(weights))}

	for _, s := range Signals() {
		w := weights[s]
		if w <= 0 {
			continue
		}
		if available.Has(s.Category()) {
			availableMass += w
			continue
		}
		out.Unavailable = append(out.Unavailable, s)
	}

	if total <= 0 || availableMass <= 0 {
		return out
	}

	scale := total / availableMass
	for _, s := range Signals() {
		w := weights[s]
		if w <= 0 || !available.Has(s.Category()) {
			continue
		}
		out.Effective[s] = w * scale
	}
	out.Quality = availableMass / total * 100
	return out
}

// CanMakePrediction refuses when no configured weight is backed by data or
// the quality is below the profile's minimum.
func (w Weighting) CanMakePrediction(minQuality float64) bool {
	return w.Quality > 0 && w.Quality >= minQuality
}

// DegradationWarnings names each unavailable category that carried weight,
// e.g. "xG data unavailable".
func (w Weighting) DegradationWarnings() []string {
	seen := make(map[signal.Category]struct{}, len(w.Unavailable))
	out := make([]string, 0, len(w.Unavailable))
	for _, s := range w.Unavailable {
		category := s.Category()
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		out = append(out, categoryLabels[category]+" data unavailable")
	}
	return out
}

func (w Weighting) DegradationWarning() string {
	return strings.Join(w.DegradationWarnings(), "; ")
}

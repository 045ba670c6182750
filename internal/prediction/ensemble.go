package prediction

import (
	"context"
	"math"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/signal"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// League-average expected goals used as the neutral baseline.
const (
	baselineHomeGoals = 1.45
	baselineAwayGoals = 1.15
	eloHomeAdvantage  = 65.0
)

// EnsembleStrategy is the "stats analyst": a weighted mix of signals that
// redistributes weight away from missing data and defers to the fallback
// strategy when too little is left.
type EnsembleStrategy struct {
	builder  *ContextBuilder
	profiles *ProfileSet
	fallback Strategy
	src      Source
	logger   *logging.Logger
}

func NewEnsembleStrategy(builder *ContextBuilder, profiles *ProfileSet, fallback Strategy, src Source, logger *logging.Logger) *EnsembleStrategy {
	if profiles == nil {
		profiles = DefaultProfileSet()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &EnsembleStrategy{
		builder:  builder,
		profiles: profiles,
		fallback: fallback,
		src:      src,
		logger:   logger,
	}
}

func (s *EnsembleStrategy) Kind() Kind { return KindStatsAnalyst }

func (s *EnsembleStrategy) Predict(ctx context.Context, m match.Match, cfg Config) (Score, error) {
	profile := s.profiles.Resolve(cfg.Ensemble)
	pc := s.builder.Build(ctx, m, profile)

	if warning := pc.Weighting.DegradationWarning(); warning != "" {
		s.logger.InfoContext(ctx, "ensemble prediction degraded",
			"match_id", m.ID,
			"profile", profile.Name,
			"data_quality", pc.Weighting.Quality,
			"warning", warning,
		)
	}
	if !pc.Weighting.CanMakePrediction(profile.MinDataQuality) {
		s.logger.WarnContext(ctx, "ensemble data quality below threshold, using fallback",
			"match_id", m.ID,
			"profile", profile.Name,
			"data_quality", pc.Weighting.Quality,
			"min_data_quality", profile.MinDataQuality,
		)
		return s.fallback.Predict(ctx, m, Config{Kind: KindFallback})
	}

	home, away := Synthesize(pc)
	return Score{
		Home: toGoals(home, profile.Style, s.src),
		Away: toGoals(away, profile.Style, s.src),
	}, nil
}

// Synthesize combines every available signal's estimate into home and away
// expected goals using the effective weights.
func Synthesize(pc *Context) (home, away float64) {
	sum := 0.0
	for _, sig := range Signals() {
		w := pc.Weighting.Effective[sig]
		if w <= 0 {
			continue
		}
		h, a, ok := estimate(sig, pc)
		if !ok {
			continue
		}
		home += w * h
		away += w * a
		sum += w
	}
	if sum <= 0 {
		return baselineHomeGoals, baselineAwayGoals
	}
	return math.Max(0, home/sum), math.Max(0, away/sum)
}

func estimate(sig Signal, pc *Context) (home, away float64, ok bool) {
	h, a := pc.Home, pc.Away
	switch sig {
	case SignalForm:
		if h.Form == nil || a.Form == nil {
			return 0, 0, false
		}
		hf, af := formFactor(h.Form.PointsPerMatch), formFactor(a.Form.PointsPerMatch)
		return baselineHomeGoals * hf * (2 - af), baselineAwayGoals * af * (2 - hf), true
	case SignalHomeAdvantage:
		if h.Form == nil || a.Form == nil {
			return 0, 0, false
		}
		return baselineHomeGoals * (0.7 + 0.6*h.Form.HomeWinRate), baselineAwayGoals * (0.7 + 0.6*a.Form.AwayWinRate), true
	case SignalGoalTrend:
		if h.Form == nil || a.Form == nil {
			return 0, 0, false
		}
		return (h.Form.GoalsForPerMatch + a.Form.GoalsAgainstPerMatch) / 2,
			(a.Form.GoalsForPerMatch + h.Form.GoalsAgainstPerMatch) / 2, true
	case SignalStreak:
		if h.Form == nil || a.Form == nil {
			return 0, 0, false
		}
		return baselineHomeGoals * streakFactor(h.Form.Streak), baselineAwayGoals * streakFactor(a.Form.Streak), true
	case SignalLineup:
		if h.Injuries == nil || a.Injuries == nil {
			return 0, 0, false
		}
		return baselineHomeGoals * lineupFactor(h.Injuries.MissingStarters),
			baselineAwayGoals * lineupFactor(a.Injuries.MissingStarters), true
	case SignalXGOffense:
		if h.XG == nil || a.XG == nil {
			return 0, 0, false
		}
		return math.Max(0, h.XG.XGPerMatch+0.5*h.XG.Overperformance),
			math.Max(0, a.XG.XGPerMatch+0.5*a.XG.Overperformance), true
	case SignalXGDefense:
		if h.XG == nil || a.XG == nil {
			return 0, 0, false
		}
		return a.XG.XGAgainstPerMatch, h.XG.XGAgainstPerMatch, true
	case SignalMarketOdds:
		if pc.Odds == nil {
			return 0, 0, false
		}
		c := clampFloat(pc.Odds.Confidence, 0, 1)
		switch pc.Odds.Favorite {
		case signal.FavoriteHome:
			return baselineHomeGoals * (1 + 0.5*c), baselineAwayGoals * (1 - 0.4*c), true
		case signal.FavoriteAway:
			return baselineHomeGoals * (1 - 0.4*c), baselineAwayGoals * (1 + 0.5*c), true
		default:
			level := (baselineHomeGoals + baselineAwayGoals) / 2 * (1 - 0.3*c)
			return level, level, true
		}
	case SignalInjury:
		if h.Injuries == nil || a.Injuries == nil {
			return 0, 0, false
		}
		return baselineHomeGoals * (1 - 0.3*clampFloat(h.Injuries.ImpactScore, 0, 1)),
			baselineAwayGoals * (1 - 0.3*clampFloat(a.Injuries.ImpactScore, 0, 1)), true
	case SignalElo:
		if h.Elo == nil || a.Elo == nil {
			return 0, 0, false
		}
		diff := h.Elo.Rating + eloHomeAdvantage - a.Elo.Rating
		pHome := 1 / (1 + math.Pow(10, -diff/400))
		return baselineHomeGoals * (0.5 + pHome), baselineAwayGoals * (1.5 - pHome), true
	default:
		return 0, 0, false
	}
}

// formFactor maps points per match (0-3) onto [0.75, 1.25].
func formFactor(ppm float64) float64 {
	return 0.75 + 0.5*clampFloat(ppm, 0, 3)/3
}

func streakFactor(streak int) float64 {
	return 1 + 0.04*float64(clampInt(streak, -5, 5))
}

func lineupFactor(missing int) float64 {
	return 1 - 0.05*float64(clampInt(missing, 0, 6))
}

// toGoals jitters, rounds and clamps one expected-goal value into the style
// envelope.
func toGoals(expected float64, style Style, src Source) int {
	v := expected
	if style.Variance > 0 && src != nil {
		v += (src.Float64()*2 - 1) * style.Variance
	}
	v = math.Max(0, v)

	var goals int
	if style.RoundUp {
		goals = int(math.Ceil(v))
	} else {
		goals = int(math.Round(v))
	}
	return clampInt(goals, style.MinGoals, style.MaxGoals)
}

package prediction

import (
	"context"
	"math"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// ExpectedScore is a model's continuous estimate of the final score.
type ExpectedScore struct {
	Home float64
	Away float64
}

// LearningService is the external model-serving collaborator.
type LearningService interface {
	ActiveModelVersion(ctx context.Context, modelType string) (string, error)
	PredictScores(ctx context.Context, m match.Match, modelVersion string) (ExpectedScore, error)
}

const maxLearningGoals = 9

// roundingThresholds is the fractional part at which a profile rounds up.
var roundingThresholds = map[string]float64{
	"balanced":     0.5,
	"aggressive":   0.3,
	"conservative": 0.7,
}

type MachineLearningStrategy struct {
	service  LearningService
	fallback Strategy
	logger   *logging.Logger
}

func NewMachineLearningStrategy(service LearningService, fallback Strategy, logger *logging.Logger) *MachineLearningStrategy {
	if logger == nil {
		logger = logging.Default()
	}
	return &MachineLearningStrategy{service: service, fallback: fallback, logger: logger}
}

func (s *MachineLearningStrategy) Kind() Kind { return KindMachineLearning }

// Predict never fails on model errors; it falls back instead.
func (s *MachineLearningStrategy) Predict(ctx context.Context, m match.Match, cfg Config) (Score, error) {
	lc := cfg.Learning
	if lc == nil {
		lc = &LearningConfig{ModelType: defaultModelType}
	}

	version, err := s.service.ActiveModelVersion(ctx, lc.ModelType)
	if err != nil {
		s.logger.WarnContext(ctx, "model version lookup failed, using fallback", "match_id", m.ID, "model_type", lc.ModelType, "error", err)
		return s.fallback.Predict(ctx, m, Config{Kind: KindFallback})
	}
	expected, err := s.service.PredictScores(ctx, m, version)
	if err != nil {
		s.logger.WarnContext(ctx, "model prediction failed, using fallback", "match_id", m.ID, "model_version", version, "error", err)
		return s.fallback.Predict(ctx, m, Config{Kind: KindFallback})
	}

	threshold, ok := roundingThresholds[normalizeName(lc.Profile)]
	if !ok {
		threshold = roundingThresholds["balanced"]
	}
	return Score{
		Home: roundWithThreshold(expected.Home, threshold),
		Away: roundWithThreshold(expected.Away, threshold),
	}, nil
}

func roundWithThreshold(v, threshold float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	whole, frac := math.Modf(v)
	goals := int(whole)
	if frac+1e-9 >= threshold {
		goals++
	}
	return clampInt(goals, 0, maxLearningGoals)
}

package prediction

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var ErrInvalidConfig = errors.New("invalid strategy config")

// Config is the per-bot strategy configuration. At most one variant is set,
// matching Kind.
type Config struct {
	Kind     Kind
	Ensemble *EnsembleConfig
	Learning *LearningConfig
}

// EnsembleConfig selects an ensemble profile and optionally overrides parts
// of it.
type EnsembleConfig struct {
	Profile        string             `json:"profile"`
	Style          string             `json:"style"`
	Weights        map[string]float64 `json:"weights"`
	MinDataQuality *float64           `json:"min_data_quality"`
}

type LearningConfig struct {
	Profile   string `json:"profile"`
	ModelType string `json:"model_type"`
}

const defaultModelType = "score_regression"

// ParseConfig decodes a bot's raw configuration for the given kind. Kinds
// without parameters ignore raw.
func ParseConfig(kind Kind, raw []byte) (Config, error) {
	cfg := Config{Kind: kind}
	raw = bytes.TrimSpace(raw)
	empty := len(raw) == 0 || bytes.Equal(raw, []byte("null"))

	switch kind {
	case KindStatsAnalyst:
		cfg.Ensemble = &EnsembleConfig{}
		if !empty {
			if err := sonic.Unmarshal(raw, cfg.Ensemble); err != nil {
				return Config{Kind: kind, Ensemble: &EnsembleConfig{}}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, kind, err)
			}
		}
	case KindMachineLearning:
		cfg.Learning = &LearningConfig{}
		if !empty {
			if err := sonic.Unmarshal(raw, cfg.Learning); err != nil {
				return Config{Kind: kind, Learning: &LearningConfig{ModelType: defaultModelType}}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, kind, err)
			}
		}
		if cfg.Learning.ModelType == "" {
			cfg.Learning.ModelType = defaultModelType
		}
	}

	return cfg, nil
}

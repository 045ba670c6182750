package prediction

import (
	"errors"
	"testing"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(KindStatsAnalyst, []byte(`{"profile":"xg_focused","weights":{"elo":1},"min_data_quality":65}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Ensemble == nil || cfg.Ensemble.Profile != "xg_focused" || cfg.Ensemble.Weights["elo"] != 1 {
		t.Fatalf("unexpected ensemble config %+v", cfg.Ensemble)
	}
	if cfg.Ensemble.MinDataQuality == nil || *cfg.Ensemble.MinDataQuality != 65 {
		t.Fatalf("unexpected min quality %+v", cfg.Ensemble.MinDataQuality)
	}
	if cfg.Learning != nil {
		t.Fatalf("unexpected learning variant")
	}
}

func TestParseConfig_EmptyBlobUsesDefaults(t *testing.T) {
	t.Parallel()

	for _, raw := range [][]byte{nil, []byte("  "), []byte("null")} {
		cfg, err := ParseConfig(KindMachineLearning, raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if cfg.Learning == nil || cfg.Learning.ModelType != defaultModelType {
			t.Fatalf("unexpected learning config %+v", cfg.Learning)
		}
	}

	cfg, err := ParseConfig(KindRandom, []byte(`{"anything":true}`))
	if err != nil || cfg.Ensemble != nil || cfg.Learning != nil {
		t.Fatalf("expected parameterless config, got %+v err=%v", cfg, err)
	}
}

func TestParseConfig_MalformedReturnsDefaultsAndError(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(KindStatsAnalyst, []byte(`{"profile":`))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if cfg.Ensemble == nil {
		t.Fatalf("expected usable default variant alongside the error")
	}
}

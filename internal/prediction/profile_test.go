package prediction

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProfileSet_ResolveOverrides(t *testing.T) {
	t.Parallel()

	set := DefaultProfileSet()
	minQuality := 90.0
	got := set.Resolve(&EnsembleConfig{
		Profile:        "xg_focused",
		Style:          "bold",
		Weights:        map[string]float64{"elo": 2, "unknown": 5, "form": -1},
		MinDataQuality: &minQuality,
	})

	if got.Name != "xg_focused" {
		t.Fatalf("unexpected profile %q", got.Name)
	}
	if got.Style.Name != "bold" || !got.Style.RoundUp {
		t.Fatalf("expected bold style, got %+v", got.Style)
	}
	if len(got.Weights) != 1 || got.Weights[SignalElo] != 2 {
		t.Fatalf("unexpected weights %+v", got.Weights)
	}
	if got.MinDataQuality != 90 {
		t.Fatalf("unexpected min quality %v", got.MinDataQuality)
	}

	original, _ := set.Get("xg_focused")
	if original.Weights[SignalXGOffense] != 0.40 {
		t.Fatalf("override leaked into stored profile: %+v", original.Weights)
	}
}

func TestProfileSet_UnknownProfileUsesDefault(t *testing.T) {
	t.Parallel()

	got := DefaultProfileSet().Resolve(&EnsembleConfig{Profile: "nope"})
	if got.Name != DefaultProfileName {
		t.Fatalf("expected default profile, got %q", got.Name)
	}
}

func TestLoadProfiles_MergesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `
styles:
  - name: cautious
    min_goals: 0
    max_goals: 2
    variance: 0
profiles:
  - name: derby
    style: cautious
    min_data_quality: 55
    weights:
      form: 0.5
      elo: 0.5
  - name: balanced
    weights:
      market_odds: 1
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	set, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("load profiles: %v", err)
	}

	derby, ok := set.Get("derby")
	if !ok {
		t.Fatalf("expected derby profile")
	}
	if derby.Style.MaxGoals != 2 || derby.MinDataQuality != 55 || derby.Weights[SignalElo] != 0.5 {
		t.Fatalf("unexpected derby profile %+v", derby)
	}

	balanced, _ := set.Get("balanced")
	if len(balanced.Weights) != 1 || balanced.Weights[SignalMarketOdds] != 1 {
		t.Fatalf("expected balanced to be replaced, got %+v", balanced.Weights)
	}
	if _, ok := set.Get("xg_focused"); !ok {
		t.Fatalf("expected built-in profiles to remain")
	}
}

func TestLoadProfiles_RejectsUnknownSignal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := "profiles:\n  - name: broken\n    weights:\n      moon_phase: 1\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	if _, err := LoadProfiles(path); err == nil {
		t.Fatalf("expected error for unknown signal")
	}
}

func TestLoadProfiles_EmptyPathUsesDefaults(t *testing.T) {
	t.Parallel()

	set, err := LoadProfiles("")
	if err != nil {
		t.Fatalf("load profiles: %v", err)
	}
	if len(set.Names()) != len(defaultProfiles()) {
		t.Fatalf("unexpected profiles %v", set.Names())
	}
}

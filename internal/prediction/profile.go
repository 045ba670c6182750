package prediction

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Style bounds the ensemble output and controls rounding and jitter.
type Style struct {
	Name     string  `yaml:"name"`
	MinGoals int     `yaml:"min_goals"`
	MaxGoals int     `yaml:"max_goals"`
	Variance float64 `yaml:"variance"`
	RoundUp  bool    `yaml:"round_up"`
}

var (
	StyleConservative = Style{Name: "conservative", MinGoals: 0, MaxGoals: 3, Variance: 0.1}
	StyleBalanced     = Style{Name: "balanced", MinGoals: 0, MaxGoals: 4, Variance: 0.25}
	StyleBold         = Style{Name: "bold", MinGoals: 0, MaxGoals: 6, Variance: 0.5, RoundUp: true}
)

type Profile struct {
	Name           string
	Weights        Weights
	Style          Style
	MinDataQuality float64
}

const DefaultProfileName = "balanced"

func defaultProfiles() []Profile {
	return []Profile{
		{
			Name: "balanced",
			Weights: Weights{
				SignalForm: 0.20, SignalHomeAdvantage: 0.10, SignalGoalTrend: 0.10, SignalStreak: 0.05,
				SignalLineup: 0.05, SignalXGOffense: 0.15, SignalXGDefense: 0.10, SignalMarketOdds: 0.15,
				SignalInjury: 0.05, SignalElo: 0.05,
			},
			Style:          StyleBalanced,
			MinDataQuality: 50,
		},
		{
			Name: "form_focused",
			Weights: Weights{
				SignalForm: 0.40, SignalHomeAdvantage: 0.20, SignalGoalTrend: 0.20, SignalStreak: 0.20,
			},
			Style:          StyleConservative,
			MinDataQuality: 60,
		},
		{
			Name: "xg_focused",
			Weights: Weights{
				SignalXGOffense: 0.40, SignalXGDefense: 0.40, SignalForm: 0.10, SignalElo: 0.10,
			},
			Style:          StyleBalanced,
			MinDataQuality: 70,
		},
		{
			Name: "market_follower",
			Weights: Weights{
				SignalMarketOdds: 0.80, SignalForm: 0.20,
			},
			Style:          StyleConservative,
			MinDataQuality: 40,
		},
		{
			Name: "aggressive",
			Weights: Weights{
				SignalForm: 0.30, SignalGoalTrend: 0.30, SignalXGOffense: 0.40,
			},
			Style:          StyleBold,
			MinDataQuality: 40,
		},
	}
}

// ProfileSet holds named ensemble profiles and styles.
type ProfileSet struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	styles   map[string]Style
}

func DefaultProfileSet() *ProfileSet {
	set := &ProfileSet{
		profiles: make(map[string]Profile),
		styles: map[string]Style{
			StyleConservative.Name: StyleConservative,
			StyleBalanced.Name:     StyleBalanced,
			StyleBold.Name:         StyleBold,
		},
	}
	for _, p := range defaultProfiles() {
		set.profiles[p.Name] = p
	}
	return set
}

func (s *ProfileSet) Get(name string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[normalizeName(name)]
	if !ok {
		return Profile{}, false
	}
	p.Weights = p.Weights.Clone()
	return p, true
}

func (s *ProfileSet) Style(name string) (Style, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.styles[normalizeName(name)]
	return st, ok
}

func (s *ProfileSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *ProfileSet) Put(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Name = normalizeName(p.Name)
	s.profiles[p.Name] = p
}

// Resolve applies a bot's overrides on top of its named profile. Unknown
// profile names use the default profile.
func (s *ProfileSet) Resolve(cfg *EnsembleConfig) Profile {
	base, ok := s.Get(DefaultProfileName)
	if !ok {
		base = defaultProfiles()[0]
	}
	if cfg == nil {
		return base
	}

	if p, ok := s.Get(cfg.Profile); ok {
		base = p
	}
	if st, ok := s.Style(cfg.Style); ok {
		base.Style = st
	}
	if len(cfg.Weights) > 0 {
		weights := make(Weights, len(cfg.Weights))
		for key, value := range cfg.Weights {
			if sig, ok := ParseSignal(key); ok && value > 0 {
				weights[sig] = value
			}
		}
		if len(weights) > 0 {
			base.Weights = weights
		}
	}
	if cfg.MinDataQuality != nil {
		base.MinDataQuality = clampFloat(*cfg.MinDataQuality, 0, 100)
	}
	return base
}

type profileFile struct {
	Styles   []Style `yaml:"styles"`
	Profiles []struct {
		Name           string             `yaml:"name"`
		Style          string             `yaml:"style"`
		MinDataQuality float64            `yaml:"min_data_quality"`
		Weights        map[string]float64 `yaml:"weights"`
	} `yaml:"profiles"`
}

// LoadProfiles reads additional styles and profiles from a YAML file on top
// of the built-in set. Entries with an existing name replace it.
func LoadProfiles(path string) (*ProfileSet, error) {
	set := DefaultProfileSet()
	if strings.TrimSpace(path) == "" {
		return set, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}
	if err := set.merge(raw); err != nil {
		return nil, fmt.Errorf("parse profiles file %s: %w", path, err)
	}
	return set, nil
}

func (s *ProfileSet) merge(raw []byte) error {
	var file profileFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return err
	}

	for _, st := range file.Styles {
		name := normalizeName(st.Name)
		if name == "" {
			return fmt.Errorf("style name is required")
		}
		if st.MinGoals < 0 || st.MaxGoals < st.MinGoals {
			return fmt.Errorf("style %s: invalid goal bounds [%d,%d]", name, st.MinGoals, st.MaxGoals)
		}
		if st.Variance < 0 {
			return fmt.Errorf("style %s: variance must be >= 0", name)
		}
		st.Name = name
		s.mu.Lock()
		s.styles[name] = st
		s.mu.Unlock()
	}

	for _, item := range file.Profiles {
		name := normalizeName(item.Name)
		if name == "" {
			return fmt.Errorf("profile name is required")
		}
		style, ok := s.Style(item.Style)
		if !ok {
			if item.Style != "" {
				return fmt.Errorf("profile %s: unknown style %q", name, item.Style)
			}
			style = StyleBalanced
		}
		weights := make(Weights, len(item.Weights))
		for key, value := range item.Weights {
			sig, ok := ParseSignal(key)
			if !ok {
				return fmt.Errorf("profile %s: unknown signal %q", name, key)
			}
			weights[sig] = value
		}
		if weights.Total() <= 0 {
			return fmt.Errorf("profile %s: at least one positive weight is required", name)
		}
		s.Put(Profile{
			Name:           name,
			Weights:        weights,
			Style:          style,
			MinDataQuality: clampFloat(item.MinDataQuality, 0, 100),
		})
	}
	return nil
}

func normalizeName(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

package prediction

import (
	"strings"
	"sync"
	"unicode"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// Dependencies are shared by strategies that need collaborators. Nil members
// disable the strategies that depend on them.
type Dependencies struct {
	Context  *ContextBuilder
	Learning LearningService
	Profiles *ProfileSet
	Source   Source
	Logger   *logging.Logger
}

type constructor func(deps Dependencies, fallback Strategy) (Strategy, bool)

var constructors = map[Kind]constructor{
	KindRandom: func(d Dependencies, _ Strategy) (Strategy, bool) {
		return NewRandomStrategy(d.Source), true
	},
	KindHomeFavorer: func(d Dependencies, _ Strategy) (Strategy, bool) {
		return NewHomeFavorerStrategy(d.Source), true
	},
	KindUnderdogSupporter: func(d Dependencies, _ Strategy) (Strategy, bool) {
		return NewUnderdogSupporterStrategy(d.Source), true
	},
	KindDrawPredictor: func(d Dependencies, _ Strategy) (Strategy, bool) {
		return NewDrawPredictorStrategy(d.Source), true
	},
	KindHighScorer: func(d Dependencies, _ Strategy) (Strategy, bool) {
		return NewHighScorerStrategy(d.Source), true
	},
	KindFallback: func(_ Dependencies, fallback Strategy) (Strategy, bool) {
		return fallback, true
	},
	KindStatsAnalyst: func(d Dependencies, fallback Strategy) (Strategy, bool) {
		if d.Context == nil {
			return nil, false
		}
		return NewEnsembleStrategy(d.Context, d.Profiles, fallback, d.Source, d.Logger), true
	},
	KindMachineLearning: func(d Dependencies, fallback Strategy) (Strategy, bool) {
		if d.Learning == nil {
			return nil, false
		}
		return NewMachineLearningStrategy(d.Learning, fallback, d.Logger), true
	},
}

// Registry resolves strategy identifiers. Unknown identifiers, and
// strategies whose collaborators are not wired, resolve to Random so a bot
// assignment is always satisfiable.
type Registry struct {
	mu        sync.Mutex
	deps      Dependencies
	fallback  Strategy
	random    Strategy
	instances map[Kind]Strategy
}

func NewRegistry(deps Dependencies) *Registry {
	if deps.Source == nil {
		deps.Source = NewRandomSource()
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	return &Registry{
		deps:      deps,
		fallback:  NewFallbackStrategy(deps.Source),
		random:    NewRandomStrategy(deps.Source),
		instances: make(map[Kind]Strategy),
	}
}

func (r *Registry) Resolve(id string) Strategy {
	kind := NormalizeKind(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.instances[kind]; ok {
		return s
	}

	build, ok := constructors[kind]
	if !ok {
		r.deps.Logger.Warn("unknown strategy, using random", "strategy", id)
		return r.random
	}
	s, ok := build(r.deps, r.fallback)
	if !ok {
		r.deps.Logger.Warn("strategy dependencies not wired, using random", "strategy", kind)
		return r.random
	}
	r.instances[kind] = s
	return s
}

// NormalizeKind accepts snake_case, kebab-case and PascalCase identifiers.
func NormalizeKind(id string) Kind {
	id = strings.TrimSpace(id)
	var b strings.Builder
	b.Grow(len(id) + 4)
	prevLower := false
	for _, r := range id {
		switch {
		case r == '-' || r == ' ' || r == '_':
			b.WriteByte('_')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return Kind(b.String())
}

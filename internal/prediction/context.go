package prediction

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/signal"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

// TeamSignals holds what was fetched for one side. Nil means unavailable.
type TeamSignals struct {
	Form     *signal.Form
	XG       *signal.ExpectedGoals
	Injuries *signal.Injuries
	Elo      *signal.Elo
}

// Context is the ensemble's working state for one prediction.
type Context struct {
	Match        match.Match
	Profile      Profile
	Home         TeamSignals
	Away         TeamSignals
	Odds         *signal.Odds
	Availability signal.Availability
	Weighting    Weighting
}

type ContextBuilderConfig struct {
	FormLookbackMatches int
}

// ContextBuilder gathers signals for a match. Each provider is asked at most
// once per team, and a failing provider only marks its category unavailable.
type ContextBuilder struct {
	providers signal.Providers
	cfg       ContextBuilderConfig
	logger    *logging.Logger
}

func NewContextBuilder(providers signal.Providers, cfg ContextBuilderConfig, logger *logging.Logger) *ContextBuilder {
	if cfg.FormLookbackMatches <= 0 {
		cfg.FormLookbackMatches = 5
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ContextBuilder{providers: providers, cfg: cfg, logger: logger}
}

func (b *ContextBuilder) Build(ctx context.Context, m match.Match, profile Profile) *Context {
	flags := b.availabilityFlags(ctx)
	needed := make(map[signal.Category]bool)
	for _, s := range Signals() {
		if profile.Weights[s] > 0 {
			needed[s.Category()] = true
		}
	}
	want := func(c signal.Category) bool {
		return needed[c] && flags.Has(c)
	}

	out := &Context{Match: m, Profile: profile}
	p := b.providers
	var wg conc.WaitGroup

	if want(signal.CategoryForm) && p.Form != nil {
		for _, side := range []struct {
			teamID string
			dst    **signal.Form
		}{{m.HomeTeamID, &out.Home.Form}, {m.AwayTeamID, &out.Away.Form}} {
			wg.Go(func() {
				fetchInto(ctx, b.logger, signal.CategoryForm, side.teamID, side.dst, func(ctx context.Context) (signal.Form, error) {
					return p.Form.GetForm(ctx, side.teamID, m.CompetitionID, b.cfg.FormLookbackMatches)
				})
			})
		}
	}
	if want(signal.CategoryXG) && p.XG != nil {
		for _, side := range []struct {
			teamID string
			dst    **signal.ExpectedGoals
		}{{m.HomeTeamID, &out.Home.XG}, {m.AwayTeamID, &out.Away.XG}} {
			wg.Go(func() {
				fetchInto(ctx, b.logger, signal.CategoryXG, side.teamID, side.dst, func(ctx context.Context) (signal.ExpectedGoals, error) {
					return p.XG.GetTeamXG(ctx, side.teamID, m.CompetitionID, m.Season)
				})
			})
		}
	}
	if (want(signal.CategoryInjuries) || want(signal.CategoryLineups)) && p.Injuries != nil {
		for _, side := range []struct {
			teamID string
			dst    **signal.Injuries
		}{{m.HomeTeamID, &out.Home.Injuries}, {m.AwayTeamID, &out.Away.Injuries}} {
			wg.Go(func() {
				fetchInto(ctx, b.logger, signal.CategoryInjuries, side.teamID, side.dst, func(ctx context.Context) (signal.Injuries, error) {
					return p.Injuries.GetTeamInjuries(ctx, side.teamID)
				})
			})
		}
	}
	if want(signal.CategoryElo) && p.Elo != nil {
		for _, side := range []struct {
			teamID string
			dst    **signal.Elo
		}{{m.HomeTeamID, &out.Home.Elo}, {m.AwayTeamID, &out.Away.Elo}} {
			wg.Go(func() {
				fetchInto(ctx, b.logger, signal.CategoryElo, side.teamID, side.dst, func(ctx context.Context) (signal.Elo, error) {
					return p.Elo.GetTeamElo(ctx, side.teamID)
				})
			})
		}
	}
	if want(signal.CategoryOdds) && p.Odds != nil {
		wg.Go(func() {
			fetchInto(ctx, b.logger, signal.CategoryOdds, m.ID, &out.Odds, func(ctx context.Context) (signal.Odds, error) {
				return p.Odds.GetOddsForMatch(ctx, m)
			})
		})
	}

	if recovered := wg.WaitAndRecover(); recovered != nil {
		b.logger.ErrorContext(ctx, "signal fetch panicked", "match_id", m.ID, "panic", recovered.String())
	}

	out.Availability = signal.Availability{
		signal.CategoryForm:     flags.Has(signal.CategoryForm) && out.Home.Form != nil && out.Away.Form != nil,
		signal.CategoryXG:       flags.Has(signal.CategoryXG) && out.Home.XG != nil && out.Away.XG != nil,
		signal.CategoryInjuries: flags.Has(signal.CategoryInjuries) && out.Home.Injuries != nil && out.Away.Injuries != nil,
		signal.CategoryLineups:  flags.Has(signal.CategoryLineups) && out.Home.Injuries != nil && out.Away.Injuries != nil,
		signal.CategoryElo:      flags.Has(signal.CategoryElo) && out.Home.Elo != nil && out.Away.Elo != nil,
		signal.CategoryOdds:     flags.Has(signal.CategoryOdds) && out.Odds != nil,
	}
	out.Weighting = EffectiveWeights(profile.Weights, out.Availability)
	return out
}

// availabilityFlags asks the health service once. Without one, a category is
// available when its provider is wired.
func (b *ContextBuilder) availabilityFlags(ctx context.Context) signal.Availability {
	p := b.providers
	wired := signal.Availability{
		signal.CategoryForm:     p.Form != nil,
		signal.CategoryXG:       p.XG != nil,
		signal.CategoryOdds:     p.Odds != nil,
		signal.CategoryInjuries: p.Injuries != nil,
		signal.CategoryLineups:  p.Injuries != nil,
		signal.CategoryElo:      p.Elo != nil,
	}
	if p.Health == nil {
		return wired
	}

	flags, err := p.Health.GetDataAvailability(ctx)
	if err != nil {
		b.logger.WarnContext(ctx, "data availability check failed, assuming wired providers are healthy", "error", err)
		return wired
	}
	out := make(signal.Availability, len(wired))
	for category, ok := range wired {
		out[category] = ok && flags.Has(category)
	}
	return out
}

func fetchInto[T any](
	ctx context.Context,
	logger *logging.Logger,
	category signal.Category,
	subjectID string,
	dst **T,
	fn func(context.Context) (T, error),
) {
	value, err := fn(ctx)
	if err != nil {
		logger.WarnContext(ctx, "signal unavailable",
			"category", category,
			"subject_id", subjectID,
			"error", err,
		)
		return
	}
	*dst = &value
}

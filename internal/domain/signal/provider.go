package signal

import (
	"context"
	"errors"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

// ErrNoData is returned when a provider holds nothing for the subject.
var ErrNoData = errors.New("signal: no data")

type FormProvider interface {
	GetForm(ctx context.Context, teamID, competitionID string, lookbackMatches int) (Form, error)
}

type XGProvider interface {
	GetTeamXG(ctx context.Context, teamID, competitionID, season string) (ExpectedGoals, error)
}

type OddsProvider interface {
	GetOddsForMatch(ctx context.Context, m match.Match) (Odds, error)
}

type InjuryProvider interface {
	GetTeamInjuries(ctx context.Context, teamID string) (Injuries, error)
}

type EloProvider interface {
	GetTeamElo(ctx context.Context, teamID string) (Elo, error)
}

// HealthService reports which provider categories are currently usable.
type HealthService interface {
	GetDataAvailability(ctx context.Context) (Availability, error)
}

// Providers bundles the signal sources. Nil members are treated as
// permanently unavailable.
type Providers struct {
	Form     FormProvider
	XG       XGProvider
	Odds     OddsProvider
	Injuries InjuryProvider
	Elo      EloProvider
	Health   HealthService
}

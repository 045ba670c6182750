package signal

import "time"

// Category groups signals by the provider that backs them.
type Category string

const (
	CategoryForm     Category = "form"
	CategoryXG       Category = "xg"
	CategoryOdds     Category = "odds"
	CategoryInjuries Category = "injuries"
	CategoryElo      Category = "elo"
	CategoryLineups  Category = "lineups"
)

func Categories() []Category {
	return []Category{CategoryForm, CategoryXG, CategoryOdds, CategoryInjuries, CategoryElo, CategoryLineups}
}

// Form is a team's recent results over a lookback window.
type Form struct {
	TeamID               string
	Matches              int
	PointsPerMatch       float64
	GoalsForPerMatch     float64
	GoalsAgainstPerMatch float64
	HomeWinRate          float64
	AwayWinRate          float64
	// Streak is signed: positive for consecutive wins, negative for losses.
	Streak int
	AsOf   time.Time
}

type ExpectedGoals struct {
	TeamID            string
	XGPerMatch        float64
	XGAgainstPerMatch float64
	Overperformance   float64
	AsOf              time.Time
}

type Favorite string

const (
	FavoriteHome Favorite = "home"
	FavoriteDraw Favorite = "draw"
	FavoriteAway Favorite = "away"
)

// Odds is the market view on one match. Confidence is in [0,1].
type Odds struct {
	MatchID    string
	Favorite   Favorite
	Confidence float64
	AsOf       time.Time
}

// Injuries summarizes unavailable players. ImpactScore is in [0,1].
type Injuries struct {
	TeamID          string
	ImpactScore     float64
	MissingStarters int
	AsOf            time.Time
}

type Elo struct {
	TeamID string
	Rating float64
	Rank   int
	AsOf   time.Time
}

// Availability flags which categories can be used right now.
type Availability map[Category]bool

func (a Availability) Has(c Category) bool {
	return a[c]
}

func AllAvailable() Availability {
	out := make(Availability, len(Categories()))
	for _, c := range Categories() {
		out[c] = true
	}
	return out
}

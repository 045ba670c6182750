package footballdata

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/signal"
)

type teamRef struct {
	ID  int64  `json:"id"`
	TLA string `json:"tla"`
}

type scoreLine struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type matchPayload struct {
	ID       int64     `json:"id"`
	UTCDate  time.Time `json:"utcDate"`
	Status   string    `json:"status"`
	HomeTeam teamRef   `json:"homeTeam"`
	AwayTeam teamRef   `json:"awayTeam"`
	Score    struct {
		FullTime scoreLine `json:"fullTime"`
	} `json:"score"`
	Odds *oddsPayload `json:"odds"`
}

type oddsPayload struct {
	HomeWin *float64 `json:"homeWin"`
	Draw    *float64 `json:"draw"`
	AwayWin *float64 `json:"awayWin"`
}

type teamMatchesPayload struct {
	Matches []matchPayload `json:"matches"`
}

type xgPayload struct {
	Matches   int     `json:"matches"`
	XGFor     float64 `json:"xgFor"`
	XGAgainst float64 `json:"xgAgainst"`
	GoalsFor  int     `json:"goalsFor"`
}

type injuriesPayload struct {
	Injuries []struct {
		Player  string  `json:"player"`
		Starter bool    `json:"starter"`
		Impact  float64 `json:"impact"`
	} `json:"injuries"`
}

type eloPayload struct {
	Rating float64 `json:"rating"`
	Rank   int     `json:"rank"`
}

type statusPayload struct {
	Categories map[string]bool `json:"categories"`
}

// GetForm folds the team's latest finished matches into a form summary.
func (c *Client) GetForm(ctx context.Context, teamID, competitionID string, lookbackMatches int) (signal.Form, error) {
	teamID = strings.TrimSpace(teamID)
	if lookbackMatches <= 0 {
		lookbackMatches = 5
	}

	var payload teamMatchesPayload
	err := c.getJSON(ctx, "/v4/teams/"+teamID+"/matches", map[string]string{
		"status":       string(match.StatusFinished),
		"limit":        strconv.Itoa(lookbackMatches),
		"competitions": competitionID,
	}, &payload)
	if err != nil {
		return signal.Form{}, err
	}

	form, ok := formFromMatches(teamID, payload.Matches, lookbackMatches)
	if !ok {
		return signal.Form{}, crerr.Wrapf(signal.ErrNoData, "no finished matches for team=%s", teamID)
	}
	form.AsOf = c.clock.Now().UTC()
	return form, nil
}

func formFromMatches(teamID string, matches []matchPayload, limit int) (signal.Form, bool) {
	finished := make([]matchPayload, 0, len(matches))
	for _, m := range matches {
		if m.Score.FullTime.Home == nil || m.Score.FullTime.Away == nil {
			continue
		}
		if !teamMatches(m.HomeTeam, teamID) && !teamMatches(m.AwayTeam, teamID) {
			continue
		}
		finished = append(finished, m)
	}
	if len(finished) == 0 {
		return signal.Form{}, false
	}
	sort.SliceStable(finished, func(i, j int) bool {
		return finished[i].UTCDate.After(finished[j].UTCDate)
	})
	if len(finished) > limit {
		finished = finished[:limit]
	}

	var (
		points, goalsFor, goalsAgainst int
		homePlayed, homeWins           int
		awayPlayed, awayWins           int
		streak                         int
		streakOpen                     = true
	)
	for _, m := range finished {
		home := teamMatches(m.HomeTeam, teamID)
		scored, conceded := *m.Score.FullTime.Home, *m.Score.FullTime.Away
		if !home {
			scored, conceded = conceded, scored
		}
		goalsFor += scored
		goalsAgainst += conceded

		won := scored > conceded
		switch {
		case won:
			points += 3
		case scored == conceded:
			points++
		}
		if home {
			homePlayed++
			if won {
				homeWins++
			}
		} else {
			awayPlayed++
			if won {
				awayWins++
			}
		}

		// finished is newest first, so the streak stops at the first change.
		if streakOpen {
			switch {
			case won && streak >= 0:
				streak++
			case scored < conceded && streak <= 0:
				streak--
			default:
				streakOpen = false
			}
		}
	}

	n := float64(len(finished))
	return signal.Form{
		TeamID:               teamID,
		Matches:              len(finished),
		PointsPerMatch:       float64(points) / n,
		GoalsForPerMatch:     float64(goalsFor) / n,
		GoalsAgainstPerMatch: float64(goalsAgainst) / n,
		HomeWinRate:          ratio(homeWins, homePlayed),
		AwayWinRate:          ratio(awayWins, awayPlayed),
		Streak:               streak,
	}, true
}

func (c *Client) GetTeamXG(ctx context.Context, teamID, competitionID, season string) (signal.ExpectedGoals, error) {
	teamID = strings.TrimSpace(teamID)

	var payload xgPayload
	err := c.getJSON(ctx, "/v4/teams/"+teamID+"/xg", map[string]string{
		"competition": competitionID,
		"season":      season,
	}, &payload)
	if err != nil {
		return signal.ExpectedGoals{}, err
	}
	if payload.Matches <= 0 {
		return signal.ExpectedGoals{}, crerr.Wrapf(signal.ErrNoData, "no xg sample for team=%s", teamID)
	}

	n := float64(payload.Matches)
	return signal.ExpectedGoals{
		TeamID:            teamID,
		XGPerMatch:        payload.XGFor / n,
		XGAgainstPerMatch: payload.XGAgainst / n,
		Overperformance:   (float64(payload.GoalsFor) - payload.XGFor) / n,
		AsOf:              c.clock.Now().UTC(),
	}, nil
}

// GetOddsForMatch reads 1X2 prices and converts them to the favored outcome
// with its overround-free implied probability.
func (c *Client) GetOddsForMatch(ctx context.Context, m match.Match) (signal.Odds, error) {
	var payload matchPayload
	if err := c.getJSON(ctx, "/v4/matches/"+strings.TrimSpace(m.ID), nil, &payload); err != nil {
		return signal.Odds{}, err
	}

	favorite, confidence, ok := impliedFavorite(payload.Odds)
	if !ok {
		return signal.Odds{}, crerr.Wrapf(signal.ErrNoData, "no odds for match=%s", m.ID)
	}
	return signal.Odds{
		MatchID:    m.ID,
		Favorite:   favorite,
		Confidence: confidence,
		AsOf:       c.clock.Now().UTC(),
	}, nil
}

func impliedFavorite(odds *oddsPayload) (signal.Favorite, float64, bool) {
	if odds == nil || !validPrice(odds.HomeWin) || !validPrice(odds.Draw) || !validPrice(odds.AwayWin) {
		return "", 0, false
	}

	home, draw, away := 1 / *odds.HomeWin, 1 / *odds.Draw, 1 / *odds.AwayWin
	book := home + draw + away

	favorite, best := signal.FavoriteHome, home
	if draw > best {
		favorite, best = signal.FavoriteDraw, draw
	}
	if away > best {
		favorite, best = signal.FavoriteAway, away
	}
	return favorite, best / book, true
}

func validPrice(v *float64) bool {
	return v != nil && *v > 1
}

func (c *Client) GetTeamInjuries(ctx context.Context, teamID string) (signal.Injuries, error) {
	teamID = strings.TrimSpace(teamID)

	var payload injuriesPayload
	if err := c.getJSON(ctx, "/v4/teams/"+teamID+"/injuries", nil, &payload); err != nil {
		return signal.Injuries{}, err
	}

	out := signal.Injuries{TeamID: teamID, AsOf: c.clock.Now().UTC()}
	for _, injury := range payload.Injuries {
		if injury.Starter {
			out.MissingStarters++
		}
		out.ImpactScore += injury.Impact
	}
	if out.ImpactScore > 1 {
		out.ImpactScore = 1
	}
	if out.ImpactScore < 0 {
		out.ImpactScore = 0
	}
	return out, nil
}

func (c *Client) GetTeamElo(ctx context.Context, teamID string) (signal.Elo, error) {
	teamID = strings.TrimSpace(teamID)

	var payload eloPayload
	if err := c.getJSON(ctx, "/v4/teams/"+teamID+"/elo", nil, &payload); err != nil {
		return signal.Elo{}, err
	}
	if payload.Rating <= 0 {
		return signal.Elo{}, crerr.Wrapf(signal.ErrNoData, "no elo rating for team=%s", teamID)
	}
	return signal.Elo{
		TeamID: teamID,
		Rating: payload.Rating,
		Rank:   payload.Rank,
		AsOf:   c.clock.Now().UTC(),
	}, nil
}

// GetDataAvailability asks the upstream which categories it can serve.
// Categories it does not mention are reported unavailable.
func (c *Client) GetDataAvailability(ctx context.Context) (signal.Availability, error) {
	var payload statusPayload
	if err := c.getJSON(ctx, "/v4/status", nil, &payload); err != nil {
		return nil, err
	}

	out := make(signal.Availability, len(signal.Categories()))
	for _, category := range signal.Categories() {
		out[category] = payload.Categories[string(category)]
	}
	return out, nil
}

func teamMatches(ref teamRef, teamID string) bool {
	if ref.ID != 0 && strconv.FormatInt(ref.ID, 10) == teamID {
		return true
	}
	return ref.TLA != "" && strings.EqualFold(ref.TLA, teamID)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

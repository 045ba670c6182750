package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the development fixtures into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, now time.Time) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	exec := func(what, query string, arg map[string]any) error {
		sqlQuery, args, err := sqlx.Named(query, arg)
		if err != nil {
			return fmt.Errorf("bind seed %s query: %w", what, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
			return fmt.Errorf("seed %s: %w", what, err)
		}
		return nil
	}

	for _, l := range memory.SeedLeagues(now) {
		if err := exec("league "+l.ID, `
INSERT INTO leagues (public_id, owner_user_id, name, max_members, is_public, points_exact_match,
    points_correct_result, betting_deadline_minutes, allowed_competition_ids, bots_enabled, created_at)
VALUES (:public_id, :owner_user_id, :name, :max_members, :is_public, :points_exact_match,
    :points_correct_result, :betting_deadline_minutes, :allowed_competition_ids, :bots_enabled, :created_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":                l.ID,
			"owner_user_id":            l.OwnerUserID,
			"name":                     l.Name,
			"max_members":              l.MaxMembers,
			"is_public":                l.IsPublic,
			"points_exact_match":       l.PointsExactMatch,
			"points_correct_result":    l.PointsCorrectResult,
			"betting_deadline_minutes": l.BettingDeadlineMinutes,
			"allowed_competition_ids":  pq.StringArray(l.AllowedCompetitionIDs),
			"bots_enabled":             l.BotsEnabled,
			"created_at":               l.CreatedAt.UTC(),
		}); err != nil {
			return err
		}
	}

	for _, m := range memory.SeedMembers(now) {
		if err := exec("member "+m.LeagueID+"/"+m.UserID, `
INSERT INTO league_members (league_public_id, user_id, is_bot, joined_at)
VALUES (:league_public_id, :user_id, :is_bot, :joined_at)
ON CONFLICT (league_public_id, user_id) DO NOTHING`, map[string]any{
			"league_public_id": m.LeagueID,
			"user_id":          m.UserID,
			"is_bot":           m.IsBot,
			"joined_at":        m.JoinedAt.UTC(),
		}); err != nil {
			return err
		}
	}

	for _, b := range memory.SeedBots() {
		config := "{}"
		if len(b.Config) > 0 {
			config = string(b.Config)
		}
		if err := exec("bot "+b.ID, `
INSERT INTO bots (public_id, user_id, name, strategy, config, is_active)
VALUES (:public_id, :user_id, :name, :strategy, :config, :is_active)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id": b.ID,
			"user_id":   b.UserID,
			"name":      b.Name,
			"strategy":  b.Strategy,
			"config":    config,
			"is_active": b.Active,
		}); err != nil {
			return err
		}
	}

	for _, m := range memory.SeedMatches(now) {
		if err := exec("match "+m.ID, `
INSERT INTO matches (public_id, competition_id, season, home_team_id, away_team_id, kickoff_at, status, home_score, away_score)
VALUES (:public_id, :competition_id, :season, :home_team_id, :away_team_id, :kickoff_at, :status, :home_score, :away_score)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":      m.ID,
			"competition_id": m.CompetitionID,
			"season":         m.Season,
			"home_team_id":   m.HomeTeamID,
			"away_team_id":   m.AwayTeamID,
			"kickoff_at":     m.KickoffAt.UTC(),
			"status":         string(m.Status),
			"home_score":     intPtrToNullInt64(m.HomeScore),
			"away_score":     intPtrToNullInt64(m.AwayScore),
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}

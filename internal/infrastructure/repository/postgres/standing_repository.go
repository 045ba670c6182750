package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/standing"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

const upsertMemberStandingSuffix = `ON CONFLICT (league_public_id, user_id)
DO UPDATE SET
    total_points = EXCLUDED.total_points,
    bets_placed = EXCLUDED.bets_placed,
    exact_count = EXCLUDED.exact_count,
    correct_count = EXCLUDED.correct_count,
    current_streak = EXCLUDED.current_streak,
    best_streak = EXCLUDED.best_streak,
    updated_at = EXCLUDED.updated_at`

type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) ListByLeague(ctx context.Context, leagueID string) ([]standing.Standing, error) {
	query, args, err := qb.Select("*").From("member_standings").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list member standings query: %w", err)
	}

	var rows []memberStandingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list member standings league=%s: %w", leagueID, err)
	}

	out := make([]standing.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, standing.Standing{
			LeagueID:      row.LeaguePublicID,
			UserID:        row.UserID,
			TotalPoints:   row.TotalPoints,
			BetsPlaced:    row.BetsPlaced,
			ExactCount:    row.ExactCount,
			CorrectCount:  row.CorrectCount,
			CurrentStreak: row.CurrentStreak,
			BestStreak:    row.BestStreak,
			UpdatedAt:     row.UpdatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *StandingRepository) UpsertMany(ctx context.Context, rows []standing.Standing) error {
	return r.ApplyResults(ctx, rows, nil)
}

// ApplyResults upserts the rows and stamps applied_revision on the folded
// bet results inside one transaction.
func (r *StandingRepository) ApplyResults(ctx context.Context, rows []standing.Standing, applied map[string]int) error {
	if len(rows) == 0 && len(applied) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx apply member standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := upsertStandings(ctx, tx, rows); err != nil {
		return err
	}
	if err := markResultsApplied(ctx, tx, applied); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply member standings tx: %w", err)
	}
	return nil
}

func upsertStandings(ctx context.Context, exec sqlx.ExecerContext, rows []standing.Standing) error {
	models := make([]memberStandingTableModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, memberStandingTableModel{
			LeaguePublicID: row.LeagueID,
			UserID:         row.UserID,
			TotalPoints:    row.TotalPoints,
			BetsPlaced:     row.BetsPlaced,
			ExactCount:     row.ExactCount,
			CorrectCount:   row.CorrectCount,
			CurrentStreak:  row.CurrentStreak,
			BestStreak:     row.BestStreak,
			UpdatedAt:      row.UpdatedAt.UTC(),
		})
	}

	for start := 0; start < len(models); start += standingBatchSize {
		end := min(start+standingBatchSize, len(models))
		query, args, err := qb.InsertModels("member_standings", models[start:end], upsertMemberStandingSuffix)
		if err != nil {
			return fmt.Errorf("build upsert member standings query: %w", err)
		}
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert member standings batch=%d: %w", start/standingBatchSize, err)
		}
	}
	return nil
}

// standingBatchSize keeps each statement well under the 65535 parameter cap.
const standingBatchSize = 500

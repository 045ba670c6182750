package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/prediction-league/internal/domain/betresult"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type BetResultRepository struct {
	db *sqlx.DB
}

func NewBetResultRepository(db *sqlx.DB) *BetResultRepository {
	return &BetResultRepository{db: db}
}

func (r *BetResultRepository) GetByBetID(ctx context.Context, betID string) (betresult.Result, bool, error) {
	query, args, err := qb.Select("*").From("bet_results").
		Where(qb.Eq("bet_public_id", betID)).
		ToSQL()
	if err != nil {
		return betresult.Result{}, false, fmt.Errorf("build get bet result query: %w", err)
	}

	var row betResultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return betresult.Result{}, false, nil
		}
		return betresult.Result{}, false, fmt.Errorf("get bet result %s: %w", betID, err)
	}

	return betResultFromRow(row), true, nil
}

// Upsert never touches applied_revision of an existing row; only MarkApplied
// and StandingRepository.ApplyResults move it.
func (r *BetResultRepository) Upsert(ctx context.Context, result betresult.Result) error {
	model := betResultTableModel{
		BetPublicID:     result.BetID,
		LeaguePublicID:  result.LeagueID,
		UserID:          result.UserID,
		MatchPublicID:   result.MatchID,
		MatchKickoffAt:  result.MatchKickoffAt.UTC(),
		Points:          result.Points,
		IsExact:         result.IsExact,
		IsCorrect:       result.IsCorrect,
		CalculatedAt:    result.CalculatedAt.UTC(),
		Revision:        result.Revision,
		AppliedRevision: result.AppliedRevision,
	}
	query, args, err := qb.InsertModel("bet_results", model, `ON CONFLICT (bet_public_id)
DO UPDATE SET
    match_kickoff_at = EXCLUDED.match_kickoff_at,
    points = EXCLUDED.points,
    is_exact = EXCLUDED.is_exact,
    is_correct = EXCLUDED.is_correct,
    calculated_at = EXCLUDED.calculated_at,
    revision = EXCLUDED.revision`)
	if err != nil {
		return fmt.Errorf("build upsert bet result query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert bet result bet=%s: %w", result.BetID, err)
	}
	return nil
}

func (r *BetResultRepository) ListByLeague(ctx context.Context, leagueID string) ([]betresult.Result, error) {
	query, args, err := qb.Select("*").From("bet_results").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("match_kickoff_at", "match_public_id", "bet_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list bet results by league query: %w", err)
	}

	out, err := r.selectResults(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list bet results league=%s: %w", leagueID, err)
	}
	// Collation can differ from byte order; replay order is defined in Go.
	sort.SliceStable(out, func(i, j int) bool { return betresult.ReplayBefore(out[i], out[j]) })
	return out, nil
}

func (r *BetResultRepository) ListByBetIDs(ctx context.Context, betIDs []string) ([]betresult.Result, error) {
	if len(betIDs) == 0 {
		return []betresult.Result{}, nil
	}

	query, args, err := qb.Select("*").From("bet_results").
		Where(qb.In("bet_public_id", stringsToAny(betIDs))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list bet results by bet ids query: %w", err)
	}

	out, err := r.selectResults(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list bet results by bet ids: %w", err)
	}
	return out, nil
}

func (r *BetResultRepository) MarkApplied(ctx context.Context, applied map[string]int) error {
	return markResultsApplied(ctx, r.db, applied)
}

const markResultsAppliedQuery = `UPDATE bet_results AS r
SET applied_revision = v.revision
FROM unnest($1::text[], $2::bigint[]) AS v(bet_public_id, revision)
WHERE r.bet_public_id = v.bet_public_id`

func markResultsApplied(ctx context.Context, exec sqlx.ExecerContext, applied map[string]int) error {
	if len(applied) == 0 {
		return nil
	}

	betIDs := make([]string, 0, len(applied))
	revisions := make([]int64, 0, len(applied))
	for betID, revision := range applied {
		betIDs = append(betIDs, betID)
		revisions = append(revisions, int64(revision))
	}

	if _, err := exec.ExecContext(ctx, markResultsAppliedQuery, pq.Array(betIDs), pq.Array(revisions)); err != nil {
		return fmt.Errorf("mark bet results applied count=%d: %w", len(applied), err)
	}
	return nil
}

func (r *BetResultRepository) selectResults(ctx context.Context, query string, args []any) ([]betresult.Result, error) {
	var rows []betResultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]betresult.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, betResultFromRow(row))
	}
	return out, nil
}

func betResultFromRow(row betResultTableModel) betresult.Result {
	return betresult.Result{
		BetID:           row.BetPublicID,
		LeagueID:        row.LeaguePublicID,
		UserID:          row.UserID,
		MatchID:         row.MatchPublicID,
		MatchKickoffAt:  row.MatchKickoffAt.UTC(),
		Points:          row.Points,
		IsExact:         row.IsExact,
		IsCorrect:       row.IsCorrect,
		CalculatedAt:    row.CalculatedAt.UTC(),
		Revision:        row.Revision,
		AppliedRevision: row.AppliedRevision,
	}
}

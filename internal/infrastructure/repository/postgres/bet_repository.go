package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type BetRepository struct {
	db *sqlx.DB
}

func NewBetRepository(db *sqlx.DB) *BetRepository {
	return &BetRepository{db: db}
}

func (r *BetRepository) GetByID(ctx context.Context, leagueID, betID string) (bet.Bet, bool, error) {
	query, args, err := qb.Select("*").From("bets").
		Where(
			qb.Eq("public_id", betID),
			qb.Eq("league_public_id", leagueID),
		).
		ToSQL()
	if err != nil {
		return bet.Bet{}, false, fmt.Errorf("build get bet query: %w", err)
	}

	var row betTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return bet.Bet{}, false, nil
		}
		return bet.Bet{}, false, fmt.Errorf("get bet %s: %w", betID, err)
	}

	return betFromRow(row), true, nil
}

func (r *BetRepository) GetByKey(ctx context.Context, leagueID, userID, matchID string) (bet.Bet, bool, error) {
	query, args, err := qb.Select("*").From("bets").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("user_id", userID),
			qb.Eq("match_public_id", matchID),
		).
		ToSQL()
	if err != nil {
		return bet.Bet{}, false, fmt.Errorf("build get bet by key query: %w", err)
	}

	var row betTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
			return r.getByKeySingleParam(ctx, leagueID, userID, matchID)
		}
		if isNotFound(err) {
			return bet.Bet{}, false, nil
		}
		return bet.Bet{}, false, fmt.Errorf("get bet by key: %w", err)
	}

	return betFromRow(row), true, nil
}

// getByKeySingleParam packs the key into one array parameter; poolers that
// drop unnamed statements accept it where the three-parameter form fails.
func (r *BetRepository) getByKeySingleParam(ctx context.Context, leagueID, userID, matchID string) (bet.Bet, bool, error) {
	query, _, err := qb.Select("*").From("bets").
		Where(
			qb.Expr("league_public_id = ($1::text[])[1]"),
			qb.Expr("user_id = ($1::text[])[2]"),
			qb.Expr("match_public_id = ($1::text[])[3]"),
		).
		ToSQL()
	if err != nil {
		return bet.Bet{}, false, fmt.Errorf("build get bet by key fallback query: %w", err)
	}

	var row betTableModel
	if err := r.db.GetContext(ctx, &row, query, pq.Array([]string{leagueID, userID, matchID})); err != nil {
		if isNotFound(err) {
			return bet.Bet{}, false, nil
		}
		return bet.Bet{}, false, fmt.Errorf("get bet by key fallback: %w", err)
	}

	return betFromRow(row), true, nil
}

func (r *BetRepository) Upsert(ctx context.Context, b bet.Bet) (bet.Bet, error) {
	model := betInsertModel{
		PublicID:       b.ID,
		LeaguePublicID: b.LeagueID,
		UserID:         b.UserID,
		MatchPublicID:  b.MatchID,
		HomeScore:      b.HomeScore,
		AwayScore:      b.AwayScore,
		PlacedAt:       b.PlacedAt.UTC(),
		UpdatedAt:      timePtrToNullTime(b.UpdatedAt),
	}
	query, args, err := qb.InsertModel("bets", model, `ON CONFLICT (league_public_id, user_id, match_public_id)
DO UPDATE SET
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    updated_at = EXCLUDED.updated_at
RETURNING *`)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("build upsert bet query: %w", err)
	}

	var row betTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return bet.Bet{}, fmt.Errorf("upsert bet league=%s user=%s match=%s: %w", b.LeagueID, b.UserID, b.MatchID, err)
	}

	return betFromRow(row), nil
}

func (r *BetRepository) Delete(ctx context.Context, leagueID, betID string) error {
	query, args, err := qb.DeleteFrom("bets").
		Where(
			qb.Eq("public_id", betID),
			qb.Eq("league_public_id", leagueID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete bet query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete bet %s: %w", betID, err)
	}
	return nil
}

func (r *BetRepository) ListByUser(ctx context.Context, leagueID, userID string) ([]bet.Bet, error) {
	return r.list(ctx, "list bets by user",
		qb.Eq("league_public_id", leagueID),
		qb.Eq("user_id", userID),
	)
}

func (r *BetRepository) ListByLeagueAndMatch(ctx context.Context, leagueID, matchID string) ([]bet.Bet, error) {
	return r.list(ctx, "list bets by league and match",
		qb.Eq("league_public_id", leagueID),
		qb.Eq("match_public_id", matchID),
	)
}

func (r *BetRepository) ListByMatch(ctx context.Context, matchID string) ([]bet.Bet, error) {
	return r.list(ctx, "list bets by match", qb.Eq("match_public_id", matchID))
}

func (r *BetRepository) list(ctx context.Context, op string, conditions ...qb.Condition) ([]bet.Bet, error) {
	query, args, err := qb.Select("*").From("bets").
		Where(conditions...).
		OrderBy("placed_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []betTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]bet.Bet, 0, len(rows))
	for _, row := range rows {
		out = append(out, betFromRow(row))
	}
	return out, nil
}

func betFromRow(row betTableModel) bet.Bet {
	return bet.Bet{
		ID:        row.PublicID,
		LeagueID:  row.LeaguePublicID,
		UserID:    row.UserID,
		MatchID:   row.MatchPublicID,
		HomeScore: row.HomeScore,
		AwayScore: row.AwayScore,
		PlacedAt:  row.PlacedAt.UTC(),
		UpdatedAt: nullTimeToTimePtr(row.UpdatedAt),
	}
}

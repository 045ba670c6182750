package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/bot"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type BotRepository struct {
	db *sqlx.DB
}

func NewBotRepository(db *sqlx.DB) *BotRepository {
	return &BotRepository{db: db}
}

func (r *BotRepository) ListActiveByUserIDs(ctx context.Context, userIDs []string) ([]bot.Bot, error) {
	if len(userIDs) == 0 {
		return []bot.Bot{}, nil
	}

	query, args, err := qb.Select("*").From("bots").
		Where(
			qb.In("user_id", stringsToAny(userIDs)),
			qb.Eq("is_active", true),
		).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active bots query: %w", err)
	}

	var rows []botTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list active bots: %w", err)
	}

	out := make([]bot.Bot, 0, len(rows))
	for _, row := range rows {
		var config []byte
		if row.Config.Valid {
			config = []byte(row.Config.String)
		}
		out = append(out, bot.Bot{
			ID:             row.PublicID,
			UserID:         row.UserID,
			Name:           row.Name,
			Strategy:       row.Strategy,
			Config:         config,
			Active:         row.IsActive,
			LastActivityAt: nullTimeToTimePtr(row.LastActivityAt),
		})
	}
	return out, nil
}

func (r *BotRepository) TouchActivity(ctx context.Context, botID string, at time.Time) error {
	query, args, err := qb.Update("bots").
		Set("last_activity_at", at.UTC()).
		Where(qb.Eq("public_id", botID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build touch bot activity query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("touch bot activity bot=%s: %w", botID, err)
	}
	return nil
}

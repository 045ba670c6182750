package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/bot"
)

type BotRepository struct {
	mu    sync.RWMutex
	items map[string]bot.Bot
}

func NewBotRepository(bots []bot.Bot) *BotRepository {
	items := make(map[string]bot.Bot, len(bots))
	for _, b := range bots {
		items[b.ID] = cloneBot(b)
	}

	return &BotRepository{items: items}
}

func (r *BotRepository) ListActiveByUserIDs(_ context.Context, userIDs []string) ([]bot.Bot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bot.Bot, 0, len(userIDs))
	for _, b := range r.items {
		if b.Active && slices.Contains(userIDs, b.UserID) {
			out = append(out, cloneBot(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *BotRepository) TouchActivity(_ context.Context, botID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.items[botID]
	if !ok {
		return nil
	}
	b.LastActivityAt = &at
	r.items[botID] = b
	return nil
}

func cloneBot(b bot.Bot) bot.Bot {
	copied := b
	copied.Config = slices.Clone(b.Config)
	copied.LastActivityAt = cloneTime(b.LastActivityAt)
	return copied
}

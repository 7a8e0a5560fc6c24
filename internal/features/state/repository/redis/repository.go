package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"instantwin-bot/internal/features/state/models"
	"instantwin-bot/internal/features/state/repository"
)

type redisRepository struct {
	client *redis.Client
	key    string
}

// NewStateRepository stores the whole document under a single key. The
// document is small (a few KB at most), so wholesale SET on every mutation
// is cheaper than any delta scheme and keeps crash recovery trivial.
func NewStateRepository(client *redis.Client, key string) repository.StateRepository {
	return &redisRepository{client: client, key: key}
}

func (r *redisRepository) Load(ctx context.Context) (*models.BotState, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	var state models.BotState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &state, nil
}

func (r *redisRepository) Save(ctx context.Context, state *models.BotState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	return nil
}

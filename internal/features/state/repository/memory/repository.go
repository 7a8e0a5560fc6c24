package memory

import (
	"context"
	"sync"

	"instantwin-bot/internal/features/state/models"
	"instantwin-bot/internal/features/state/repository"
)

// Repository keeps the state document in memory. Used in tests and for
// running the bot without a Redis instance.
type Repository struct {
	mu    sync.Mutex
	state *models.BotState

	// SaveErr, when set, is returned by Save. Lets tests simulate a
	// persistence failure.
	SaveErr error

	// Saves counts successful Save calls.
	Saves int
}

func NewStateRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Load(ctx context.Context) (*models.BotState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		return nil, repository.ErrStateNotFound
	}
	clone := r.state.Clone()
	return &clone, nil
}

func (r *Repository) Save(ctx context.Context, state *models.BotState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.SaveErr != nil {
		return r.SaveErr
	}
	clone := state.Clone()
	r.state = &clone
	r.Saves++
	return nil
}

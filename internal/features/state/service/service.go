package service

import (
	"context"
	"errors"
	"sync"

	apperrors "instantwin-bot/internal/common/errors"
	"instantwin-bot/internal/common/logger"
	"instantwin-bot/internal/features/state/models"
	"instantwin-bot/internal/features/state/repository"
)

// Store owns the in-memory copy of the persisted state document and
// serializes every mutation against it. A mutation is applied to a working
// copy, written durably, and only then swapped in; a failed write leaves the
// in-memory state exactly as it was, so callers never confirm an operation
// the storage did not record.
type Store struct {
	repo repository.StateRepository

	mu    sync.Mutex
	state models.BotState
}

func NewStore(repo repository.StateRepository) *Store {
	return &Store{repo: repo}
}

// Load reads the document at startup. A missing document bootstraps an empty
// one, matching first-run behavior.
func (s *Store) Load(ctx context.Context) error {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrStateNotFound) {
			s.mu.Lock()
			s.state = models.BotState{}.Normalized()
			s.mu.Unlock()
			logger.Info().Msg("No state document found, starting empty")
			return nil
		}
		return apperrors.NewPersistenceError("load state", err)
	}

	s.mu.Lock()
	s.state = loaded.Normalized()
	s.mu.Unlock()

	logger.Info().
		Int("prizes", len(loaded.Prizes)).
		Int("allowed_roles", len(loaded.AllowedRoles)).
		Msg("State document loaded")
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() models.BotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Update applies mutate to a working copy, persists the result wholesale and
// swaps it in. The mutex is held across the durable write: that is the
// single mutual-exclusion domain serializing all inventory and settings
// mutations in arrival order.
func (s *Store) Update(ctx context.Context, mutate func(state *models.BotState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.Clone()
	if err := mutate(&working); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, &working); err != nil {
		return apperrors.NewPersistenceError("save state", err)
	}

	s.state = working
	return nil
}

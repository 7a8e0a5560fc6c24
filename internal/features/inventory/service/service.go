package service

import (
	"context"

	apperrors "instantwin-bot/internal/common/errors"
	"instantwin-bot/internal/common/logger"
	"instantwin-bot/internal/features/state/models"
	statestore "instantwin-bot/internal/features/state/service"
)

const (
	// Quantity bounds for a single add operation.
	MinAddQuantity = 1
	MaxAddQuantity = 100
)

// InventoryService mutates the shared prize pool. The pool lives inside the
// persisted state document, so every operation here is serialized and made
// durable by the state store before it is confirmed.
//
// Draw policy: strict FIFO. The oldest prize in the pool is always drawn
// first, which keeps distribution deterministic and auditable.
type InventoryService struct {
	store *statestore.Store
}

func NewInventoryService(store *statestore.Store) *InventoryService {
	return &InventoryService{store: store}
}

// Add appends count copies of label to the end of the pool and returns the
// new pool size.
func (s *InventoryService) Add(ctx context.Context, label string, count int) (int, error) {
	if count < MinAddQuantity || count > MaxAddQuantity {
		return 0, apperrors.NewInvalidArgumentError("quantity", "must be between 1 and 100")
	}

	var total int
	err := s.store.Update(ctx, func(state *models.BotState) error {
		for i := 0; i < count; i++ {
			state.Prizes = append(state.Prizes, label)
		}
		total = len(state.Prizes)
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info().Str("label", label).Int("count", count).Int("total", total).Msg("Prizes added")
	return total, nil
}

// Remove deletes the prize at the given one-based position and returns it.
func (s *InventoryService) Remove(ctx context.Context, index int) (string, error) {
	var removed string
	err := s.store.Update(ctx, func(state *models.BotState) error {
		if index < 1 || index > len(state.Prizes) {
			return apperrors.NewIndexOutOfRangeError(index, len(state.Prizes))
		}
		removed = state.Prizes[index-1]
		state.Prizes = append(state.Prizes[:index-1], state.Prizes[index:]...)
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.Info().Str("label", removed).Int("index", index).Msg("Prize removed")
	return removed, nil
}

// Clear empties the pool unconditionally.
func (s *InventoryService) Clear(ctx context.Context) error {
	err := s.store.Update(ctx, func(state *models.BotState) error {
		state.Prizes = []string{}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().Msg("Prize pool cleared")
	return nil
}

// Draw removes and returns the oldest prize in the pool together with the
// number of prizes left after the draw.
func (s *InventoryService) Draw(ctx context.Context) (string, int, error) {
	var (
		drawn     string
		remaining int
	)
	err := s.store.Update(ctx, func(state *models.BotState) error {
		if len(state.Prizes) == 0 {
			return apperrors.NewEmptyInventoryError()
		}
		drawn = state.Prizes[0]
		state.Prizes = state.Prizes[1:]
		remaining = len(state.Prizes)
		return nil
	})
	if err != nil {
		return "", 0, err
	}

	return drawn, remaining, nil
}

// List returns the pool in insertion order.
func (s *InventoryService) List(ctx context.Context) []string {
	return s.store.Snapshot().Prizes
}

// Count returns the current pool size.
func (s *InventoryService) Count(ctx context.Context) int {
	return len(s.store.Snapshot().Prizes)
}

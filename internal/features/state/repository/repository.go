package repository

import (
	"context"
	"errors"

	"instantwin-bot/internal/features/state/models"
)

// ErrStateNotFound is returned by Load when no document has been saved yet.
var ErrStateNotFound = errors.New("state document not found")

// StateRepository persists the bot state document as a single opaque value.
type StateRepository interface {
	Load(ctx context.Context) (*models.BotState, error)
	Save(ctx context.Context, state *models.BotState) error
}

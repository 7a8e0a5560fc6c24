package service

import (
	"context"

	"instantwin-bot/internal/common/logger"
	"instantwin-bot/internal/features/state/models"
	statestore "instantwin-bot/internal/features/state/service"
	"instantwin-bot/internal/platform/chat"
)

// AuditService mirrors notable bot actions to the configured log channel.
// Channel delivery is best effort: a failed send is logged and dropped, it
// never fails the operation being audited.
type AuditService struct {
	store *statestore.Store
	chat  chat.Client
}

func NewAuditService(store *statestore.Store, chatClient chat.Client) *AuditService {
	return &AuditService{store: store, chat: chatClient}
}

// Log writes an audit line to the structured log and, when a log channel is
// configured, to that channel.
func (s *AuditService) Log(ctx context.Context, message string) {
	logger.Info().Str("audit", message).Msg("Audit event")

	channelID := s.store.Snapshot().LogChannelID
	if channelID == "" {
		return
	}

	if err := s.chat.SendMessage(ctx, channelID, message); err != nil {
		logger.Warn().Err(err).Str("channel_id", channelID).Msg("Failed to deliver audit message")
	}
}

// SetLogChannel persists the audit channel reference.
func (s *AuditService) SetLogChannel(ctx context.Context, channelID string) error {
	return s.store.Update(ctx, func(state *models.BotState) error {
		state.LogChannelID = channelID
		return nil
	})
}

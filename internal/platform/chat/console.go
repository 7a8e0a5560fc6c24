package chat

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ConsoleClient is a Client that writes every outbound call to the log
// instead of a real platform. Used for local runs and as the default
// transport until a platform binding is wired in.
type ConsoleClient struct {
	log zerolog.Logger

	mu       sync.Mutex
	messages map[string]Announcement
}

func NewConsoleClient(log zerolog.Logger) *ConsoleClient {
	return &ConsoleClient{
		log:      log.With().Str("component", "chat-console").Logger(),
		messages: make(map[string]Announcement),
	}
}

func (c *ConsoleClient) PostAnnouncement(ctx context.Context, channelID string, a Announcement) (string, error) {
	// Real platforms assign message ids; the console transport mints them.
	messageID := uuid.New().String()

	c.mu.Lock()
	c.messages[messageID] = a
	c.mu.Unlock()

	c.log.Info().
		Str("channel_id", channelID).
		Str("message_id", messageID).
		Str("title", a.Title).
		Str("entry_emoji", a.EntryEmoji).
		Int("prizes_remaining", a.PrizesRemaining).
		Msg("Announcement posted")

	return messageID, nil
}

func (c *ConsoleClient) EditAnnouncement(ctx context.Context, ref MessageRef, a Announcement) error {
	c.mu.Lock()
	c.messages[ref.MessageID] = a
	c.mu.Unlock()

	c.log.Info().
		Str("channel_id", ref.ChannelID).
		Str("message_id", ref.MessageID).
		Bool("closed", a.Closed).
		Int("prizes_remaining", a.PrizesRemaining).
		Msg("Announcement edited")

	return nil
}

func (c *ConsoleClient) DirectMessage(ctx context.Context, principalID, text string) error {
	c.log.Info().
		Str("principal_id", principalID).
		Str("text", text).
		Msg("Direct message sent")
	return nil
}

func (c *ConsoleClient) SendMessage(ctx context.Context, channelID, text string) error {
	c.log.Info().
		Str("channel_id", channelID).
		Str("text", text).
		Msg("Channel message sent")
	return nil
}

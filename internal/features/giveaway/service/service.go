package service

import (
	"context"
	"fmt"
	"time"

	"instantwin-bot/internal/common/clock"
	apperrors "instantwin-bot/internal/common/errors"
	"instantwin-bot/internal/common/logger"
	auditservice "instantwin-bot/internal/features/audit/service"
	"instantwin-bot/internal/features/giveaway/models"
	inventoryservice "instantwin-bot/internal/features/inventory/service"
	statestore "instantwin-bot/internal/features/state/service"
	"instantwin-bot/internal/platform/chat"
)

// Direct-message texts sent to participants.
const (
	msgAlreadyClaimed = "⚠️ You already claimed a prize from this giveaway!"
	msgExhausted      = "🎰 All prizes have been claimed!\nStay tuned for more opportunities!"
	msgEnded          = "🎰 Giveaway has ended!\nStay tuned for more opportunities!"
	msgWonFormat      = "🎉 CONGRATULATIONS!\n\nYou just won: **%s**\n\nOpen a ticket to claim your prize!"
)

// Closed-announcement texts, one per end reason.
var closedReasonText = map[models.EndReason]string{
	models.EndReasonManual:    "🎉 Giveaway was ended manually!",
	models.EndReasonExhausted: "🎰 All prizes have been claimed!\nGiveaway closed!",
	models.EndReasonTimeout:   "🎉 Giveaway has ended!",
}

// GiveawayService is the lifecycle engine: it starts sessions, admits entry
// attempts, draws prizes and drives every session to its single terminal
// transition, whichever of timer, exhaustion or manual end comes first.
type GiveawayService struct {
	registry  *SessionRegistry
	inventory *inventoryservice.InventoryService
	store     *statestore.Store
	chat      chat.Client
	audit     *auditservice.AuditService
	clock     clock.Clock

	entryEmoji         string
	minDurationMinutes int
}

func NewGiveawayService(
	registry *SessionRegistry,
	inventory *inventoryservice.InventoryService,
	store *statestore.Store,
	chatClient chat.Client,
	audit *auditservice.AuditService,
	clk clock.Clock,
	entryEmoji string,
	minDurationMinutes int,
) *GiveawayService {
	return &GiveawayService{
		registry:           registry,
		inventory:          inventory,
		store:              store,
		chat:               chatClient,
		audit:              audit,
		clock:              clk,
		entryEmoji:         entryEmoji,
		minDurationMinutes: minDurationMinutes,
	}
}

// Start opens a new giveaway: posts the announcement, registers the session
// under the platform-assigned message id and arms the countdown.
func (s *GiveawayService) Start(ctx context.Context, channelID, title string, durationMinutes int) (*models.Session, error) {
	if durationMinutes < s.minDurationMinutes {
		return nil, apperrors.NewInvalidArgumentError("duration",
			fmt.Sprintf("must be at least %d minute(s)", s.minDurationMinutes))
	}

	initialCount := s.inventory.Count(ctx)
	if initialCount == 0 {
		return nil, apperrors.NewEmptyInventoryError().
			WithDetail("hint", "add prizes with /setprize first")
	}

	now := s.clock.Now()
	endsAt := now.Add(time.Duration(durationMinutes) * time.Minute)

	messageID, err := s.chat.PostAnnouncement(ctx, channelID, chat.Announcement{
		Title:           title,
		Color:           s.store.Snapshot().EmbedColor,
		EndsAtUnix:      endsAt.Unix(),
		PrizesRemaining: initialCount,
		EntryEmoji:      s.entryEmoji,
	})
	if err != nil {
		return nil, apperrors.NewDeliveryError("post announcement", err)
	}

	sess := &runningSession{
		info: models.Session{
			ID:                messageID,
			Title:             title,
			ChannelID:         channelID,
			StartedAt:         now,
			EndsAt:            endsAt,
			Status:            models.SessionStatusRunning,
			InitialPrizeCount: initialCount,
		},
		claimed: make(map[string]struct{}),
	}

	if err := s.registry.create(sess); err != nil {
		return nil, apperrors.NewConflictError("session", "duplicate announcement id").
			WithDetail("session_id", messageID)
	}

	// Arm the countdown under the session lock. If an entry attempt already
	// exhausted the pool and ended the session, leave the timer unarmed.
	sess.mu.Lock()
	if sess.info.Status == models.SessionStatusRunning {
		sess.timer = s.clock.After(endsAt.Sub(now), func() {
			s.expire(messageID)
		})
	}
	sess.mu.Unlock()

	logger.Info().
		Str("session_id", messageID).
		Str("title", title).
		Int("duration_minutes", durationMinutes).
		Int("initial_prizes", initialCount).
		Msg("Giveaway started")
	s.audit.Log(ctx, fmt.Sprintf("📢 Giveaway Started: %s | Duration: %d mins | Initial Prizes: %d",
		title, durationMinutes, initialCount))

	info := sess.info
	return &info, nil
}

// HandleEntry processes one entry attempt against a session. All claim
// checks and the draw for a given session run under that session's lock, so
// concurrent attempts can neither double-claim nor draw the same prize slot.
func (s *GiveawayService) HandleEntry(ctx context.Context, sessionID, principalID string) error {
	sess, err := s.registry.get(sessionID)
	if err != nil {
		// Reaction on a message whose giveaway is gone: tell the user, done.
		s.directMessage(ctx, principalID, msgEnded)
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.info.Status != models.SessionStatusRunning {
		s.directMessage(ctx, principalID, msgEnded)
		return nil
	}

	if _, already := sess.claimed[principalID]; already {
		s.directMessage(ctx, principalID, msgAlreadyClaimed)
		return nil
	}

	prize, remaining, err := s.inventory.Draw(ctx)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeEmptyInventory {
			// Another session drained the pool since this one started.
			s.directMessage(ctx, principalID, msgExhausted)
			s.endLocked(ctx, sess, models.EndReasonExhausted)
			return nil
		}
		// Persistence failure: nothing was drawn, nothing is confirmed.
		return err
	}

	sess.claimed[principalID] = struct{}{}

	// The prize is durably consumed at this point. A failed notification is
	// logged but never rolls the draw back.
	if err := s.chat.DirectMessage(ctx, principalID, fmt.Sprintf(msgWonFormat, prize)); err != nil {
		logger.Warn().Err(err).Str("principal_id", principalID).Msg("Failed to deliver win notification")
		s.audit.Log(ctx, fmt.Sprintf("❌ Failed to send dm to %s", principalID))
	}

	s.audit.Log(ctx, fmt.Sprintf("🎉 Prize Claimed: %s won %s | Remaining: %d", principalID, prize, remaining))
	s.editAnnouncement(ctx, sess, remaining)

	if remaining == 0 {
		s.endLocked(ctx, sess, models.EndReasonExhausted)
	}

	return nil
}

// End terminates a session manually. Ending an unknown or already-ended
// session returns ErrSessionNotFound and changes nothing.
func (s *GiveawayService) End(ctx context.Context, sessionID string) error {
	sess, err := s.registry.get(sessionID)
	if err != nil {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.info.Status != models.SessionStatusRunning {
		return ErrSessionNotFound
	}

	s.endLocked(ctx, sess, models.EndReasonManual)
	return nil
}

// Get returns a snapshot of a running session.
func (s *GiveawayService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	sess, err := s.registry.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	info := sess.info
	return &info, nil
}

// expire is the countdown callback. Racing a manual or exhaustion end is
// fine: whichever transition runs first wins, the loser sees Ended and
// backs off.
func (s *GiveawayService) expire(sessionID string) {
	ctx := context.Background()

	sess, err := s.registry.get(sessionID)
	if err != nil {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.info.Status != models.SessionStatusRunning {
		return
	}

	s.endLocked(ctx, sess, models.EndReasonTimeout)
}

// endLocked performs the single terminal transition. Callers must hold the
// session lock and have verified the session is still Running.
func (s *GiveawayService) endLocked(ctx context.Context, sess *runningSession, reason models.EndReason) {
	sess.info.Status = models.SessionStatusEnded
	sess.info.EndReason = reason

	if sess.timer != nil {
		sess.timer.Stop()
	}
	s.registry.remove(sess.info.ID)

	closed := chat.Announcement{
		Title:            sess.info.Title,
		Color:            "#808080",
		Closed:           true,
		ClosedReasonText: closedReasonText[reason],
	}
	if err := s.chat.EditAnnouncement(ctx, chat.MessageRef{
		ChannelID: sess.info.ChannelID,
		MessageID: sess.info.ID,
	}, closed); err != nil {
		logger.Warn().Err(err).Str("session_id", sess.info.ID).Msg("Failed to edit closed announcement")
	}

	logger.Info().
		Str("session_id", sess.info.ID).
		Str("reason", string(reason)).
		Int("claims", len(sess.claimed)).
		Msg("Giveaway ended")
	s.audit.Log(ctx, fmt.Sprintf("🔚 Giveaway %q ended (%s)", sess.info.Title, reason))
}

func (s *GiveawayService) editAnnouncement(ctx context.Context, sess *runningSession, remaining int) {
	a := chat.Announcement{
		Title:           sess.info.Title,
		Color:           s.store.Snapshot().EmbedColor,
		EndsAtUnix:      sess.info.EndsAt.Unix(),
		PrizesRemaining: remaining,
		EntryEmoji:      s.entryEmoji,
	}
	if err := s.chat.EditAnnouncement(ctx, chat.MessageRef{
		ChannelID: sess.info.ChannelID,
		MessageID: sess.info.ID,
	}, a); err != nil {
		logger.Warn().Err(err).Str("session_id", sess.info.ID).Msg("Failed to update announcement")
	}
}

func (s *GiveawayService) directMessage(ctx context.Context, principalID, text string) {
	if err := s.chat.DirectMessage(ctx, principalID, text); err != nil {
		logger.Warn().Err(err).Str("principal_id", principalID).Msg("Failed to deliver direct message")
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instantwin-bot/internal/common/clock"
	apperrors "instantwin-bot/internal/common/errors"
	auditservice "instantwin-bot/internal/features/audit/service"
	"instantwin-bot/internal/features/giveaway/models"
	inventoryservice "instantwin-bot/internal/features/inventory/service"
	"instantwin-bot/internal/features/state/repository/memory"
	statestore "instantwin-bot/internal/features/state/service"
	"instantwin-bot/internal/platform/chat/chattest"
)

// fakeTimer and fakeClock drive the countdown deterministically.

type fakeTimer struct {
	mu      sync.Mutex
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration, fn func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires every due, unstopped timer.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.at.After(c.now) {
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.mu.Lock()
		skip := t.stopped || t.fired
		if !skip {
			t.fired = true
		}
		t.mu.Unlock()
		if !skip {
			t.fn()
		}
	}
}

type engineFixture struct {
	svc      *GiveawayService
	registry *SessionRegistry
	repo     *memory.Repository
	chat     *chattest.Recorder
	clock    *fakeClock
}

func newEngineFixture(t *testing.T, prizes ...string) *engineFixture {
	t.Helper()
	ctx := context.Background()

	repo := memory.NewStateRepository()
	store := statestore.NewStore(repo)
	require.NoError(t, store.Load(ctx))

	inventory := inventoryservice.NewInventoryService(store)
	for _, p := range prizes {
		_, err := inventory.Add(ctx, p, 1)
		require.NoError(t, err)
	}

	recorder := chattest.NewRecorder()
	clk := newFakeClock()
	registry := NewSessionRegistry()
	svc := NewGiveawayService(
		registry, inventory, store, recorder, auditservice.NewAuditService(store, recorder), clk, "🎉", 1)

	return &engineFixture{svc: svc, registry: registry, repo: repo, chat: recorder, clock: clk}
}

func TestStartRegistersSessionUnderMessageID(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "Hoodie", "Hoodie")

	sess, err := f.svc.Start(ctx, "chan-1", "Friday Drop", 10)
	require.NoError(t, err)

	assert.Equal(t, "msg-1", sess.ID)
	assert.Equal(t, models.SessionStatusRunning, sess.Status)
	assert.Equal(t, 2, sess.InitialPrizeCount)
	assert.Equal(t, f.clock.Now().Add(10*time.Minute), sess.EndsAt)
	assert.Equal(t, 1, f.registry.Len())

	a, ok := f.chat.Announcement("msg-1")
	require.True(t, ok)
	assert.Equal(t, "Friday Drop", a.Title)
	assert.Equal(t, 2, a.PrizesRemaining)
	assert.Equal(t, "🎉", a.EntryEmoji)
	assert.False(t, a.Closed)
}

func TestStartRejectsShortDuration(t *testing.T) {
	f := newEngineFixture(t, "Hoodie")

	_, err := f.svc.Start(context.Background(), "chan-1", "Drop", 0)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidArgument, appErr.Code)
	assert.Zero(t, f.registry.Len())
}

func TestStartRejectsEmptyPool(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.svc.Start(context.Background(), "chan-1", "Drop", 10)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeEmptyInventory, appErr.Code)
}

func TestStartAnnouncementFailure(t *testing.T) {
	f := newEngineFixture(t, "Hoodie")
	f.chat.PostErr = errors.New("rate limited")

	_, err := f.svc.Start(context.Background(), "chan-1", "Drop", 10)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeDeliveryFailure, appErr.Code)
	assert.Zero(t, f.registry.Len())
}

func TestEntriesClaimOldestPrizeFirst(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A", "B")

	sess, err := f.svc.Start(ctx, "chan-1", "Drop", 10)
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleEntry(ctx, sess.ID, "p1"))
	dms := f.chat.DMsTo("p1")
	require.Len(t, dms, 1)
	assert.Equal(t, fmt.Sprintf(msgWonFormat, "A"), dms[0])

	// second attempt by the same principal draws nothing
	require.NoError(t, f.svc.HandleEntry(ctx, sess.ID, "p1"))
	dms = f.chat.DMsTo("p1")
	require.Len(t, dms, 2)
	assert.Equal(t, msgAlreadyClaimed, dms[1])
	assert.Equal(t, []string{"B"}, f.repoPrizes(t))

	require.NoError(t, f.svc.HandleEntry(ctx, sess.ID, "p2"))
	dms = f.chat.DMsTo("p2")
	require.Len(t, dms, 1)
	assert.Equal(t, fmt.Sprintf(msgWonFormat, "B"), dms[0])

	// last prize ends the session
	assert.Zero(t, f.registry.Len())
	a, ok := f.chat.Announcement(sess.ID)
	require.True(t, ok)
	assert.True(t, a.Closed)
	assert.Equal(t, closedReasonText[models.EndReasonExhausted], a.ClosedReasonText)
	assert.Empty(t, f.repoPrizes(t))
}

func (f *engineFixture) repoPrizes(t *testing.T) []string {
	t.Helper()
	state, err := f.repo.Load(context.Background())
	require.NoError(t, err)
	return state.Prizes
}

func TestEntryOnUnknownSession(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A")

	require.NoError(t, f.svc.HandleEntry(ctx, "msg-404", "p1"))
	dms := f.chat.DMsTo("p1")
	require.Len(t, dms, 1)
	assert.Equal(t, msgEnded, dms[0])
	assert.Equal(t, []string{"A"}, f.repoPrizes(t))
}

func TestManualEndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A")

	sess, err := f.svc.Start(ctx, "chan-1", "Drop", 10)
	require.NoError(t, err)

	require.NoError(t, f.svc.End(ctx, sess.ID))
	assert.Zero(t, f.registry.Len())

	a, ok := f.chat.Announcement(sess.ID)
	require.True(t, ok)
	assert.True(t, a.Closed)
	assert.Equal(t, closedReasonText[models.EndReasonManual], a.ClosedReasonText)

	assert.ErrorIs(t, f.svc.End(ctx, sess.ID), ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.End(ctx, "msg-404"), ErrSessionNotFound)

	// entries after the end are turned away without a draw
	require.NoError(t, f.svc.HandleEntry(ctx, sess.ID, "p1"))
	assert.Equal(t, []string{msgEnded}, f.chat.DMsTo("p1"))
	assert.Equal(t, []string{"A"}, f.repoPrizes(t))
}

func TestTimerExpiryEndsSession(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A")

	sess, err := f.svc.Start(ctx, "chan-1", "Drop", 5)
	require.NoError(t, err)

	f.clock.Advance(4 * time.Minute)
	assert.Equal(t, 1, f.registry.Len())

	f.clock.Advance(time.Minute)
	assert.Zero(t, f.registry.Len())

	a, ok := f.chat.Announcement(sess.ID)
	require.True(t, ok)
	assert.True(t, a.Closed)
	assert.Equal(t, closedReasonText[models.EndReasonTimeout], a.ClosedReasonText)

	// undrawn prizes stay in the pool
	assert.Equal(t, []string{"A"}, f.repoPrizes(t))
}

func TestExhaustionStopsTimer(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A")

	sess, err := f.svc.Start(ctx, "chan-1", "Drop", 5)
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleEntry(ctx, sess.ID, "p1"))
	assert.Zero(t, f.registry.Len())

	// countdown firing after the exhaustion end must be a no-op
	f.clock.Advance(10 * time.Minute)
	a, ok := f.chat.Announcement(sess.ID)
	require.True(t, ok)
	assert.Equal(t, closedReasonText[models.EndReasonExhausted], a.ClosedReasonText)
}

func TestDeliveryFailureDoesNotRollBackDraw(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A", "B")

	sess, err := f.svc.Start(ctx, "chan-1", "Drop", 10)
	require.NoError(t, err)

	f.chat.DMErr = errors.New("dms closed")
	require.NoError(t, f.svc.HandleEntry(ctx, sess.ID, "p1"))

	// the prize stays consumed even though the win notification never arrived
	assert.Equal(t, []string{"B"}, f.repoPrizes(t))
	assert.Empty(t, f.chat.DMsTo("p1"))

	// and the claim is on record: a retry draws nothing
	f.chat.DMErr = nil
	require.NoError(t, f.svc.HandleEntry(ctx, sess.ID, "p1"))
	assert.Equal(t, []string{msgAlreadyClaimed}, f.chat.DMsTo("p1"))
	assert.Equal(t, []string{"B"}, f.repoPrizes(t))
}

func TestEntryPersistenceFailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A")

	sess, err := f.svc.Start(ctx, "chan-1", "Drop", 10)
	require.NoError(t, err)

	f.repo.SaveErr = errors.New("redis down")
	err = f.svc.HandleEntry(ctx, sess.ID, "p1")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodePersistenceFailure, appErr.Code)
	assert.Empty(t, f.chat.DMsTo("p1"), "no outcome may be confirmed")

	// nothing was recorded, so the same principal can try again
	f.repo.SaveErr = nil
	require.NoError(t, f.svc.HandleEntry(ctx, sess.ID, "p1"))
	dms := f.chat.DMsTo("p1")
	require.Len(t, dms, 1)
	assert.Equal(t, fmt.Sprintf(msgWonFormat, "A"), dms[0])
}

func TestConcurrentEntriesNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A", "B", "C")

	sess, err := f.svc.Start(ctx, "chan-1", "Drop", 10)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		principal := fmt.Sprintf("p%d", i)
		// each principal hammers the entry twice
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = f.svc.HandleEntry(ctx, sess.ID, principal)
			}()
		}
	}
	wg.Wait()

	wins := 0
	for i := 0; i < 10; i++ {
		for _, dm := range f.chat.DMsTo(fmt.Sprintf("p%d", i)) {
			if dm == fmt.Sprintf(msgWonFormat, "A") ||
				dm == fmt.Sprintf(msgWonFormat, "B") ||
				dm == fmt.Sprintf(msgWonFormat, "C") {
				wins++
			}
		}
	}
	assert.Equal(t, 3, wins, "exactly one win per prize")
	assert.Empty(t, f.repoPrizes(t))
	assert.Zero(t, f.registry.Len(), "exhaustion must end the session")
}

func TestGetReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A")

	sess, err := f.svc.Start(ctx, "chan-1", "Drop", 10)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, models.SessionStatusRunning, got.Status)

	require.NoError(t, f.svc.End(ctx, sess.ID))
	_, err = f.svc.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

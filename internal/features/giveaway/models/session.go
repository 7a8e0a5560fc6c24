package models

import "time"

// SessionStatus represents the lifecycle state of a giveaway session.
// There are exactly two states; Ended is terminal and entered once.
type SessionStatus string

const (
	SessionStatusRunning SessionStatus = "running"
	SessionStatusEnded   SessionStatus = "ended"
)

// EndReason records why a session ended.
type EndReason string

const (
	EndReasonTimeout   EndReason = "timeout"   // countdown reached EndsAt
	EndReasonExhausted EndReason = "exhausted" // prize pool ran dry during the run
	EndReasonManual    EndReason = "manual"    // ended by an authorized command
)

// Session is one running giveaway. ID is the platform-assigned id of the
// announcement message and is set exactly once, after posting.
type Session struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	ChannelID string        `json:"channel_id"`
	StartedAt time.Time     `json:"started_at"`
	EndsAt    time.Time     `json:"ends_at"`
	Status    SessionStatus `json:"status"`
	EndReason EndReason     `json:"end_reason,omitempty"`

	// InitialPrizeCount is the pool size captured at start, for display
	// only. It does not cap how many prizes the session may award.
	InitialPrizeCount int `json:"initial_prize_count"`
}

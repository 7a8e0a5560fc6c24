// Package chat defines the contract between the giveaway core and the chat
// platform it runs on. The core never talks to a platform SDK directly; it
// asks a Client to post, edit and deliver messages and reacts to the ids the
// platform assigns.
package chat

import "context"

// Announcement is the presentation-neutral content of a giveaway message.
// Rendering it into platform markup is the transport's job.
type Announcement struct {
	Title            string
	Color            string
	EndsAtUnix       int64
	PrizesRemaining  int
	EntryEmoji       string // reaction participants use to enter; empty once closed
	Closed           bool
	ClosedReasonText string
}

// MessageRef locates a previously posted announcement.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Client is the outbound half of the event dispatcher collaborator.
type Client interface {
	// PostAnnouncement publishes a giveaway announcement and returns the
	// platform-assigned message id.
	PostAnnouncement(ctx context.Context, channelID string, a Announcement) (string, error)

	// EditAnnouncement replaces the content of an existing announcement.
	EditAnnouncement(ctx context.Context, ref MessageRef, a Announcement) error

	// DirectMessage delivers a private message to a principal. Platforms may
	// refuse (closed DMs); callers treat a failure as a delivery problem, not
	// a state problem.
	DirectMessage(ctx context.Context, principalID, text string) error

	// SendMessage posts a plain message to a channel.
	SendMessage(ctx context.Context, channelID, text string) error
}

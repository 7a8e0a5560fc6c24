// Package chattest provides a recording chat.Client for tests.
package chattest

import (
	"context"
	"fmt"
	"sync"

	"instantwin-bot/internal/platform/chat"
)

// DM is one recorded direct message.
type DM struct {
	PrincipalID string
	Text        string
}

// ChannelMessage is one recorded channel send.
type ChannelMessage struct {
	ChannelID string
	Text      string
}

// Recorder implements chat.Client and records every outbound call. Message
// ids are deterministic ("msg-1", "msg-2", ...). Error fields let tests
// simulate platform failures.
type Recorder struct {
	mu   sync.Mutex
	seq  int
	dms  []DM
	sent []ChannelMessage

	// current announcement content per message id, edits included
	announcements map[string]chat.Announcement

	PostErr error
	EditErr error
	DMErr   error
}

func NewRecorder() *Recorder {
	return &Recorder{announcements: make(map[string]chat.Announcement)}
}

func (r *Recorder) PostAnnouncement(ctx context.Context, channelID string, a chat.Announcement) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.PostErr != nil {
		return "", r.PostErr
	}
	r.seq++
	id := fmt.Sprintf("msg-%d", r.seq)
	r.announcements[id] = a
	return id, nil
}

func (r *Recorder) EditAnnouncement(ctx context.Context, ref chat.MessageRef, a chat.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.EditErr != nil {
		return r.EditErr
	}
	r.announcements[ref.MessageID] = a
	return nil
}

func (r *Recorder) DirectMessage(ctx context.Context, principalID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.DMErr != nil {
		return r.DMErr
	}
	r.dms = append(r.dms, DM{PrincipalID: principalID, Text: text})
	return nil
}

func (r *Recorder) SendMessage(ctx context.Context, channelID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, ChannelMessage{ChannelID: channelID, Text: text})
	return nil
}

// Announcement returns the latest content of a posted message.
func (r *Recorder) Announcement(messageID string) (chat.Announcement, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.announcements[messageID]
	return a, ok
}

// DMsTo returns every direct message delivered to a principal.
func (r *Recorder) DMsTo(principalID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var texts []string
	for _, dm := range r.dms {
		if dm.PrincipalID == principalID {
			texts = append(texts, dm.Text)
		}
	}
	return texts
}

// ChannelMessages returns every plain channel send.
func (r *Recorder) ChannelMessages() []ChannelMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ChannelMessage, len(r.sent))
	copy(out, r.sent)
	return out
}

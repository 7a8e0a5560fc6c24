package service

import (
	"sync"

	"instantwin-bot/internal/common/clock"
	"instantwin-bot/internal/features/giveaway/models"
)

// runningSession is the engine's live view of a session: the persisted
// fields plus the claim set, the countdown timer and the lock serializing
// all mutations for this session.
type runningSession struct {
	mu      sync.Mutex
	info    models.Session
	claimed map[string]struct{}
	timer   clock.Timer
}

// SessionRegistry is the process-wide table of running sessions, keyed by
// the announcement message id. It only ever holds sessions in the Running
// state; ending a session removes it. Safe for concurrent use.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*runningSession
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*runningSession)}
}

func (r *SessionRegistry) create(sess *runningSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[sess.info.ID]; exists {
		return ErrSessionExists
	}
	r.sessions[sess.info.ID] = sess
	return nil
}

func (r *SessionRegistry) get(id string) (*runningSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (r *SessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of running sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

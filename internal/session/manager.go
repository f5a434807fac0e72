package session

import (
	"context"
	"sync"
	"time"

	"markethub/internal/domain"
)

// Session is one issued login, identified by the jti embedded in its token.
type Session struct {
	ID        string
	UserID    int64
	Role      domain.UserRole
	ExpiresAt time.Time
}

// Manager tracks active sessions so logout revokes server-side, not just in
// the client. Tokens whose jti is unknown are rejected even when their
// signature still verifies. Interested parties (the realtime gateway)
// register a callback to be told when a session dies.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]Session
	onRevoke []func(Session)
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]Session)}
}

func (m *Manager) Put(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

// Get returns the session if it exists and has not expired.
func (m *Manager) Get(id string) (Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return Session{}, false
	}
	if time.Now().After(s.ExpiresAt) {
		m.Revoke(id)
		return Session{}, false
	}
	return s, true
}

// Revoke removes the session and notifies subscribers. Revoking an unknown
// id is a no-op.
func (m *Manager) Revoke(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	callbacks := m.onRevoke
	m.mu.Unlock()

	if !ok {
		return
	}
	for _, fn := range callbacks {
		fn(s)
	}
}

// RevokeUser kills every session the user holds, across devices.
func (m *Manager) RevokeUser(userID int64) {
	m.mu.Lock()
	var revoked []Session
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
			revoked = append(revoked, s)
		}
	}
	callbacks := m.onRevoke
	m.mu.Unlock()

	for _, s := range revoked {
		for _, fn := range callbacks {
			fn(s)
		}
	}
}

// OnRevoke registers a callback invoked for every revoked session. Must be
// called during wiring, before the manager sees traffic.
func (m *Manager) OnRevoke(fn func(Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRevoke = append(m.onRevoke, fn)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops expired sessions until the context is cancelled.
func (m *Manager) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweepOnce(time.Now())
		}
	}
}

func (m *Manager) sweepOnce(now time.Time) {
	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.Revoke(id)
	}
}

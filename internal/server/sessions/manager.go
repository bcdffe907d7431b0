// Package sessions owns the in-memory session table: bearer-token identified
// grants bound to a user snapshot, with a sliding 30-minute expiry. The table
// is process-lifetime state; a restart invalidates every session.
package sessions

import (
	"sync"
	"time"

	"github.com/lemroudj/factory-backend/internal/common"
	"github.com/lemroudj/factory-backend/internal/server/models"
)

// Timeout is the sliding session lifetime. Fixed, not per-session.
const Timeout = 30 * time.Minute

type session struct {
	user      models.UserInfo
	expiresAt time.Time
}

// Manager issues, validates, and revokes sessions. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Create stores a snapshot of user under a fresh random token and returns
// the token. The snapshot is taken at login time: later renames of the
// underlying user do not propagate into open sessions.
func (m *Manager) Create(user models.UserInfo) (string, error) {
	id, err := common.MakeRandHexString(32)
	if err != nil {
		return "", common.ErrInternal
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[id] = &session{user: user, expiresAt: m.now().Add(Timeout)}
	return id, nil
}

// Validate resolves id to its user snapshot. An absent or expired entry
// yields ErrUnauthorized (expired entries are removed on discovery). On
// success the expiry is extended to now+Timeout.
func (m *Manager) Validate(id string) (models.UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(now)

	s, ok := m.sessions[id]
	if !ok {
		return models.UserInfo{}, common.ErrUnauthorized
	}
	if now.After(s.expiresAt) {
		delete(m.sessions, id)
		return models.UserInfo{}, common.ErrUnauthorized
	}

	s.expiresAt = now.Add(Timeout)
	return s.user, nil
}

// Revoke removes the session unconditionally. Idempotent.
func (m *Manager) Revoke(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// sweepLocked drops every expired entry. Called opportunistically from
// Validate; there is no background reaper, only the guarantee that an
// expired session is never returned as valid.
func (m *Manager) sweepLocked(now time.Time) {
	for id, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, id)
		}
	}
}

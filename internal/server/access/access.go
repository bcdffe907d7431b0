// Package access decides whether the caller behind a session token may
// perform an operation. These three gates are the only authorization
// primitives in the system.
package access

import (
	"github.com/lemroudj/factory-backend/internal/common"
	"github.com/lemroudj/factory-backend/internal/server/models"
	"github.com/lemroudj/factory-backend/internal/server/sessions"
)

// Control resolves and revalidates sessions before authorizing operations.
type Control struct {
	sessions *sessions.Manager
}

func NewControl(m *sessions.Manager) *Control {
	return &Control{sessions: m}
}

// Authenticate resolves the session token to its user snapshot, renewing the
// session's expiry as a side effect.
func (c *Control) Authenticate(sessionID string) (models.UserInfo, error) {
	return c.sessions.Validate(sessionID)
}

// RequireAdmin authenticates and then fails with ErrForbidden unless the
// caller holds the admin role.
func (c *Control) RequireAdmin(sessionID string) (models.UserInfo, error) {
	user, err := c.Authenticate(sessionID)
	if err != nil {
		return models.UserInfo{}, err
	}
	if !user.IsAdmin() {
		return models.UserInfo{}, common.ErrForbidden
	}
	return user, nil
}

// RequireOwnerOrAdmin authenticates and then fails with ErrForbidden unless
// the caller is the admin or is the user identified by targetUserID.
func (c *Control) RequireOwnerOrAdmin(sessionID string, targetUserID int64) (models.UserInfo, error) {
	user, err := c.Authenticate(sessionID)
	if err != nil {
		return models.UserInfo{}, err
	}
	if !user.IsAdmin() && user.ID != targetUserID {
		return models.UserInfo{}, common.ErrForbidden
	}
	return user, nil
}

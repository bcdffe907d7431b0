// Package models holds the durable and wire-level data shapes shared by the
// server packages.
package models

// Role classifies an identity. Exactly one logical admin exists and it is
// synthesized at login rather than stored, so stored users normally carry
// RoleWorker.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

// User is a stored worker identity. CodeHash is the salted digest of the
// login code; it is persisted under the "code" key for compatibility with
// existing data files and must never appear in API responses.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	CodeHash string `json:"code"`
	Role     Role   `json:"role"`
}

// UserInfo is the public projection of an identity, also used as the session
// snapshot taken at login time.
type UserInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Info returns the public projection of u.
func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Role: u.Role}
}

// IsAdmin reports whether the identity carries the admin role.
func (u UserInfo) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Package users owns the worker directory: login against it, and the
// admin-gated CRUD over it. The administrator identity is synthesized at
// login and never stored, so every stored row is expected to be a worker.
package users

import (
	"context"
	"strings"

	"github.com/lemroudj/factory-backend/internal/common"
	"github.com/lemroudj/factory-backend/internal/server/config"
	"github.com/lemroudj/factory-backend/internal/server/credentials"
	"github.com/lemroudj/factory-backend/internal/server/models"
	"github.com/lemroudj/factory-backend/internal/server/sessions"
	"github.com/lemroudj/factory-backend/internal/server/storage"
)

// AdminID is the id of the synthesized administrator identity. It never
// appears in storage.
const AdminID int64 = 0

type Service struct {
	store     storage.Store
	hasher    *credentials.Hasher
	sessions  *sessions.Manager
	adminName string
}

func NewService(store storage.Store, hasher *credentials.Hasher, sm *sessions.Manager, cfg *config.Config) *Service {
	return &Service{
		store:     store,
		hasher:    hasher,
		sessions:  sm,
		adminName: cfg.AdminName,
	}
}

// Login authenticates a code and opens a session. The fixed administrator
// code short-circuits to a synthesized identity without touching storage;
// any other code is digested and matched against the stored workers. A miss
// is ErrNotFound.
func (s *Service) Login(ctx context.Context, code string) (string, models.UserInfo, error) {
	if s.hasher.IsAdminCode(code) {
		admin := models.UserInfo{ID: AdminID, Name: s.adminName, Role: models.RoleAdmin}
		sessionID, err := s.sessions.Create(admin)
		if err != nil {
			return "", models.UserInfo{}, err
		}
		return sessionID, admin, nil
	}

	digest := s.hasher.Hash(code)

	var found *models.User
	err := s.store.View(ctx, func(d *storage.Data) error {
		for i := range d.Users {
			if d.Users[i].CodeHash == digest {
				found = &d.Users[i]
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return "", models.UserInfo{}, err
	}
	if found == nil {
		return "", models.UserInfo{}, common.ErrNotFound
	}

	info := found.Info()
	sessionID, err := s.sessions.Create(info)
	if err != nil {
		return "", models.UserInfo{}, err
	}
	return sessionID, info, nil
}

// Logout revokes the session. Idempotent.
func (s *Service) Logout(sessionID string) {
	s.sessions.Revoke(sessionID)
}

// List returns the public projection of every stored user. Digests are
// never included.
func (s *Service) List(ctx context.Context) ([]models.UserInfo, error) {
	infos := []models.UserInfo{}
	err := s.store.View(ctx, func(d *storage.Data) error {
		for _, u := range d.Users {
			infos = append(infos, u.Info())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.UserInfo, error) {
	var info models.UserInfo
	found := false
	err := s.store.View(ctx, func(d *storage.Data) error {
		for _, u := range d.Users {
			if u.ID == id {
				info = u.Info()
				found = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return models.UserInfo{}, err
	}
	if !found {
		return models.UserInfo{}, common.ErrNotFound
	}
	return info, nil
}

// Create appends a new user. The digest of code must be unique across the
// directory; ids follow the max+1 rule. The role is stored as given, even
// "admin" (such a row is then refused by the update/delete guards).
func (s *Service) Create(ctx context.Context, name, code string, role models.Role) (models.UserInfo, error) {
	if name == "" || code == "" || role == "" {
		return models.UserInfo{}, common.ErrValidation
	}

	digest := s.hasher.Hash(code)

	var created models.User
	err := s.store.Update(ctx, func(d *storage.Data) error {
		for _, u := range d.Users {
			if u.CodeHash == digest {
				return common.ErrConflict
			}
		}

		created = models.User{
			ID:       nextUserID(d.Users),
			Name:     name,
			CodeHash: digest,
			Role:     role,
		}
		d.Users = append(d.Users, created)
		return nil
	})
	if err != nil {
		return models.UserInfo{}, err
	}
	return created.Info(), nil
}

// Update renames a user. The synthesized admin identity and any stored row
// carrying the admin role are protected.
func (s *Service) Update(ctx context.Context, id int64, name string) (models.UserInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.UserInfo{}, common.ErrValidation
	}
	if id == AdminID {
		return models.UserInfo{}, common.ErrForbidden
	}

	var info models.UserInfo
	err := s.store.Update(ctx, func(d *storage.Data) error {
		for i := range d.Users {
			if d.Users[i].ID != id {
				continue
			}
			if d.Users[i].Role == models.RoleAdmin {
				return common.ErrForbidden
			}
			d.Users[i].Name = name
			info = d.Users[i].Info()
			return nil
		}
		return common.ErrNotFound
	})
	if err != nil {
		return models.UserInfo{}, err
	}
	return info, nil
}

// Delete removes a user and every record referencing it in one atomic
// mutation; no caller can observe the user gone while its records remain.
// The synthesized admin identity can never be deleted, not even by itself.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id == AdminID {
		return common.ErrForbidden
	}
	return s.store.Update(ctx, func(d *storage.Data) error {
		idx := -1
		for i := range d.Users {
			if d.Users[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return common.ErrNotFound
		}
		if d.Users[idx].Role == models.RoleAdmin {
			return common.ErrForbidden
		}

		d.Users = append(d.Users[:idx], d.Users[idx+1:]...)

		kept := d.Records[:0]
		for _, r := range d.Records {
			if r.UserID != id {
				kept = append(kept, r)
			}
		}
		d.Records = kept
		return nil
	})
}

func nextUserID(users []models.User) int64 {
	var max int64
	for _, u := range users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

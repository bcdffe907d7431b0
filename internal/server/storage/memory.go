package storage

import (
	"context"
	"sync"

	"github.com/lemroudj/factory-backend/internal/server/models"
)

// MemoryStore holds Data in process memory. Used by tests and available as a
// throwaway backend; nothing survives a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data Data
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) View(ctx context.Context, fn func(d *Data) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := cloneData(&s.data)
	return fn(d)
}

func (s *MemoryStore) Update(ctx context.Context, fn func(d *Data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := cloneData(&s.data)
	if err := fn(d); err != nil {
		return err
	}
	s.data = *d
	return nil
}

func (s *MemoryStore) RunMigrations(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func cloneData(d *Data) *Data {
	c := &Data{
		Users:   make([]models.User, len(d.Users)),
		Records: make([]models.Record, len(d.Records)),
	}
	copy(c.Users, d.Users)
	copy(c.Records, d.Records)
	return c
}

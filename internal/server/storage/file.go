package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lemroudj/factory-backend/internal/logging"
	"github.com/lemroudj/factory-backend/internal/server/models"
)

const (
	usersFile   = "users.json"
	recordsFile = "records.json"
)

// FileStore keeps each collection as a pretty-printed JSON list in its own
// file, compatible with the historical data layout. Every mutation is a
// whole-collection read-modify-write under an exclusive lock.
type FileStore struct {
	mu     sync.RWMutex
	dir    string
	logger logging.Logger
}

// NewFileStore creates the data directory if needed and seeds missing
// collection files with empty lists.
func NewFileStore(dir string, logger logging.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	s := &FileStore{dir: dir, logger: logger.With("module", "file_store")}

	for _, name := range []string{usersFile, recordsFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(path, []byte("[]"), 0o660); err != nil {
				return nil, fmt.Errorf("init %s: %w", path, err)
			}
		}
	}

	return s, nil
}

func (s *FileStore) View(ctx context.Context, fn func(d *Data) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := s.load(ctx)
	return fn(d)
}

func (s *FileStore) Update(ctx context.Context, fn func(d *Data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.load(ctx)
	if err := fn(d); err != nil {
		return err
	}
	return s.save(d)
}

func (s *FileStore) RunMigrations(ctx context.Context) error { return nil }

func (s *FileStore) Close() error { return nil }

// load reads both collections. An unreadable or malformed file degrades to
// an empty collection: the process must keep serving, but the condition is
// a data-loss risk and is logged as such.
func (s *FileStore) load(ctx context.Context) *Data {
	d := &Data{}

	if err := readCollection(filepath.Join(s.dir, usersFile), &d.Users); err != nil {
		s.logger.Warn(ctx, "users collection unreadable, treating as empty", "error", err)
		d.Users = nil
	}
	if err := readCollection(filepath.Join(s.dir, recordsFile), &d.Records); err != nil {
		s.logger.Warn(ctx, "records collection unreadable, treating as empty", "error", err)
		d.Records = nil
	}

	return d
}

func (s *FileStore) save(d *Data) error {
	if d.Users == nil {
		d.Users = []models.User{}
	}
	if d.Records == nil {
		d.Records = []models.Record{}
	}
	if err := writeCollection(filepath.Join(s.dir, usersFile), d.Users); err != nil {
		return err
	}
	return writeCollection(filepath.Join(s.dir, recordsFile), d.Records)
}

func readCollection(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func writeCollection(path string, in any) error {
	b, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o660)
}

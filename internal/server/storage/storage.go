// Package storage isolates the durable collections behind a small atomic
// get/put abstraction. The default backend keeps the historical flat-file
// strategy (whole-collection read-modify-write); a transactional Postgres
// backend and an in-memory backend implement the same contract.
package storage

import (
	"context"

	"github.com/lemroudj/factory-backend/internal/server/models"
)

// Data is the full durable state: the user directory and the work records.
// Both collections are always read and written as a whole.
type Data struct {
	Users   []models.User
	Records []models.Record
}

// Store provides atomic access to Data.
//
// View runs fn against a copy of the current state; mutations made by fn are
// discarded. Update runs fn against the current state and persists the
// result; either every change made by fn becomes visible or none does, so a
// multi-collection mutation (e.g. a cascade delete) is never observable
// half-applied.
type Store interface {
	View(ctx context.Context, fn func(d *Data) error) error
	Update(ctx context.Context, fn func(d *Data) error) error
	RunMigrations(ctx context.Context) error
	Close() error
}

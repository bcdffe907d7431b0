package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/lemroudj/factory-backend/internal/logging"
	"github.com/lemroudj/factory-backend/internal/server/migrations"
)

const (
	usersCollection   = "users"
	recordsCollection = "records"
)

// PostgresStore keeps each collection as a single JSONB document in the
// collections table. The whole-collection read-modify-write contract is
// preserved; atomicity comes from running each Update inside one
// transaction with the rows locked.
type PostgresStore struct {
	db     *sql.DB
	logger logging.Logger
}

func NewPostgresStore(dsn string, logger logging.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return &PostgresStore{db: db, logger: logger.With("module", "postgres_store")}, nil
}

// dbtx is the subset of database/sql used here, satisfied by both *sql.DB
// and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) View(ctx context.Context, fn func(d *Data) error) error {
	d, err := s.load(ctx, s.db, false)
	if err != nil {
		return err
	}
	return fn(d)
}

func (s *PostgresStore) Update(ctx context.Context, fn func(d *Data) error) error {
	return withTx(ctx, s.db, func(ctx context.Context, tx dbtx) error {
		d, err := s.load(ctx, tx, true)
		if err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
		return s.save(ctx, tx, d)
	})
}

func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return err
	}

	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) load(ctx context.Context, q dbtx, forUpdate bool) (*Data, error) {
	d := &Data{}

	if err := s.loadCollection(ctx, q, usersCollection, forUpdate, &d.Users); err != nil {
		return nil, err
	}
	if err := s.loadCollection(ctx, q, recordsCollection, forUpdate, &d.Records); err != nil {
		return nil, err
	}

	return d, nil
}

// loadCollection reads one collection document. A missing row or a document
// that fails to decode degrades to an empty collection, logged as a
// data-loss risk, matching the flat-file backend.
func (s *PostgresStore) loadCollection(ctx context.Context, q dbtx, name string, forUpdate bool, out any) error {
	query := "SELECT doc FROM collections WHERE name = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}

	var doc []byte
	err := q.QueryRowContext(ctx, query, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn(ctx, "collection row missing, treating as empty", "collection", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}

	if err := json.Unmarshal(doc, out); err != nil {
		s.logger.Warn(ctx, "collection document malformed, treating as empty", "collection", name, "error", err)
	}
	return nil
}

func (s *PostgresStore) save(ctx context.Context, q dbtx, d *Data) error {
	if err := s.saveCollection(ctx, q, usersCollection, d.Users); err != nil {
		return err
	}
	return s.saveCollection(ctx, q, recordsCollection, d.Records)
}

func (s *PostgresStore) saveCollection(ctx context.Context, q dbtx, name string, in any) error {
	doc, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if string(doc) == "null" {
		doc = []byte("[]")
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO collections (name, doc) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET doc = EXCLUDED.doc`,
		name, doc)
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// withTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
func withTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbtx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

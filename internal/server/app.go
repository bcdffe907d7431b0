// Package server initializes and runs the backend: it selects a storage
// backend, wires the auth and domain services together, and serves the HTTP
// API until the process is told to stop.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/lemroudj/factory-backend/internal/logging"
	"github.com/lemroudj/factory-backend/internal/server/access"
	"github.com/lemroudj/factory-backend/internal/server/config"
	"github.com/lemroudj/factory-backend/internal/server/credentials"
	"github.com/lemroudj/factory-backend/internal/server/httpapi"
	"github.com/lemroudj/factory-backend/internal/server/records"
	"github.com/lemroudj/factory-backend/internal/server/sessions"
	"github.com/lemroudj/factory-backend/internal/server/storage"
	"github.com/lemroudj/factory-backend/internal/server/users"
)

type App struct {
	config *config.Config
	logger logging.Logger
	store  storage.Store
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	store, err := newStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	if err := store.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	// The session table starts empty on every boot: sessions are
	// process-lifetime state with no durable backing.
	sm := sessions.NewManager()
	hasher := credentials.NewHasher(cfg)
	ac := access.NewControl(sm)
	us := users.NewService(store, hasher, sm, cfg)
	rs := records.NewService(store)

	srv := httpapi.NewServer(cfg, logger, ac, us, rs)

	return &App{config: cfg, logger: logger, store: store, server: srv}, nil
}

// newStore picks the backend: a DSN selects Postgres, otherwise the
// flat-file store under the configured data directory.
func newStore(cfg *config.Config, logger logging.Logger) (storage.Store, error) {
	if cfg.DatabaseDSN != "" {
		return storage.NewPostgresStore(cfg.DatabaseDSN, logger)
	}
	return storage.NewFileStore(cfg.DataDir, logger)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "storage close error", "error", err)
	}
}

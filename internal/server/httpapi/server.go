// Package httpapi exposes the REST surface consumed by the web client. The
// session token travels as an opaque bearer value in the Session-Id header.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lemroudj/factory-backend/internal/logging"
	"github.com/lemroudj/factory-backend/internal/server/access"
	"github.com/lemroudj/factory-backend/internal/server/config"
	"github.com/lemroudj/factory-backend/internal/server/records"
	"github.com/lemroudj/factory-backend/internal/server/users"
)

type Server struct {
	address string
	engine  *gin.Engine
	logger  logging.Logger
	ac      *access.Control
	users   *users.Service
	records *records.Service
}

func NewServer(cfg *config.Config, l logging.Logger, ac *access.Control, us *users.Service, rs *records.Service) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		address: cfg.EndpointAddr,
		engine:  gin.New(),
		logger:  l.With("module", "http_server"),
		ac:      ac,
		users:   us,
		records: rs,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(s.requestLogger())
	s.engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Session-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")

	api.POST("/login", s.handleLogin)
	api.GET("/records/user/:userId", s.handleListUserRecords)

	authed := api.Group("")
	authed.Use(s.requireAuth())
	authed.POST("/logout", s.handleLogout)

	admin := api.Group("")
	admin.Use(s.requireAdmin())
	admin.GET("/users", s.handleListUsers)
	admin.GET("/users/:id", s.handleGetUser)
	admin.POST("/users", s.handleCreateUser)
	admin.PUT("/users/:id", s.handleUpdateUser)
	admin.DELETE("/users/:id", s.handleDeleteUser)
	admin.GET("/records", s.handleListRecords)
	admin.POST("/records", s.handleCreateRecord)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.engine,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

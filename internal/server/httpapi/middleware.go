package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lemroudj/factory-backend/internal/common"
)

// sessionHeader carries the opaque bearer token on every authenticated
// request, matching the wire format the web client already speaks.
const sessionHeader = "Session-Id"

const (
	userKey    = "user"
	sessionKey = "session_id"
)

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)

		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

// requireAuth resolves the Session-Id header into a user snapshot, renewing
// the session's sliding expiry as a side effect.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(sessionHeader)
		user, err := s.ac.Authenticate(sessionID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(userKey, user)
		c.Set(sessionKey, sessionID)
	}
}

// requireAdmin is the admin gate: one call validates the session and the
// role, so each request passes through exactly one authorization check.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(sessionHeader)
		user, err := s.ac.RequireAdmin(sessionID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(userKey, user)
		c.Set(sessionKey, sessionID)
	}
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := errStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = common.ErrInternal.Error()
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

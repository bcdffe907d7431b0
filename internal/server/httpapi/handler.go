package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lemroudj/factory-backend/internal/common"
	"github.com/lemroudj/factory-backend/internal/server/models"
	"github.com/lemroudj/factory-backend/internal/server/records"
)

type loginRequest struct {
	Code string `json:"code"`
}

type createUserRequest struct {
	Name string      `json:"name"`
	Code string      `json:"code"`
	Role models.Role `json:"role"`
}

type updateUserRequest struct {
	Name string `json:"name"`
}

// createRecordRequest uses pointers with required bindings so that an
// explicit zero (e.g. salary 0) is accepted while an absent field is not.
type createRecordRequest struct {
	UserID     *int64   `json:"userId" binding:"required"`
	Month      *int     `json:"month" binding:"required"`
	Year       *int     `json:"year" binding:"required"`
	DaysWorked *int     `json:"daysWorked" binding:"required"`
	Salary     *float64 `json:"salary" binding:"required"`
	Expenses   *float64 `json:"expenses" binding:"required"`
	Notes      string   `json:"notes"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.ErrValidation)
		return
	}

	sessionID, user, err := s.users.Login(c.Request.Context(), req.Code)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "user": user})
}

func (s *Server) handleLogout(c *gin.Context) {
	s.users.Logout(c.GetString(sessionKey))
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *Server) handleListUsers(c *gin.Context) {
	list, err := s.users.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	user, err := s.users.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.ErrValidation)
		return
	}

	user, err := s.users.Create(c.Request.Context(), req.Name, req.Code, req.Role)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.ErrValidation)
		return
	}

	user, err := s.users.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := s.users.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User and all their records deleted"})
}

// handleListUserRecords carries its own gate: the target user may read its
// records, the admin may read anyone's.
func (s *Server) handleListUserRecords(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		abortWithError(c, err)
		return
	}

	if _, err := s.ac.RequireOwnerOrAdmin(c.GetHeader(sessionHeader), userID); err != nil {
		abortWithError(c, err)
		return
	}

	list, err := s.records.ListForUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleListRecords(c *gin.Context) {
	list, err := s.records.ListAll(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleCreateRecord(c *gin.Context) {
	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.ErrValidation)
		return
	}

	rec, err := s.records.Create(c.Request.Context(), records.CreateParams{
		UserID:     *req.UserID,
		Month:      *req.Month,
		Year:       *req.Year,
		DaysWorked: *req.DaysWorked,
		Salary:     *req.Salary,
		Expenses:   *req.Expenses,
		Notes:      req.Notes,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, common.ErrValidation
	}
	return id, nil
}

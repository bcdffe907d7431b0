package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemroudj/factory-backend/internal/logging"
	"github.com/lemroudj/factory-backend/internal/server/access"
	"github.com/lemroudj/factory-backend/internal/server/config"
	"github.com/lemroudj/factory-backend/internal/server/credentials"
	"github.com/lemroudj/factory-backend/internal/server/models"
	"github.com/lemroudj/factory-backend/internal/server/records"
	"github.com/lemroudj/factory-backend/internal/server/sessions"
	"github.com/lemroudj/factory-backend/internal/server/storage"
	"github.com/lemroudj/factory-backend/internal/server/users"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	store := storage.NewMemoryStore()
	sm := sessions.NewManager()
	hasher := credentials.NewHasher(cfg)
	ac := access.NewControl(sm)
	us := users.NewService(store, hasher, sm, cfg)
	rs := records.NewService(store)

	return NewServer(cfg, logger, ac, us, rs)
}

func doJSON(t *testing.T, s *Server, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, s *Server, code string) (string, models.UserInfo) {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/api/login", "", gin.H{"code": code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		SessionID string          `json:"sessionId"`
		User      models.UserInfo `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID, resp.User
}

func createWorker(t *testing.T, s *Server, adminSession, name, code string) models.UserInfo {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/api/users", adminSession,
		gin.H{"name": name, "code": code, "role": "worker"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.UserInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	return user
}

func TestLogin_Admin(t *testing.T) {
	s := newTestServer(t)

	_, user := login(t, s, "LEMROUDJ2024")
	assert.Equal(t, int64(0), user.ID)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "LEMROUDJ Admin", user.Name)
}

func TestLogin_UnknownCode(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/login", "", gin.H{"code": "0000"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogin_Worker_ResponseNeverContainsDigest(t *testing.T) {
	s := newTestServer(t)
	adminSession, _ := login(t, s, "LEMROUDJ2024")
	created := createWorker(t, s, adminSession, "Samir", "1111")

	sessionID, user := login(t, s, "1111")
	require.NotEmpty(t, sessionID)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, models.RoleWorker, user.Role)

	// Neither login nor the user listing may leak the stored digest.
	w := doJSON(t, s, http.MethodGet, "/api/users", adminSession, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "code")
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/logout"},
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/records"},
	} {
		w := doJSON(t, s, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestAdminGate_RejectsWorker(t *testing.T) {
	s := newTestServer(t)
	adminSession, _ := login(t, s, "LEMROUDJ2024")
	createWorker(t, s, adminSession, "Samir", "1111")
	workerSession, _ := login(t, s, "1111")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/users"},
		{http.MethodGet, "/api/records"},
		{http.MethodPost, "/api/records"},
	} {
		w := doJSON(t, s, tc.method, tc.path, workerSession, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestLogout_InvalidatesSession(t *testing.T) {
	s := newTestServer(t)
	adminSession, _ := login(t, s, "LEMROUDJ2024")

	w := doJSON(t, s, http.MethodPost, "/api/logout", adminSession, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/users", adminSession, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateUser_Errors(t *testing.T) {
	s := newTestServer(t)
	adminSession, _ := login(t, s, "LEMROUDJ2024")

	// Missing fields.
	w := doJSON(t, s, http.MethodPost, "/api/users", adminSession, gin.H{"name": "Samir"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Duplicate code.
	createWorker(t, s, adminSession, "Samir", "1111")
	w = doJSON(t, s, http.MethodPost, "/api/users", adminSession,
		gin.H{"name": "Nadia", "code": "1111", "role": "worker"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserCRUD(t *testing.T) {
	s := newTestServer(t)
	adminSession, _ := login(t, s, "LEMROUDJ2024")
	created := createWorker(t, s, adminSession, "Samir", "1111")

	// Get.
	w := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/users/%d", created.ID), adminSession, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Update.
	w = doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/users/%d", created.ID), adminSession, gin.H{"name": "Samir B."})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.UserInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Samir B.", updated.Name)

	// Update with blank name.
	w = doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/users/%d", created.ID), adminSession, gin.H{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Delete, then the user is gone.
	w = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/users/%d", created.ID), adminSession, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/users/%d", created.ID), adminSession, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unknown ids.
	w = doJSON(t, s, http.MethodPut, "/api/users/99", adminSession, gin.H{"name": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, s, http.MethodDelete, "/api/users/99", adminSession, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminIdentityProtectedOverHTTP(t *testing.T) {
	s := newTestServer(t)
	adminSession, _ := login(t, s, "LEMROUDJ2024")

	// Even the admin itself cannot rename or delete the synthesized
	// identity behind id 0.
	w := doJSON(t, s, http.MethodPut, "/api/users/0", adminSession, gin.H{"name": "X"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, s, http.MethodDelete, "/api/users/0", adminSession, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteUser_CascadesRecords(t *testing.T) {
	s := newTestServer(t)
	adminSession, _ := login(t, s, "LEMROUDJ2024")
	worker := createWorker(t, s, adminSession, "Samir", "1111")

	w := doJSON(t, s, http.MethodPost, "/api/records", adminSession, gin.H{
		"userId": worker.ID, "month": 5, "year": 2024, "daysWorked": 20, "salary": 40000, "expenses": 0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/users/%d", worker.ID), adminSession, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/records", adminSession, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestCreateRecord_PresenceValidation(t *testing.T) {
	s := newTestServer(t)
	adminSession, _ := login(t, s, "LEMROUDJ2024")
	worker := createWorker(t, s, adminSession, "Samir", "1111")

	// salary missing entirely: rejected.
	w := doJSON(t, s, http.MethodPost, "/api/records", adminSession, gin.H{
		"userId": worker.ID, "month": 5, "year": 2024, "daysWorked": 20, "expenses": 100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// salary explicitly zero: accepted.
	w = doJSON(t, s, http.MethodPost, "/api/records", adminSession, gin.H{
		"userId": worker.ID, "month": 5, "year": 2024, "daysWorked": 20, "salary": 0, "expenses": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rec models.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Zero(t, rec.Salary)
	assert.Equal(t, "", rec.Notes)
	assert.NotZero(t, rec.Timestamp)
}

func TestListUserRecords_OwnerOrAdmin(t *testing.T) {
	s := newTestServer(t)
	adminSession, _ := login(t, s, "LEMROUDJ2024")
	owner := createWorker(t, s, adminSession, "Samir", "1111")
	createWorker(t, s, adminSession, "Nadia", "2222")

	for _, r := range []gin.H{
		{"userId": owner.ID, "month": 5, "year": 2023, "daysWorked": 20, "salary": 1, "expenses": 0},
		{"userId": owner.ID, "month": 1, "year": 2024, "daysWorked": 20, "salary": 1, "expenses": 0},
		{"userId": owner.ID, "month": 12, "year": 2023, "daysWorked": 20, "salary": 1, "expenses": 0},
	} {
		w := doJSON(t, s, http.MethodPost, "/api/records", adminSession, r)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	ownerSession, _ := login(t, s, "1111")
	otherSession, _ := login(t, s, "2222")
	path := fmt.Sprintf("/api/records/user/%d", owner.ID)

	// Owner sees its records, most recent first.
	w := doJSON(t, s, http.MethodGet, path, ownerSession, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, [2]int{2024, 1}, [2]int{list[0].Year, list[0].Month})
	assert.Equal(t, [2]int{2023, 12}, [2]int{list[1].Year, list[1].Month})
	assert.Equal(t, [2]int{2023, 5}, [2]int{list[2].Year, list[2].Month})

	// Admin sees them too.
	w = doJSON(t, s, http.MethodGet, path, adminSession, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Another worker does not.
	w = doJSON(t, s, http.MethodGet, path, otherSession, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// No session at all.
	w = doJSON(t, s, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/insightd-dev/insightd/internal/config"
	"github.com/insightd-dev/insightd/internal/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Port = "0"
	cfg.Database.URL = filepath.Join(t.TempDir(), "test.sqlite")
	cfg.Redis.Address = "localhost:6379"

	srv, err := New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

// registerUser registers an account and returns its token and detail
func registerUser(t *testing.T, srv *Server, name, email, password string) (string, UserDetail) {
	t.Helper()

	w := doJSON(t, srv, "POST", "/api/v1/auth/register", "", RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	return resp.Token, *resp.User
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "online", resp["status"])
	require.Equal(t, "insightd-api", resp["service"])
}

func TestRegister_FirstUserBecomesAdmin(t *testing.T) {
	srv := newTestServer(t)

	_, first := registerUser(t, srv, "First", "first@example.com", "secret1")
	require.Equal(t, models.RoleAdmin, first.Role)

	_, second := registerUser(t, srv, "Second", "second@example.com", "secret2")
	require.Equal(t, models.RoleUser, second.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "First", "dup@example.com", "secret1")

	w := doJSON(t, srv, "POST", "/api/v1/auth/register", "", RegisterRequest{
		Name:     "Again",
		Email:    "DUP@example.com", // email comparison is case-insensitive
		Password: "secret2",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "Email already registered")
}

func TestRegister_Validation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{name: "missing name", req: RegisterRequest{Email: "a@b.com", Password: "secret1"}},
		{name: "bad email", req: RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret1"}},
		{name: "short password", req: RegisterRequest{Name: "A", Email: "a@b.com", Password: "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, srv, "POST", "/api/v1/auth/register", "", tt.req)
			require.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "User", "login@example.com", "secret1")

	t.Run("success", func(t *testing.T) {
		w := doJSON(t, srv, "POST", "/api/v1/auth/login", "", LoginRequest{
			Email:    "login@example.com",
			Password: "secret1",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Token)
		require.Equal(t, "login@example.com", resp.User.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(t, srv, "POST", "/api/v1/auth/login", "", LoginRequest{
			Email:    "login@example.com",
			Password: "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Contains(t, w.Body.String(), "Invalid email or password")
	})

	t.Run("unknown email", func(t *testing.T) {
		w := doJSON(t, srv, "POST", "/api/v1/auth/login", "", LoginRequest{
			Email:    "nobody@example.com",
			Password: "secret1",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "User", "mw@example.com", "secret1")

	t.Run("no header", func(t *testing.T) {
		w := doJSON(t, srv, "GET", "/api/v1/auth/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doJSON(t, srv, "GET", "/api/v1/auth/me", "not-a-jwt", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := doJSON(t, srv, "GET", "/api/v1/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var user UserDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
		require.Equal(t, "mw@example.com", user.Email)
	})
}

func TestAuthMiddleware_DeletedUserLosesAccess(t *testing.T) {
	srv := newTestServer(t)
	token, user := registerUser(t, srv, "Gone", "gone@example.com", "secret1")

	require.NoError(t, srv.GetDB().Delete(&models.User{}, "id = ?", user.ID).Error)

	w := doJSON(t, srv, "GET", "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "Before", "profile@example.com", "secret1")

	w := doJSON(t, srv, "PUT", "/api/v1/auth/me", token, UpdateProfileRequest{Name: "After"})
	require.Equal(t, http.StatusOK, w.Code)

	var user UserDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	require.Equal(t, "After", user.Name)
}

func TestUserManagement(t *testing.T) {
	srv := newTestServer(t)
	adminToken, admin := registerUser(t, srv, "Admin", "admin@example.com", "secret1")
	userToken, _ := registerUser(t, srv, "Plain", "plain@example.com", "secret2")

	t.Run("non-admin is forbidden", func(t *testing.T) {
		w := doJSON(t, srv, "GET", "/api/v1/users", userToken, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Contains(t, w.Body.String(), "Admin access required")
	})

	t.Run("admin lists users", func(t *testing.T) {
		w := doJSON(t, srv, "GET", "/api/v1/users", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var users []UserDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
		require.Len(t, users, 2)
	})

	var createdID string
	t.Run("admin creates user", func(t *testing.T) {
		w := doJSON(t, srv, "POST", "/api/v1/users", adminToken, CreateUserRequest{
			Email:    "created@example.com",
			Name:     "Created",
			Password: "secret3",
			Role:     models.RoleUser,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp CreateUserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.User)
		createdID = resp.User.ID
	})

	t.Run("invalid role is rejected", func(t *testing.T) {
		w := doJSON(t, srv, "POST", "/api/v1/users", adminToken, CreateUserRequest{
			Email:    "bad@example.com",
			Name:     "Bad",
			Password: "secret3",
			Role:     "superuser",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "Invalid role")
	})

	t.Run("cannot delete self", func(t *testing.T) {
		w := doJSON(t, srv, "DELETE", "/api/v1/users/"+admin.ID, adminToken, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "Cannot delete yourself")
	})

	t.Run("delete unknown user", func(t *testing.T) {
		w := doJSON(t, srv, "DELETE", "/api/v1/users/nonexistent", adminToken, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("admin deletes user", func(t *testing.T) {
		w := doJSON(t, srv, "DELETE", "/api/v1/users/"+createdID, adminToken, nil)
		require.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "User", "dash@example.com", "secret1")
	db := srv.GetDB()

	customer := models.Customer{Name: "Acme", Email: "acme@example.com", Region: "EU", Status: "active"}
	require.NoError(t, db.Create(&customer).Error)
	inactive := models.Customer{Name: "Idle", Email: "idle@example.com", Region: "EU", Status: "inactive"}
	require.NoError(t, db.Create(&inactive).Error)

	now := time.Now().UTC()
	sales := []models.Sale{
		{CustomerID: customer.ID, Product: "Widget", Amount: 100, Region: "EU", SoldAt: now.AddDate(0, 0, -1)},
		{CustomerID: customer.ID, Product: "Widget", Amount: 50, Region: "EU", SoldAt: now.AddDate(0, 0, -30)},
	}
	for i := range sales {
		require.NoError(t, db.Create(&sales[i]).Error)
	}

	w := doJSON(t, srv, "GET", "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, float64(150), resp.TotalRevenue)
	require.Equal(t, float64(100), resp.RevenueThisWeek)
	require.Equal(t, int64(2), resp.SalesCount)
	require.Equal(t, int64(2), resp.CustomerCount)
	require.Equal(t, int64(1), resp.ActiveCustomers)
}

func TestDashboard_EmptyDatabase(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "User", "empty@example.com", "secret1")

	w := doJSON(t, srv, "GET", "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Zero(t, resp.TotalRevenue)
	require.Zero(t, resp.SalesCount)
}

func TestNotifications(t *testing.T) {
	srv := newTestServer(t)
	token, user := registerUser(t, srv, "User", "notif@example.com", "secret1")
	otherToken, _ := registerUser(t, srv, "Other", "other@example.com", "secret2")
	db := srv.GetDB()

	notification := models.Notification{UserID: user.ID, Title: "Hello", Body: "World"}
	require.NoError(t, db.Create(&notification).Error)

	t.Run("list is user scoped", func(t *testing.T) {
		w := doJSON(t, srv, "GET", "/api/v1/notifications", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var notifications []models.Notification
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notifications))
		require.Len(t, notifications, 1)

		w = doJSON(t, srv, "GET", "/api/v1/notifications", otherToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notifications))
		require.Empty(t, notifications)
	})

	t.Run("mark read", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/notifications/%s/read", notification.ID)

		w := doJSON(t, srv, "POST", path, token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var updated models.Notification
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		require.NotNil(t, updated.ReadAt)
		firstReadAt := *updated.ReadAt

		// Idempotent: a second call keeps the original timestamp
		w = doJSON(t, srv, "POST", path, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		require.NotNil(t, updated.ReadAt)
		require.True(t, updated.ReadAt.Equal(firstReadAt))
	})

	t.Run("cannot read someone else's notification", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/notifications/%s/read", notification.ID)
		w := doJSON(t, srv, "POST", path, otherToken, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harukim/task-tracker-api/internal/database"
	"github.com/harukim/task-tracker-api/internal/dto"
	"github.com/harukim/task-tracker-api/internal/middleware"
	"github.com/harukim/task-tracker-api/internal/models"
	"github.com/harukim/task-tracker-api/internal/repository"
	"github.com/harukim/task-tracker-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.Task{},
		&models.Tag{},
		&models.AccessToken{},
	)
	require.NoError(t, err)
	require.NoError(t, database.SeedRolesAndPermissions(db))

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	authService := services.NewAuthService(userRepo, tokenRepo, time.Hour)
	handler := NewAuthHandler(authService)

	r := gin.New()
	r.POST("/api/auth/register", handler.Register)
	r.POST("/api/auth/login", handler.Login)
	r.GET("/api/auth/profile", middleware.RequireAuth(authService), handler.Profile)
	r.POST("/api/auth/logout", middleware.RequireAuth(authService), handler.Logout)
	r.POST("/api/user/password", middleware.RequireAuth(authService), handler.ChangePassword)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		router:      r,
		authService: authService,
	}
}

func (env authTestEnv) request(t *testing.T, method, url string, payload interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":                  "Alice",
		"email":                 "alice@x.com",
		"password":              "password123",
		"password_confirmation": "password123",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Token)
	require.Equal(t, "Alice", response.User.Name)
	require.Equal(t, "alice@x.com", response.User.Email)
	require.Equal(t, []string{"user"}, response.User.Roles)
	require.ElementsMatch(t, []string{
		"view-own-task", "create-task", "update-own-task", "delete-own-task",
	}, response.User.Permissions)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := map[string]string{
		"name":                  "Alice",
		"email":                 "alice@x.com",
		"password":              "password123",
		"password_confirmation": "password123",
	}
	w := env.request(t, http.MethodPost, "/api/auth/register", payload, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/register", payload, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAuthHandler_Register_ValidationFailures(t *testing.T) {
	env := setupAuthTestEnv(t)

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"short password", map[string]string{
			"name": "A", "email": "a@x.com",
			"password": "short", "password_confirmation": "short",
		}},
		{"confirmation mismatch", map[string]string{
			"name": "A", "email": "a@x.com",
			"password": "password123", "password_confirmation": "password456",
		}},
		{"invalid email", map[string]string{
			"name": "A", "email": "not-an-email",
			"password": "password123", "password_confirmation": "password123",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.request(t, http.MethodPost, "/api/auth/register", tt.payload, "")
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, _, err := env.authService.Register(services.RegisterInput{
		Name:                 "Alice",
		Email:                "alice@x.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@x.com",
		"password": "password123",
	}, "")

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Token)
	require.Equal(t, "alice@x.com", response.User.Email)

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "alice@x.com").First(&user).Error)
	require.NotNil(t, user.LastLoginAt, "login should record the login time")
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, _, err := env.authService.Register(services.RegisterInput{
		Name:                 "Alice",
		Email:                "alice@x.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@x.com",
		"password": "wrong-password",
	}, "")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "invalid credentials")
}

func TestAuthHandler_Profile(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, token, err := env.authService.Register(services.RegisterInput{
		Name:                 "Alice",
		Email:                "alice@x.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	require.NoError(t, err)

	w := env.request(t, http.MethodGet, "/api/auth/profile", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "alice@x.com", response.Email)
	require.Equal(t, []string{"user"}, response.Roles)

	w = env.request(t, http.MethodGet, "/api/auth/profile", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout_RevokesToken(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, token, err := env.authService.Register(services.RegisterInput{
		Name:                 "Alice",
		Email:                "alice@x.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	// The revoked token no longer authenticates.
	w = env.request(t, http.MethodGet, "/api/auth/profile", nil, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, token, err := env.authService.Register(services.RegisterInput{
		Name:                 "Alice",
		Email:                "alice@x.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/user/password", map[string]string{
		"current_password":      "wrong-password",
		"password":              "newpassword456",
		"password_confirmation": "newpassword456",
	}, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.request(t, http.MethodPost, "/api/user/password", map[string]string{
		"current_password":      "password123",
		"password":              "newpassword456",
		"password_confirmation": "newpassword456",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@x.com",
		"password": "newpassword456",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
}

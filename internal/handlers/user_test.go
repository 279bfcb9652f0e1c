package handlers

import (
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

type userTestEnv struct {
	router      *gin.Engine
	authService *services.AuthService
	userRepo    repository.UserRepository
}

func setupUserTestEnv(t *testing.T) userTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.AccessToken{},
	)
	require.NoError(t, err)
	require.NoError(t, database.SeedRolesAndPermissions(db))

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	authService := services.NewAuthService(userRepo, tokenRepo, time.Hour)
	handler := NewUserHandler(services.NewUserService(userRepo))

	r := gin.New()
	r.GET("/api/users", middleware.RequireAuth(authService), handler.ListUsers)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return userTestEnv{
		router:      r,
		authService: authService,
		userRepo:    userRepo,
	}
}

func TestUserHandler_ListUsers(t *testing.T) {
	env := setupUserTestEnv(t)

	register := func(name, email string) (*models.User, string) {
		user, token, err := env.authService.Register(services.RegisterInput{
			Name:                 name,
			Email:                email,
			Password:             "password123",
			PasswordConfirmation: "password123",
		})
		require.NoError(t, err)
		return user, token
	}

	_, aliceToken := register("Alice", "alice@x.com")
	register("Bob", "bob@x.com")

	admin, _ := register("Root", "root@x.com")
	require.NoError(t, env.userRepo.AssignRole(admin, models.RoleAdmin))
	_, adminToken, err := env.authService.Login(services.LoginInput{
		Email:    "root@x.com",
		Password: "password123",
	})
	require.NoError(t, err)

	// The admin sees every user.
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var users []dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 3)

	emails := make([]string, len(users))
	for i, u := range users {
		emails[i] = u.Email
	}
	require.Contains(t, emails, "alice@x.com")
	require.Contains(t, emails, "bob@x.com")

	// A user without view-any-user is refused with a generic message.
	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "Unauthorized")
}

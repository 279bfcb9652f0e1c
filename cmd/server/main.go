package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harukim/task-tracker-api/internal/config"
	"github.com/harukim/task-tracker-api/internal/constants"
	"github.com/harukim/task-tracker-api/internal/database"
	"github.com/harukim/task-tracker-api/internal/handlers"
	"github.com/harukim/task-tracker-api/internal/jobs"
	"github.com/harukim/task-tracker-api/internal/middleware"
	"github.com/harukim/task-tracker-api/internal/repository"
	"github.com/harukim/task-tracker-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations and seed role/permission data
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	if err := database.SeedRolesAndPermissions(database.GetDB()); err != nil {
		log.Fatalf("Failed to seed roles and permissions: %v", err)
	}
	if err := database.SeedAdminUser(database.GetDB(), cfg); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	// Initialize repositories and services
	userRepo := repository.NewUserRepository(database.GetDB())
	taskRepo := repository.NewTaskRepository(database.GetDB())
	tokenRepo := repository.NewTokenRepository(database.GetDB())

	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour
	authService := services.NewAuthService(userRepo, tokenRepo, tokenTTL)
	taskService := services.NewTaskService(taskRepo)
	userService := services.NewUserService(userRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)

	// Rate limiters: login is throttled per client IP, the API per principal
	loginLimiter := middleware.NewKeyedLimiter(constants.LoginAttemptsPerMinute)
	apiLimiter := middleware.NewKeyedLimiter(constants.APIRequestsPerMinute)

	// Background purge of expired tokens
	scheduler := jobs.StartTokenCleanup(tokenRepo)
	defer scheduler.Stop()

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Tracker API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.ThrottleLogin(loginLimiter), authHandler.Login)
			auth.GET("/profile", middleware.RequireAuth(authService), authHandler.Profile)
			auth.POST("/logout", middleware.RequireAuth(authService), authHandler.Logout)
		}

		// Account routes (protected)
		api.POST("/user/password", middleware.RequireAuth(authService), authHandler.ChangePassword)

		// Task routes (protected, rate limited)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(authService), middleware.ThrottleAPI(apiLimiter))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		// User routes (protected, admin only)
		api.GET("/users", middleware.RequireAuth(authService), middleware.ThrottleAPI(apiLimiter), userHandler.ListUsers)
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

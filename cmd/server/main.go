package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"complaint_desk_go/config"
	"complaint_desk_go/db"
	"complaint_desk_go/handlers"
	"complaint_desk_go/logger"
	"complaint_desk_go/middleware"
	"complaint_desk_go/models"
	"complaint_desk_go/services"
	"complaint_desk_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat, "complaint-desk"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Log.Fatal("failed to run migrations", zap.Error(err))
	}

	rdb, err := connectRedis(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("failed to connect to redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}
	services.InitializeDelivery(cfg, db.DB, rdb)

	e := newServer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background cleanup jobs (runs every hour)
	go jobs.RunMaintenance(ctx, db.DB, time.Hour, middleware.LoginRateLimiter, middleware.SubmissionRateLimiter)

	go func() {
		logger.Log.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("environment", cfg.Environment))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server shutdown failed", zap.Error(err))
	}
	logger.Log.Info("server stopped")
}

func newServer(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	// Middleware
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(middleware.WithConfig(cfg))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes
	auth := e.Group("/api/auth")
	auth.POST("/login", handlers.LoginHandler, middleware.LoginRateLimiter.Middleware())
	auth.POST("/register", handlers.RegisterHandler, middleware.LoginRateLimiter.Middleware())

	// Protected routes
	api := e.Group("/api")
	api.Use(middleware.RequireAuth())
	{
		api.POST("/auth/logout", handlers.LogoutHandler)
		api.GET("/me", handlers.GetCurrentUserHandler)

		submit := middleware.SubmissionRateLimiter.Middleware()
		adminOnly := middleware.RequireRole(models.RoleAdmin)
		workers := middleware.RequireRole(models.RoleStaff, models.RoleAdmin)

		api.POST("/complaints", handlers.CreateComplaintHandler, submit)
		api.GET("/complaints", handlers.ListComplaintsHandler)
		api.GET("/complaints/export", handlers.ExportComplaintsHandler, adminOnly)
		api.GET("/complaints/:id", handlers.GetComplaintHandler)
		api.PATCH("/complaints/:id", handlers.UpdateComplaintHandler, workers)
		api.DELETE("/complaints/:id", handlers.DeleteComplaintHandler, adminOnly)
		api.GET("/complaints/:id/activity", handlers.ListComplaintActivityHandler)
		api.POST("/complaints/:id/comments", handlers.AddCommentHandler, submit)
		api.GET("/complaints/:id/comments", handlers.ListCommentsHandler)

		api.GET("/notifications", handlers.GetNotificationsHandler)
		api.POST("/notifications/read-all", handlers.MarkAllNotificationsReadHandler)
		api.POST("/notifications/:id/read", handlers.MarkNotificationReadHandler)
		api.DELETE("/notifications/:id", handlers.DeleteNotificationHandler)
		api.DELETE("/notifications", handlers.DeleteAllNotificationsHandler)

		api.GET("/departments", handlers.ListDepartmentsHandler)
		api.POST("/departments", handlers.CreateDepartmentHandler, adminOnly)
		api.PUT("/departments/:id", handlers.UpdateDepartmentHandler, adminOnly)
		api.PUT("/departments/:id/staff", handlers.SetDepartmentStaffHandler, adminOnly)

		api.GET("/users", handlers.GetUsers, adminOnly)
		api.POST("/users", handlers.CreateUser, adminOnly)
		api.PUT("/users/:id/status", handlers.UpdateUserStatus, adminOnly)
	}

	return e
}

// connectRedis returns nil when no URL is configured
func connectRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Package server implements the Insightd HTTP API.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/insightd-dev/insightd/internal/auth"
	"github.com/insightd-dev/insightd/internal/config"
	"github.com/insightd-dev/insightd/internal/models"
	"github.com/insightd-dev/insightd/internal/seed"
)

// Server represents the HTTP server
type Server struct {
	router      *gin.Engine
	db          *gorm.DB
	config      *config.Config
	logger      zerolog.Logger
	validator   *validator.Validate
	asynqClient *asynq.Client
	version     string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	if err := initServerConfig(db, zlog); err != nil {
		return nil, err
	}

	if cfg.SeedFile != "" {
		if err := seed.Apply(db, cfg.SeedFile, zlog); err != nil {
			return nil, fmt.Errorf("failed to apply seed file: %w", err)
		}
	}

	// Initialize validator with a custom role validator
	validate := validator.New()
	validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case models.RoleAdmin, models.RoleUser:
			return true
		}
		return false
	})

	// Asynq client for enqueueing insight refresh tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	server := &Server{
		db:          db,
		config:      cfg,
		logger:      zlog,
		validator:   validate,
		asynqClient: asynqClient,
		version:     version,
	}

	server.setupRouter()

	return server, nil
}

// initServerConfig loads the singleton Config row, generating it (with
// a fresh JWT secret) on first start, and initializes JWT auth.
func initServerConfig(db *gorm.DB, zlog zerolog.Logger) error {
	var serverConfig models.Config
	err := db.First(&serverConfig).Error
	if err == gorm.ErrRecordNotFound {
		// First start: generate a 32-byte secret (64 hex chars)
		secretBytes := make([]byte, 32)
		if _, err := rand.Read(secretBytes); err != nil {
			return fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		serverConfig = models.Config{JWTSecret: hex.EncodeToString(secretBytes)}
		if err := db.Create(&serverConfig).Error; err != nil {
			return fmt.Errorf("failed to create server config: %w", err)
		}
		zlog.Info().Msg("Generated JWT secret on first start")
	} else if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}

	auth.InitializeJWT(serverConfig.JWTSecret)
	return nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8
		maxIdleConns    = 4
		connMaxLifetime = 300 * time.Second
		busyTimeout     = 5000
	)

	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL mode must be set first for optimal concurrency
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		"PRAGMA foreign_keys=1",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	v1 := s.router.Group("/api/v1")

	// Public endpoints (no auth required)
	v1.GET("/health", s.healthCheck)
	v1.POST("/auth/register", s.register)
	v1.POST("/auth/login", s.login)

	// Authenticated API routes (JWT required)
	authed := v1.Group("")
	authed.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		authed.GET("/auth/me", s.getCurrentUser)
		authed.PUT("/auth/me", s.updateProfile)

		authed.GET("/dashboard", s.getDashboard)
		authed.GET("/sales", s.listSales)
		authed.GET("/customers", s.listCustomers)

		authed.GET("/ai/insights", s.listInsights)

		authed.GET("/notifications", s.listNotifications)
		authed.POST("/notifications/:id/read", s.markNotificationRead)

		// Admin only
		adminRoutes := authed.Group("")
		adminRoutes.Use(AdminOnlyMiddleware(s.logger))
		{
			adminRoutes.GET("/users", s.listUsers)
			adminRoutes.POST("/users", s.createUser)
			adminRoutes.DELETE("/users/:id", s.deleteUser)
			adminRoutes.POST("/ai/insights/refresh", s.triggerInsightsRefresh)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "insightd-api",
		"version":   s.version,
	})
}

// GetDB returns the database connection for use by workers and tests
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Router returns the configured gin engine (used by tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	addr := ":" + s.config.Server.Port

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.asynqClient != nil {
		_ = s.asynqClient.Close()
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

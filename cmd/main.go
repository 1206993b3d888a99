package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/auth"
	"github.com/skillacademy/course-service/internal/cache"
	"github.com/skillacademy/course-service/internal/catalog"
	"github.com/skillacademy/course-service/internal/clients"
	"github.com/skillacademy/course-service/internal/config"
	"github.com/skillacademy/course-service/internal/handlers"
	"github.com/skillacademy/course-service/internal/logger"
	"github.com/skillacademy/course-service/internal/middlewares"
	"github.com/skillacademy/course-service/internal/repositories"
	"github.com/skillacademy/course-service/internal/services"
)

const maxRequestSize = 1 * 1024 * 1024 // 1MB; the API takes no uploads

// @title SkillAcademy Course API
// @version 1.0
// @description API for the course catalog, learning progress and lecture streaming

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token, prefixed with "Bearer "
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting SkillAcademy Course Service")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// Load the course catalog
	cat, err := catalog.Load(cfg.CoursesPath)
	if err != nil {
		logger.Logger.Fatal("Failed to load course catalog", zap.Error(err))
	}
	logger.Logger.Info("Course catalog loaded", zap.Int("courses", cat.Len()))

	// Initialize JWT token generator (for auth middleware)
	tokenGenerator := auth.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize repositories
	accessRepo := repositories.NewCourseAccessRepository(db)
	watchRepo := repositories.NewLastWatchRepository(db)
	progressRepo := repositories.NewLectureProgressRepository(db)
	skillRepo := repositories.NewSkillRepository(db)
	bookmarkRepo := repositories.NewBookmarkRepository(db)
	xpRepo := repositories.NewXPRepository(db)
	tokenRepo := repositories.NewStreamTokenRepository(redisClient)

	// Initialize the derived-value cache
	valueCache := cache.NewRedisCache(redisClient)

	// Initialize clients for internal services
	shopClient := clients.NewShopClient(cfg.Shop.BaseURL, cfg.Shop.APIKey)
	notifierClient := clients.NewNotifierClient(cfg.Tasks.BaseURL, cfg.Tasks.APIKey)
	challengesClient := clients.NewChallengesClient(cfg.Challenges.BaseURL)

	// Initialize services
	accessService := services.NewAccessService(
		cat, accessRepo, watchRepo, shopClient, shopClient, notifierClient,
		valueCache, cfg.Cache.CourseAccessTTL, logger.Logger,
	)
	progressService := services.NewProgressService(
		cat, progressRepo, skillRepo, xpRepo,
		valueCache, cfg.LectureXP, cfg.Cache.LectureProgressTTL, logger.Logger,
	)
	courseService := services.NewCourseService(cat, accessService, progressService, watchRepo, logger.Logger)
	streamService := services.NewStreamService(
		cat, tokenRepo, cfg.Media.LecturesPath, cfg.Media.PublicBaseURL,
		cfg.Media.StreamTokenTTL, cfg.Media.StreamChunkSize, logger.Logger,
	)
	viewtimeService := services.NewViewTimeService(cat, progressRepo, challengesClient, logger.Logger)
	bookmarkService := services.NewBookmarkService(skillRepo, bookmarkRepo, valueCache, logger.Logger)

	// Initialize middleware
	authMw := auth.Middleware(tokenGenerator)
	optionalAuthMw := auth.OptionalMiddleware(tokenGenerator)

	// Initialize handlers
	courseHandler := handlers.NewCourseHandler(
		cat, courseService, accessService, progressService, streamService,
		logger.Logger, authMw, optionalAuthMw,
	)
	streamHandler := handlers.NewStreamHandler(streamService, logger.Logger)
	viewtimeHandler := handlers.NewViewTimeHandler(viewtimeService, logger.Logger, authMw)
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkService, logger.Logger, authMw)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(maxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		courseHandler.RegisterRoutes(r)
		streamHandler.RegisterRoutes(r)
		viewtimeHandler.RegisterRoutes(r)
		bookmarkHandler.RegisterRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // Covers large streaming chunks
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	// Use a service-specific migration table name to avoid conflicts
	// with other services sharing the database
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "course_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

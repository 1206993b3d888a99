// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	Server     ServerConfig
	Logging    LoggingConfig
	CORS       CORSConfig
	JWT        JWTConfig
	Shop       ServiceConfig
	Tasks      ServiceConfig
	Challenges ServiceConfig
	Media      MediaConfig
	Cache      CacheConfig

	// CoursesPath is the directory holding the course catalog JSON files
	CoursesPath string

	// LectureXP is the experience awarded per associated skill when a
	// lecture is completed
	LectureXP int
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// ServiceConfig holds connection settings for an internal service
type ServiceConfig struct {
	BaseURL string
	APIKey  string
}

// MediaConfig holds lecture media settings
type MediaConfig struct {
	// LecturesPath is the root directory of mp4 lecture files,
	// laid out as <root>/<courseID>/<lectureID>.mp4
	LecturesPath string

	// PublicBaseURL is the externally reachable base URL used in
	// generated streaming links
	PublicBaseURL string

	// StreamTokenTTL is the lifetime of a streaming token
	StreamTokenTTL time.Duration

	// StreamChunkSize is the maximum number of bytes served per range request
	StreamChunkSize int64
}

// CacheConfig holds TTLs of the derived-value cache namespaces
type CacheConfig struct {
	CourseAccessTTL    time.Duration
	LectureProgressTTL time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPort, err := getEnvInt("DB_PORT", 3306)
	if err != nil {
		return nil, err
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Redis configuration
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		return nil, fmt.Errorf("REDIS_HOST is required")
	}
	cfg.Redis.Host = redisHost

	redisPort, err := getEnvInt("REDIS_PORT", 6379)
	if err != nil {
		return nil, err
	}
	cfg.Redis.Port = redisPort
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = redisDB

	// Server configuration
	serverPort, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	// CORS configuration
	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if origins == "" {
		origins = "*"
	}
	cfg.CORS.AllowedOrigins = strings.Split(origins, ",")

	// JWT configuration
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.AccessTokenExpiry, err = getEnvDuration("JWT_ACCESS_TOKEN_EXPIRY", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	// Internal services
	cfg.Shop.BaseURL = os.Getenv("SHOP_BASE_URL")
	if cfg.Shop.BaseURL == "" {
		return nil, fmt.Errorf("SHOP_BASE_URL is required")
	}
	cfg.Shop.APIKey = os.Getenv("SHOP_API_KEY")

	cfg.Tasks.BaseURL = os.Getenv("TASKS_BASE_URL")
	cfg.Tasks.APIKey = os.Getenv("TASKS_API_KEY")

	cfg.Challenges.BaseURL = os.Getenv("CHALLENGES_BASE_URL")
	if cfg.Challenges.BaseURL == "" {
		return nil, fmt.Errorf("CHALLENGES_BASE_URL is required")
	}

	// Media configuration
	cfg.Media.LecturesPath = os.Getenv("MEDIA_LECTURES_PATH")
	if cfg.Media.LecturesPath == "" {
		return nil, fmt.Errorf("MEDIA_LECTURES_PATH is required")
	}
	cfg.Media.PublicBaseURL = os.Getenv("PUBLIC_BASE_URL")
	if cfg.Media.PublicBaseURL == "" {
		cfg.Media.PublicBaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	cfg.Media.StreamTokenTTL, err = getEnvDuration("STREAM_TOKEN_TTL", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	chunkSize, err := getEnvInt("STREAM_CHUNK_SIZE", 4<<20)
	if err != nil {
		return nil, err
	}
	cfg.Media.StreamChunkSize = int64(chunkSize)

	// Cache configuration
	cfg.Cache.CourseAccessTTL, err = getEnvDuration("CACHE_COURSE_ACCESS_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.Cache.LectureProgressTTL, err = getEnvDuration("CACHE_LECTURE_PROGRESS_TTL", time.Minute)
	if err != nil {
		return nil, err
	}

	// Catalog
	cfg.CoursesPath = os.Getenv("COURSES_PATH")
	if cfg.CoursesPath == "" {
		return nil, fmt.Errorf("COURSES_PATH is required")
	}

	cfg.LectureXP, err = getEnvInt("LECTURE_XP", 10)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// DSN returns the MySQL data source name
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the Redis host:port address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// getEnvInt reads an integer environment variable with a default
func getEnvInt(key string, def int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// getEnvDuration reads a duration environment variable with a default
func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

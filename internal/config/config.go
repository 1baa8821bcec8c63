package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/eventtime"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/database"
	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	EventTime eventtime.Options
	Jobs      JobsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name               string
	Version            string
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

// JobsConfig controls the background scheduler.
type JobsConfig struct {
	Enabled         bool
	AutoCloseEvery  time.Duration
	AutoCloseGrace  time.Duration
	ShutdownTimeout time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "shift_payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
	if config.Database.MaxConns, err = getEnvInt("DB_MAX_CONNS", 25); err != nil {
		return nil, err
	}
	if config.Database.MinConns, err = getEnvInt("DB_MIN_CONNS", 5); err != nil {
		return nil, err
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:               getEnv("APP_NAME", "shift-payroll"),
		Version:            getEnv("APP_VERSION", "v1.0.0"),
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Event time trust windows
	defaults := eventtime.DefaultOptions()
	if config.EventTime.MaxPastHours, err = getEnvInt("EVENT_TIME_MAX_PAST_HOURS", defaults.MaxPastHours); err != nil {
		return nil, err
	}
	if config.EventTime.MaxFutureMinutes, err = getEnvInt("EVENT_TIME_MAX_FUTURE_MINUTES", defaults.MaxFutureMinutes); err != nil {
		return nil, err
	}
	if config.EventTime.HighTrustSkewMinutes, err = getEnvInt("EVENT_TIME_HIGH_TRUST_SKEW_MINUTES", defaults.HighTrustSkewMinutes); err != nil {
		return nil, err
	}

	// Jobs
	config.Jobs.Enabled = getEnv("JOBS_ENABLED", "true") == "true"
	if config.Jobs.AutoCloseEvery, err = getEnvDuration("AUTO_CLOSE_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if config.Jobs.AutoCloseGrace, err = getEnvDuration("AUTO_CLOSE_GRACE", 2*time.Hour); err != nil {
		return nil, err
	}
	if config.Jobs.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.EventTime.MaxPastHours <= 0 || c.EventTime.MaxFutureMinutes < 0 || c.EventTime.HighTrustSkewMinutes < 0 {
		return fmt.Errorf("EVENT_TIME_* windows must not be negative and max past hours must be positive")
	}
	if c.Jobs.AutoCloseEvery <= 0 {
		return fmt.Errorf("AUTO_CLOSE_INTERVAL must be positive")
	}
	if c.Jobs.AutoCloseGrace < 0 {
		return fmt.Errorf("AUTO_CLOSE_GRACE must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// PoolOptions returns the pgx pool settings for the configured database.
func (c *Config) PoolOptions() database.PoolOptions {
	opts := database.DefaultPoolOptions()
	opts.MaxConns = int32(c.Database.MaxConns)
	opts.MinConns = int32(c.Database.MinConns)
	return opts
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

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

	"github.com/joho/godotenv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/retry"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workday"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

// AttendanceConfig holds the day-boundary and reconciliation settings
type AttendanceConfig struct {
	TimezoneName   string
	TimezoneOffset string // "+05:30"
	Cutoff         string // "HH:MM"
	AutoLogoutCron string
	MaxAttempts    int
	Backoff        time.Duration
	MaxBackoff     time.Duration
	Workers        int
	CronSecret     string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		slog.Info("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance configuration
	maxAttempts, err := strconv.Atoi(getEnv("AUTO_LOGOUT_MAX_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_LOGOUT_MAX_ATTEMPTS: %w", err)
	}
	backoff, err := time.ParseDuration(getEnv("AUTO_LOGOUT_BACKOFF", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_LOGOUT_BACKOFF: %w", err)
	}
	maxBackoff, err := time.ParseDuration(getEnv("AUTO_LOGOUT_MAX_BACKOFF", "4s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_LOGOUT_MAX_BACKOFF: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("AUTO_LOGOUT_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_LOGOUT_WORKERS: %w", err)
	}

	config.Attendance = AttendanceConfig{
		TimezoneName:   getEnv("ATTENDANCE_TZ_NAME", "IST"),
		TimezoneOffset: getEnv("ATTENDANCE_TZ_OFFSET", "+05:30"),
		Cutoff:         getEnv("ATTENDANCE_CUTOFF", "23:59"),
		AutoLogoutCron: getEnv("AUTO_LOGOUT_CRON", "0 59 23 * * *"),
		MaxAttempts:    maxAttempts,
		Backoff:        backoff,
		MaxBackoff:     maxBackoff,
		Workers:        workers,
		CronSecret:     getEnv("CRON_SECRET", ""),
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
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid ATTENDANCE_TZ_OFFSET: %w", err)
	}
	if _, _, err := workday.ParseCutoff(c.Attendance.Cutoff); err != nil {
		return fmt.Errorf("invalid ATTENDANCE_CUTOFF: %w", err)
	}
	if c.Attendance.MaxAttempts < 1 {
		return fmt.Errorf("AUTO_LOGOUT_MAX_ATTEMPTS must be at least 1")
	}
	if c.Attendance.Backoff < 0 || c.Attendance.MaxBackoff < c.Attendance.Backoff {
		return fmt.Errorf("AUTO_LOGOUT_MAX_BACKOFF must not be less than AUTO_LOGOUT_BACKOFF")
	}
	if c.Attendance.Workers < 1 {
		return fmt.Errorf("AUTO_LOGOUT_WORKERS must be at least 1")
	}
	return nil
}

// Location returns the fixed civil timezone attendance days are computed in.
func (c *Config) Location() (*time.Location, error) {
	return workday.FixedZone(c.Attendance.TimezoneName, c.Attendance.TimezoneOffset)
}

// Resolver builds the day-boundary resolver on the system clock.
func (c *Config) Resolver() (*workday.Resolver, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	hour, minute, err := workday.ParseCutoff(c.Attendance.Cutoff)
	if err != nil {
		return nil, err
	}
	return workday.NewResolver(loc, hour, minute, workday.SystemClock), nil
}

// RetryPolicy returns the per-record retry policy of the auto-logout job.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:    c.Attendance.MaxAttempts,
		InitialBackoff: c.Attendance.Backoff,
		MaxBackoff:     c.Attendance.MaxBackoff,
	}
}

// LogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// PoolOptions returns the pgx pool sizing.
func (c *Config) PoolOptions() database.PoolOptions {
	return database.PoolOptions{MaxConns: c.Database.MaxConns, MinConns: c.Database.MinConns}
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

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env, fallback string) []string {
	value := getEnv(env, fallback)
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

package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	Port     string
	LogLevel string

	// Database
	DatabaseURL string

	// Redis. Empty keeps the cache and revocation list in process memory.
	RedisURL       string
	RedisNamespace string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// HTTP
	CORSOrigin      string
	ShutdownTimeout time.Duration
}

// Load loads configuration from environment variables, reading .env first when present.
// Required values are checked by the Require* methods of the commands that need them.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:       getEnv("REDIS_URL", ""),
		RedisNamespace: getEnv("REDIS_NAMESPACE", "promptshelf"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getDurationEnv("TOKEN_TTL", time.Hour),

		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	return cfg
}

// RequireDatabase reports an error when no database is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL not set")
	}
	return nil
}

// RequireSecret reports an error when no token secret is configured.
func (c *Config) RequireSecret() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET not set")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

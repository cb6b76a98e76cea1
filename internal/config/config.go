package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendNone      = "none"
	BackendFirestore = "firestore"
	BackendRedis     = "redis"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Store selection
	StoreBackend            string
	FirestoreProjectID      string
	FirebaseCredentialsFile string
	DatabaseURL             string
	RedisURL                string
	SQLitePath              string

	// HTTP surface
	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	// Rate limiting
	RateLimitEnabled   bool
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
	AutoBlockEnabled   bool     // Enable auto-blocking after repeated violations
}

// Load reads configuration from environment variables.
// A .env file is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds and validates a Config from the current environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                    getEnv("PORT", "8001"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		StoreBackend:            strings.ToLower(strings.TrimSpace(os.Getenv("STORE_BACKEND"))),
		FirestoreProjectID:      os.Getenv("FIRESTORE_PROJECT_ID"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		RedisURL:                os.Getenv("REDIS_URL"),
		SQLitePath:              getEnv("SQLITE_PATH", "./data/sharenear.db"),
		CORSAllowedOrigins:      splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitEnabled:        getEnv("RATE_LIMIT_ENABLED", "false") == "true",
		RateLimitWhitelist:      splitList(os.Getenv("RATE_LIMIT_WHITELIST")),
		AutoBlockEnabled:        getEnv("AUTO_BLOCK_ENABLED", "false") == "true",
	}

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "65536"), 10, 64)
	if err != nil || maxBody <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be a positive integer")
	}
	cfg.MaxBodyBytes = maxBody

	if cfg.StoreBackend == "" && cfg.IsDevelopment() {
		cfg.StoreBackend = BackendSQLite
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected store backend has everything it needs.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "":
		return errors.New("STORE_BACKEND is required outside development (firestore, redis, postgres, sqlite or none)")
	case BackendNone:
	case BackendFirestore:
		if c.FirestoreProjectID == "" {
			return errors.New("FIRESTORE_PROJECT_ID is required for the firestore backend")
		}
		if c.FirebaseCredentialsFile != "" {
			if _, err := os.Stat(c.FirebaseCredentialsFile); err != nil {
				return fmt.Errorf("FIREBASE_CREDENTIALS_FILE %q is not readable: %w", c.FirebaseCredentialsFile, err)
			}
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.RateLimitEnabled && c.AutoBlockEnabled && c.RedisURL == "" {
		return errors.New("AUTO_BLOCK_ENABLED requires REDIS_URL")
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return errors.New("CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// SharedRateLimit reports whether rate limits are kept in Redis, shared by
// every instance, rather than in process memory.
func (c *Config) SharedRateLimit() bool {
	return c.RateLimitEnabled && c.RedisURL != ""
}

// StoreEnabled reports whether a store backend is configured.
func (c *Config) StoreEnabled() bool {
	return c.StoreBackend != BackendNone
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList parses a comma-separated list, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

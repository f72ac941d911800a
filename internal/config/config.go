package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Backend selects the ledger store implementation.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

// Config holds the process configuration, loaded from environment
// variables with local-run defaults.
type Config struct {
	// HTTP server
	Port string

	// Storage
	Backend   Backend
	DBConnStr string

	// Logging
	LogLevel slog.Level
}

// Load reads the configuration from the environment.
func Load() *Config {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		Backend:   Backend(getEnv("STORAGE_BACKEND", string(BackendPostgres))),
		DBConnStr: os.Getenv("DB_CONN_STR"),
		LogLevel:  parseLevel(getEnv("LOG_LEVEL", "info")),
	}

	if cfg.DBConnStr == "" {
		// Build the connection string from individual vars (Docker friendly).
		host := getEnv("DB_HOST", "localhost")
		port := getEnv("DB_PORT", "5432")
		user := getEnv("DB_USER", "postgres")
		password := getEnv("DB_PASSWORD", "postgres")
		dbname := getEnv("DB_NAME", "bucketeer")

		cfg.DBConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case BackendPostgres, BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid storage backend %q: must be %q or %q", c.Backend, BackendPostgres, BackendMemory))
	}

	if c.Backend == BackendPostgres && c.DBConnStr == "" {
		problems = append(problems, "database connection string cannot be empty with the postgres backend")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

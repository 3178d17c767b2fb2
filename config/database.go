package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultDBPath        = "./data/results.db"
	defaultConnTimeout   = "30s"
	defaultMaxOpenConns  = 25
	defaultMaxIdleConns  = 25

	envDBPath         = "DB_PATH"
	envDBConnTimeout  = "DB_CONN_TIMEOUT"
	envDBMaxOpenConns = "DB_MAX_OPEN_CONNS"
	envDBMaxIdleConns = "DB_MAX_IDLE_CONNS"

	maxConnTimeout = 300 * time.Second
	minConnTimeout = 1 * time.Second
)

// DatabaseConfig is the sqlite backend for the result store (gorm.io/gorm +
// gorm.io/driver/sqlite): every accepted optimization result is persisted
// here for later retrieval.
type DatabaseConfig struct {
	Path         string
	ConnTimeout  time.Duration
	MaxOpenConns int
	MaxIdleConns int
}

// LoadDatabaseConfig loads the result-store database configuration from
// environment variables with secure defaults.
func LoadDatabaseConfig() (DatabaseConfig, error) {
	cfg := DatabaseConfig{
		Path: getEnvOrDefault(envDBPath, defaultDBPath),
	}

	timeoutStr := getEnvOrDefault(envDBConnTimeout, defaultConnTimeout)
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid connection timeout: %s", timeoutStr)
	}
	cfg.ConnTimeout = timeout

	cfg.MaxOpenConns = getEnvIntOrDefault(envDBMaxOpenConns, defaultMaxOpenConns)
	cfg.MaxIdleConns = getEnvIntOrDefault(envDBMaxIdleConns, defaultMaxIdleConns)

	if err := ValidateDatabaseConfig(cfg); err != nil {
		return DatabaseConfig{}, fmt.Errorf("database configuration validation failed: %w", err)
	}
	return cfg, nil
}

// ValidateDatabaseConfig ensures all required fields are present and valid.
func ValidateDatabaseConfig(cfg DatabaseConfig) error {
	if strings.TrimSpace(cfg.Path) == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if cfg.ConnTimeout < minConnTimeout || cfg.ConnTimeout > maxConnTimeout {
		return fmt.Errorf("connection timeout must be between %v and %v", minConnTimeout, maxConnTimeout)
	}
	if cfg.MaxOpenConns < 1 {
		return fmt.Errorf("max open connections must be at least 1")
	}
	if cfg.MaxIdleConns < 1 {
		return fmt.Errorf("max idle connections must be at least 1")
	}
	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		return fmt.Errorf("max idle connections (%d) cannot be greater than max open connections (%d)",
			cfg.MaxIdleConns, cfg.MaxOpenConns)
	}
	return nil
}

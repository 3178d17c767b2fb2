package config

import (
	"fmt"
	"os"
	"time"
)

const (
	defaultRedisHost    = "localhost"
	defaultRedisPort    = 6379
	defaultRedisDB      = 0
	defaultRedisConnTO  = 5 * time.Second
	defaultRedisReadTO  = 3 * time.Second
	defaultRedisWriteTO = 3 * time.Second
	defaultMaxRetries   = 3
	defaultPoolSize     = 10

	minPort         = 1
	maxPort         = 65535
	maxRedisTimeout = 30 * time.Second
	minPoolSize     = 5
	maxPoolSize     = 1000
	minRetries      = 1
	maxRetries      = 10
	minPasswordLen  = 8

	// DefaultTemplateCacheTTL is how long a generated period-template set
	// stays cached before the template cache regenerates it.
	DefaultTemplateCacheTTL = 24 * time.Hour
)

// RedisConfig is the template cache backend (go-redis/redis/v8): a
// throughput optimization over Generate, never a correctness dependency.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	ConnTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxRetries   int
	PoolSize     int
	TemplateTTL  time.Duration
}

// LoadRedisConfig loads the template cache's Redis configuration from
// environment variables.
func LoadRedisConfig() (RedisConfig, error) {
	cfg := RedisConfig{
		Host:         getEnvOrDefault("REDIS_HOST", defaultRedisHost),
		Port:         getEnvIntOrDefault("REDIS_PORT", defaultRedisPort),
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           getEnvIntOrDefault("REDIS_DB", defaultRedisDB),
		ConnTimeout:  getDurationOrDefault("REDIS_CONN_TIMEOUT", defaultRedisConnTO),
		ReadTimeout:  getDurationOrDefault("REDIS_READ_TIMEOUT", defaultRedisReadTO),
		WriteTimeout: getDurationOrDefault("REDIS_WRITE_TIMEOUT", defaultRedisWriteTO),
		MaxRetries:   getEnvIntOrDefault("REDIS_MAX_RETRIES", defaultMaxRetries),
		PoolSize:     getEnvIntOrDefault("REDIS_POOL_SIZE", defaultPoolSize),
		TemplateTTL:  getDurationOrDefault("REDIS_TEMPLATE_TTL_SECONDS", DefaultTemplateCacheTTL),
	}

	if err := ValidateRedisConfig(cfg); err != nil {
		return RedisConfig{}, fmt.Errorf("failed to validate Redis configuration: %w", err)
	}
	return cfg, nil
}

// ValidateRedisConfig performs comprehensive validation of Redis
// configuration values.
func ValidateRedisConfig(cfg RedisConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("Redis host cannot be empty")
	}
	if cfg.Port < minPort || cfg.Port > maxPort {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if cfg.DB < 0 {
		return fmt.Errorf("Redis database number cannot be negative")
	}
	if cfg.Password != "" && len(cfg.Password) < minPasswordLen {
		return fmt.Errorf("Redis password must be at least 8 characters long")
	}
	if err := validateRedisTimeout("connection", cfg.ConnTimeout); err != nil {
		return err
	}
	if err := validateRedisTimeout("read", cfg.ReadTimeout); err != nil {
		return err
	}
	if err := validateRedisTimeout("write", cfg.WriteTimeout); err != nil {
		return err
	}
	if cfg.PoolSize < minPoolSize || cfg.PoolSize > maxPoolSize {
		return fmt.Errorf("Redis pool size must be between 5 and 1000")
	}
	if cfg.MaxRetries < minRetries || cfg.MaxRetries > maxRetries {
		return fmt.Errorf("Redis max retries must be between 1 and 10")
	}
	return nil
}

func validateRedisTimeout(timeoutType string, timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("Redis %s timeout must be positive", timeoutType)
	}
	if timeout > maxRedisTimeout {
		return fmt.Errorf("Redis %s timeout exceeds maximum allowed value", timeoutType)
	}
	return nil
}

// Package config loads and validates the cultivation planner's runtime
// configuration: the service-level envelope (environment, version, feature
// flags), the optimizer's algorithm parameters, and the storage/cache
// backends the orchestrator's supporting infrastructure uses.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	defaultEnvironment = "development"
	defaultServiceName = "cultivation-planner"
	defaultVersion     = "1.0.0"
	envEnvironment     = "ENV"
	envServiceName     = "SERVICE_NAME"
	envVersion         = "VERSION"
	envFeatureFlags    = "FEATURE_FLAGS"
)

var validEnvironments = []string{"development", "staging", "production"}

// ServiceConfig is the complete runtime configuration: ambient concerns
// (environment, logging inputs) plus the optimizer and its supporting
// storage/cache backends.
type ServiceConfig struct {
	Environment  string
	ServiceName  string
	Version      string
	FeatureFlags map[string]bool

	Optimizer OptimizerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
}

// LoadConfig loads the complete service configuration from environment
// variables, applying defaults and validating every section.
func LoadConfig() (*ServiceConfig, error) {
	cfg := &ServiceConfig{}

	cfg.Environment = strings.ToLower(getEnvOrDefault(envEnvironment, defaultEnvironment))
	if !isValidEnvironment(cfg.Environment) {
		return nil, fmt.Errorf("invalid environment %q: must be one of %v", cfg.Environment, validEnvironments)
	}

	cfg.ServiceName = getEnvOrDefault(envServiceName, defaultServiceName)

	version := getEnvOrDefault(envVersion, defaultVersion)
	if _, err := semver.NewVersion(version); err != nil {
		return nil, fmt.Errorf("invalid version format %q: must be semantic version", version)
	}
	cfg.Version = version

	optimizerCfg, err := LoadOptimizerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load optimizer configuration: %w", err)
	}
	cfg.Optimizer = optimizerCfg

	dbCfg, err := LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}
	cfg.Database = dbCfg

	redisCfg, err := LoadRedisConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load Redis configuration: %w", err)
	}
	cfg.Redis = redisCfg

	if flags := os.Getenv(envFeatureFlags); flags != "" {
		parsed, err := parseFeatureFlags(flags)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feature flags: %w", err)
		}
		cfg.FeatureFlags = parsed
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ValidateConfig performs comprehensive validation of the complete
// configuration.
func ValidateConfig(cfg *ServiceConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if !isValidEnvironment(cfg.Environment) {
		return fmt.Errorf("invalid environment %q", cfg.Environment)
	}
	if strings.TrimSpace(cfg.ServiceName) == "" {
		return fmt.Errorf("service name cannot be empty")
	}
	if _, err := semver.NewVersion(cfg.Version); err != nil {
		return fmt.Errorf("invalid version format: %w", err)
	}
	if err := ValidateOptimizerConfig(cfg.Optimizer); err != nil {
		return fmt.Errorf("optimizer configuration invalid: %w", err)
	}
	if err := ValidateDatabaseConfig(cfg.Database); err != nil {
		return fmt.Errorf("database configuration invalid: %w", err)
	}
	if err := ValidateRedisConfig(cfg.Redis); err != nil {
		return fmt.Errorf("Redis configuration invalid: %w", err)
	}
	return nil
}

func isValidEnvironment(env string) bool {
	for _, valid := range validEnvironments {
		if env == valid {
			return true
		}
	}
	return false
}

func parseFeatureFlags(flags string) (map[string]bool, error) {
	result := make(map[string]bool)
	for _, pair := range strings.Split(flags, ",") {
		kv := strings.Split(strings.TrimSpace(pair), "=")
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid feature flag format: %s", pair)
		}
		key := strings.TrimSpace(kv[0])
		value := strings.ToLower(strings.TrimSpace(kv[1]))
		if key == "" {
			return nil, fmt.Errorf("empty feature flag key")
		}
		switch value {
		case "true":
			result[key] = true
		case "false":
			result[key] = false
		default:
			return nil, fmt.Errorf("invalid feature flag value: %s", value)
		}
	}
	return result, nil
}

// getEnvOrDefault retrieves an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

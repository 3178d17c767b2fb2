package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CandidateGenerationStrategy selects how candidates are produced.
type CandidateGenerationStrategy string

const (
	StrategyPeriodTemplate CandidateGenerationStrategy = "period_template"
	StrategyCandidatePool  CandidateGenerationStrategy = "candidate_pool"
)

// BaseAlgorithm selects the base solver.
type BaseAlgorithm string

const (
	AlgorithmGreedy BaseAlgorithm = "greedy"
	AlgorithmDP     BaseAlgorithm = "dp"
)

// TemplateLimits caps the number of templates per crop each base solver
// consumes.
type TemplateLimits struct {
	Greedy int
	DP     int
}

// OptimizerConfig enumerates every tunable named in the configuration
// surface: candidate generation, solver selection, local search and ALNS
// parameters, pruning thresholds, and the soft wall-clock cap.
type OptimizerConfig struct {
	CandidateGenerationStrategy CandidateGenerationStrategy
	MaxTemplatesPerCrop         int
	TemplateLimits              TemplateLimits
	Algorithm                   BaseAlgorithm

	EnableLocalSearch        bool
	MaxLocalSearchIterations int
	MaxNeighborsPerIteration int
	EnableNeighborSampling   bool
	OperatorWeights          map[string]float64

	EnableALNS        bool
	ALNSIterations    int
	ALNSRemovalRate   float64

	MaxComputationTime time.Duration
	AreaLevels         []float64

	MinProfitRateThreshold        float64
	EnableCandidateFiltering      bool
	EnableParallelCandidateGen    bool
	RandomSeed                    int64
}

// DefaultOperatorWeights gives every C8 neighborhood operator equal
// sampling probability, the "uniform" default the configuration surface
// names.
func DefaultOperatorWeights() map[string]float64 {
	return map[string]float64{
		"field_move":  1,
		"field_swap":  1,
		"crop_change": 1,
		"crop_insert": 1,
		"period_shift": 1,
		"area_adjust": 1,
		"remove":      1,
	}
}

// LoadOptimizerConfig loads the optimizer's configuration from environment
// variables, falling back to the defaults from the configuration surface.
func LoadOptimizerConfig() (OptimizerConfig, error) {
	cfg := OptimizerConfig{
		CandidateGenerationStrategy: CandidateGenerationStrategy(getEnvOrDefault("OPTIMIZER_CANDIDATE_STRATEGY", string(StrategyPeriodTemplate))),
		MaxTemplatesPerCrop:         getEnvIntOrDefault("OPTIMIZER_MAX_TEMPLATES_PER_CROP", 200),
		TemplateLimits: TemplateLimits{
			Greedy: getEnvIntOrDefault("OPTIMIZER_TEMPLATE_LIMIT_GREEDY", 50),
			DP:     getEnvIntOrDefault("OPTIMIZER_TEMPLATE_LIMIT_DP", 200),
		},
		Algorithm: BaseAlgorithm(getEnvOrDefault("OPTIMIZER_ALGORITHM", string(AlgorithmDP))),

		EnableLocalSearch:        getEnvBoolOrDefault("OPTIMIZER_ENABLE_LOCAL_SEARCH", true),
		MaxLocalSearchIterations: getEnvIntOrDefault("OPTIMIZER_MAX_LOCAL_SEARCH_ITERATIONS", 100),
		MaxNeighborsPerIteration: getEnvIntOrDefault("OPTIMIZER_MAX_NEIGHBORS_PER_ITERATION", 200),
		EnableNeighborSampling:   getEnvBoolOrDefault("OPTIMIZER_ENABLE_NEIGHBOR_SAMPLING", true),
		OperatorWeights:          DefaultOperatorWeights(),

		EnableALNS:      getEnvBoolOrDefault("OPTIMIZER_ENABLE_ALNS", false),
		ALNSIterations:  getEnvIntOrDefault("OPTIMIZER_ALNS_ITERATIONS", 200),
		ALNSRemovalRate: getEnvFloatOrDefault("OPTIMIZER_ALNS_REMOVAL_RATE", 0.3),

		MaxComputationTime: getDurationOrDefault("OPTIMIZER_MAX_COMPUTATION_TIME", 60*time.Second),
		AreaLevels:         []float64{0.25, 0.5, 0.75, 1.0},

		MinProfitRateThreshold:     getEnvFloatOrDefault("OPTIMIZER_MIN_PROFIT_RATE_THRESHOLD", -0.5),
		EnableCandidateFiltering:   getEnvBoolOrDefault("OPTIMIZER_ENABLE_CANDIDATE_FILTERING", true),
		EnableParallelCandidateGen: getEnvBoolOrDefault("OPTIMIZER_ENABLE_PARALLEL_CANDIDATE_GENERATION", false),
		RandomSeed:                 int64(getEnvIntOrDefault("OPTIMIZER_RANDOM_SEED", 0)),
	}

	if levels := os.Getenv("OPTIMIZER_AREA_LEVELS"); levels != "" {
		parsed, err := parseFloatList(levels)
		if err != nil {
			return OptimizerConfig{}, fmt.Errorf("invalid OPTIMIZER_AREA_LEVELS: %w", err)
		}
		cfg.AreaLevels = parsed
	}

	if err := ValidateOptimizerConfig(cfg); err != nil {
		return OptimizerConfig{}, err
	}
	return cfg, nil
}

// ValidateOptimizerConfig checks every field against the constraints the
// configuration surface implies (positive caps, a removal rate in (0, 1),
// area levels in (0, 1], a known strategy/algorithm name).
func ValidateOptimizerConfig(cfg OptimizerConfig) error {
	if cfg.CandidateGenerationStrategy != StrategyPeriodTemplate && cfg.CandidateGenerationStrategy != StrategyCandidatePool {
		return fmt.Errorf("unknown candidate_generation_strategy %q", cfg.CandidateGenerationStrategy)
	}
	if cfg.Algorithm != AlgorithmGreedy && cfg.Algorithm != AlgorithmDP {
		return fmt.Errorf("unknown algorithm %q: must be greedy or dp", cfg.Algorithm)
	}
	if cfg.MaxTemplatesPerCrop <= 0 {
		return fmt.Errorf("max_templates_per_crop must be positive, got %d", cfg.MaxTemplatesPerCrop)
	}
	if cfg.TemplateLimits.Greedy <= 0 || cfg.TemplateLimits.DP <= 0 {
		return fmt.Errorf("template_limits.greedy and template_limits.dp must be positive")
	}
	if cfg.MaxLocalSearchIterations < 0 {
		return fmt.Errorf("max_local_search_iterations cannot be negative")
	}
	if cfg.MaxNeighborsPerIteration <= 0 {
		return fmt.Errorf("max_neighbors_per_iteration must be positive")
	}
	if cfg.ALNSIterations < 0 {
		return fmt.Errorf("alns_iterations cannot be negative")
	}
	if cfg.ALNSRemovalRate <= 0 || cfg.ALNSRemovalRate >= 1 {
		return fmt.Errorf("alns_removal_rate must be in (0, 1), got %f", cfg.ALNSRemovalRate)
	}
	if cfg.MaxComputationTime <= 0 {
		return fmt.Errorf("max_computation_time_seconds must be positive")
	}
	if len(cfg.AreaLevels) == 0 {
		return fmt.Errorf("area_levels cannot be empty")
	}
	for _, level := range cfg.AreaLevels {
		if level <= 0 || level > 1 {
			return fmt.Errorf("area_levels entries must be in (0, 1], got %f", level)
		}
	}
	return nil
}

func parseFloatList(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

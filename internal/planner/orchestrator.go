// Package planner implements the orchestrator (C10): the single composition
// root that strings together candidate generation, a base solver, and an
// optional improvement pass into one optimize(request) -> OptimizationResult
// entry point.
package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/urban-gardening-assistant/cultivation-planner/config"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/allocation"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/periods"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver/alns"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver/dp"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver/greedy"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver/localsearch"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/sources"
)

var optimizationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "cultivation_planner_optimize_latency_seconds",
	Help:    "Latency of one orchestrator optimize() run",
	Buckets: prometheus.LinearBuckets(0, 1, 10),
}, []string{"algorithm"})

func init() {
	prometheus.MustRegister(optimizationLatency)
}

// PlanRequest names the planning horizon the orchestrator generates period
// templates over; everything else (fields, crops, weather, rules) comes
// from the wired collaborator sources.
type PlanRequest struct {
	HorizonStart time.Time
	HorizonEnd   time.Time
}

// Orchestrator wires collaborator sources and an OptimizerConfig into one
// Optimize entry point: a constructor that validates its dependencies, and
// a single method that composes already-built sub-components.
type Orchestrator struct {
	fields    sources.FieldSource
	crops     sources.CropSource
	weather   sources.WeatherSource
	rules     sources.InteractionRuleSource
	optimizer config.OptimizerConfig
}

// NewOrchestrator validates that the field, crop and weather sources are
// present before returning a usable Orchestrator; a nil rule source is
// replaced by an empty one.
func NewOrchestrator(fields sources.FieldSource, crops sources.CropSource, weather sources.WeatherSource, rules sources.InteractionRuleSource, optimizer config.OptimizerConfig) (*Orchestrator, error) {
	if fields == nil || crops == nil || weather == nil {
		return nil, fmt.Errorf("field, crop and weather sources are required")
	}
	if rules == nil {
		rules = sources.StaticInteractionRuleSource{}
	}
	return &Orchestrator{fields: fields, crops: crops, weather: weather, rules: rules, optimizer: optimizer}, nil
}

// Optimize runs candidate generation, the configured base solver, and the
// configured improvement pass (if any), returning a fully-populated
// OptimizationResult. A FeasibilityExhausted outcome (no candidate ever
// satisfies the constraints) is reported as a zero-allocation result, not
// an error.
func (o *Orchestrator) Optimize(ctx context.Context, req PlanRequest) (domain.OptimizationResult, error) {
	start := time.Now()
	deadline := start.Add(o.optimizer.MaxComputationTime)

	fields, err := o.fields.Fields(ctx)
	if err != nil {
		return domain.OptimizationResult{}, fmt.Errorf("%w: reading fields: %v", domain.ErrInputError, err)
	}
	crops, err := o.crops.Crops(ctx)
	if err != nil {
		return domain.OptimizationResult{}, fmt.Errorf("%w: reading crops: %v", domain.ErrInputError, err)
	}
	weather, err := o.weather.Weather(ctx)
	if err != nil {
		return domain.OptimizationResult{}, fmt.Errorf("%w: reading weather: %v", domain.ErrInputError, err)
	}
	rules, err := o.rules.Rules(ctx)
	if err != nil {
		return domain.OptimizationResult{}, fmt.Errorf("%w: reading interaction rules: %v", domain.ErrInputError, err)
	}

	for i := range fields {
		if err := fields[i].Validate(); err != nil {
			return domain.OptimizationResult{}, err
		}
	}

	pool := periods.NewPool()
	for ci := range crops {
		crop := &crops[ci]
		templates, err := periods.Generate(crop, weather, req.HorizonStart, req.HorizonEnd)
		if err != nil {
			return domain.OptimizationResult{}, err
		}
		ranked := periods.RankAndTruncate(templates, o.optimizer.MaxTemplatesPerCrop)
		pool.Add(crop.CropID, ranked)
	}

	algorithmName := string(o.optimizer.Algorithm)
	timer := prometheus.NewTimer(optimizationLatency.WithLabelValues(algorithmName))
	defer timer.ObserveDuration()

	topK := o.optimizer.TemplateLimits.Greedy
	if o.optimizer.Algorithm == config.AlgorithmDP {
		topK = o.optimizer.TemplateLimits.DP
	}
	candidates := solver.BuildCandidates(fields, crops, pool, o.optimizer.AreaLevels, topK)
	if o.optimizer.EnableCandidateFiltering {
		candidates = solver.FilterByProfitRate(candidates, o.optimizer.MinProfitRateThreshold)
	}

	var partial *allocation.PartialSolution
	timeLimitReached := false
	switch o.optimizer.Algorithm {
	case config.AlgorithmGreedy:
		result := greedy.Solve(candidates, rules, deadline)
		partial = result.Solution
		timeLimitReached = result.TimeLimitReached
	default:
		result := dp.Solve(candidates, rules)
		partial = result.Solution
	}

	if o.optimizer.EnableALNS {
		result := alns.Improve(partial, fields, crops, pool, rules, alns.Config{
			Iterations:  o.optimizer.ALNSIterations,
			RemovalRate: o.optimizer.ALNSRemovalRate,
			RandomSeed:  o.optimizer.RandomSeed,
		})
		partial = result.Solution
		algorithmName = algorithmName + "+alns"
	} else if o.optimizer.EnableLocalSearch {
		result := localsearch.Improve(partial, fields, crops, pool, rules, localsearch.Config{
			MaxIterations:            o.optimizer.MaxLocalSearchIterations,
			MaxNeighborsPerIteration: o.optimizer.MaxNeighborsPerIteration,
			EnableNeighborSampling:   o.optimizer.EnableNeighborSampling,
			OperatorWeights:          o.optimizer.OperatorWeights,
		})
		partial = result.Solution
		algorithmName = algorithmName + "+local_search"
	}

	elapsed := time.Since(start).Seconds()

	if len(partial.AllPlacements()) == 0 {
		result := domain.NewEmptyResult(algorithmName)
		result.ComputationTimeSeconds = elapsed
		result.TimeLimitReached = timeLimitReached
		return result, nil
	}

	return buildResult(partial, fields, algorithmName, elapsed, timeLimitReached), nil
}

func buildResult(partial *allocation.PartialSolution, fields []domain.Field, algorithmName string, elapsedSeconds float64, timeLimitReached bool) domain.OptimizationResult {
	fieldIDs := make([]string, 0, len(fields))
	areaByField := make(map[string]float64, len(fields))
	for _, f := range fields {
		fieldIDs = append(fieldIDs, f.FieldID)
		areaByField[f.FieldID] = f.Area
	}
	sort.Strings(fieldIDs)

	var schedules []domain.FieldSchedule
	cropQuantities := make(map[string]float64)
	var totalCost, totalRevenue, totalProfit, totalUtilization float64
	utilizedFields := 0

	for _, fieldID := range fieldIDs {
		placements := partial.FieldPlacements(fieldID)
		if len(placements) == 0 {
			continue
		}
		allocations := make([]domain.CropAllocation, 0, len(placements))
		var areaUsed float64
		for _, p := range placements {
			alloc := solver.ToAllocation(p)
			allocations = append(allocations, alloc)
			cropQuantities[p.Crop.CropID] += p.AreaUsed
			totalRevenue += p.Revenue
			totalProfit += p.Profit
			areaUsed += p.AreaUsed
		}
		schedules = append(schedules, domain.FieldSchedule{FieldID: fieldID, Allocations: allocations})
		if area := areaByField[fieldID]; area > 0 {
			totalUtilization += areaUsed / area
			utilizedFields++
		}
	}
	totalCost = totalRevenue - totalProfit

	avgUtilization := 0.0
	if utilizedFields > 0 {
		avgUtilization = totalUtilization / float64(utilizedFields)
	}

	return domain.OptimizationResult{
		FieldSchedules:          schedules,
		TotalCost:               totalCost,
		TotalRevenue:            totalRevenue,
		TotalProfit:             totalProfit,
		AverageFieldUtilization: avgUtilization,
		CropQuantities:          cropQuantities,
		AlgorithmName:           algorithmName,
		ComputationTimeSeconds:  elapsedSeconds,
		TimeLimitReached:        timeLimitReached,
	}
}

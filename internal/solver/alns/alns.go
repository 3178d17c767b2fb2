// Package alns implements the adaptive large neighborhood search (C9), an
// alternative improvement pass to local search: destroy a fraction of the
// current solution, repair it, and keep the result only if it improves.
package alns

import (
	"math/rand"
	"sort"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/allocation"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/metrics"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/periods"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver"
)

// reward values for the four outcome classes: a new best solution
// earns the most, an improvement over the pre-iteration incumbent earns
// less, a feasible-but-non-improving repair earns a token amount (it kept
// the search alive), and an iteration whose repair reports failure earns
// nothing; both repair operators below always report success.
const (
	rewardBest      = 33.0
	rewardImproving = 9.0
	rewardAccepted  = 1.0
	rewardFailed    = 0.0

	ewmaDecay = 0.8
)

// Config carries the subset of config.OptimizerConfig ALNS needs.
type Config struct {
	Iterations  int
	RemovalRate float64
	RandomSeed  int64
}

// Result is the outcome of one ALNS run.
type Result struct {
	Solution   *allocation.PartialSolution
	Iterations int
}

type destroyOp func(rng *rand.Rand, s *allocation.PartialSolution, rate float64) []allocation.Placement
type repairOp func(rng *rand.Rand, s *allocation.PartialSolution, removed []allocation.Placement, fields []domain.Field, pool *periods.Pool, rules []domain.InteractionRule) bool

// Improve runs the destroy/repair loop for cfg.Iterations, accepting a
// candidate only when it improves on the current incumbent (plain
// hill-climbing; simulated annealing is explicitly out of scope). Destroy
// and repair operators are sampled by roulette over adaptive, EWMA-updated
// weights; a destroy that finds nothing to remove (e.g. on an empty
// solution) does not crash the loop: the repair still runs and the
// iteration is rewarded by its outcome like any other.
func Improve(initial *allocation.PartialSolution, fields []domain.Field, crops []domain.Crop, pool *periods.Pool, rules []domain.InteractionRule, cfg Config) Result {
	rng := rand.New(rand.NewSource(cfg.RandomSeed))

	destroyNames := []string{"random_removal", "worst_removal", "field_removal"}
	destroyOps := map[string]destroyOp{
		"random_removal": randomRemoval,
		"worst_removal":  worstRemoval,
		"field_removal":  fieldRemoval,
	}
	repairNames := []string{"greedy_insert", "template_insert"}
	repairOps := map[string]repairOp{
		"greedy_insert":   greedyInsert(crops),
		"template_insert": templateInsert(crops),
	}

	destroyWeights := uniformWeights(destroyNames)
	repairWeights := uniformWeights(repairNames)

	current := initial
	currentProfit := totalProfit(current)
	best := current
	bestProfit := currentProfit

	iterations := 0
	for ; iterations < cfg.Iterations; iterations++ {
		destroyName := roulette(rng, destroyNames, destroyWeights)
		repairName := roulette(rng, repairNames, repairWeights)

		working := current.Clone()
		removed := destroyOps[destroyName](rng, working, cfg.RemovalRate)
		ok := repairOps[repairName](rng, working, removed, fields, pool, rules)

		reward := rewardFailed
		if ok {
			workingProfit := totalProfit(working)
			switch {
			case workingProfit > bestProfit:
				reward = rewardBest
				best = working
				bestProfit = workingProfit
				current = working
				currentProfit = workingProfit
			case workingProfit > currentProfit:
				reward = rewardImproving
				current = working
				currentProfit = workingProfit
			default:
				reward = rewardAccepted
			}
		}

		destroyWeights[destroyName] = ewmaDecay*destroyWeights[destroyName] + (1-ewmaDecay)*reward
		repairWeights[repairName] = ewmaDecay*repairWeights[repairName] + (1-ewmaDecay)*reward
	}

	return Result{Solution: best, Iterations: iterations}
}

func uniformWeights(names []string) map[string]float64 {
	w := make(map[string]float64, len(names))
	for _, n := range names {
		w[n] = 1
	}
	return w
}

// roulette picks one of names with probability proportional to its weight.
// names is iterated in a fixed order so the cumulative-sum walk is
// deterministic given rng's draw.
func roulette(rng *rand.Rand, names []string, weights map[string]float64) string {
	total := 0.0
	for _, n := range names {
		total += weights[n]
	}
	if total <= 0 {
		return names[0]
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for _, n := range names {
		cumulative += weights[n]
		if r < cumulative {
			return n
		}
	}
	return names[len(names)-1]
}

func totalProfit(s *allocation.PartialSolution) float64 {
	var total float64
	for _, p := range s.AllPlacements() {
		total += p.Profit
	}
	return total
}

// randomRemoval drops a uniformly random rate-fraction of placements.
func randomRemoval(rng *rand.Rand, s *allocation.PartialSolution, rate float64) []allocation.Placement {
	all := sortedPlacements(s)
	n := int(float64(len(all)) * rate)
	if n == 0 && len(all) > 0 {
		n = 1
	}
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	removed := all[:minInt(n, len(all))]
	for _, p := range removed {
		s.Remove(p.FieldID, p.Crop.CropID, p.StartDate)
	}
	return append([]allocation.Placement(nil), removed...)
}

// worstRemoval drops the rate-fraction of placements with the lowest profit.
func worstRemoval(rng *rand.Rand, s *allocation.PartialSolution, rate float64) []allocation.Placement {
	all := sortedPlacements(s)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Profit < all[j].Profit })
	n := int(float64(len(all)) * rate)
	if n == 0 && len(all) > 0 {
		n = 1
	}
	removed := all[:minInt(n, len(all))]
	for _, p := range removed {
		s.Remove(p.FieldID, p.Crop.CropID, p.StartDate)
	}
	return append([]allocation.Placement(nil), removed...)
}

// fieldRemoval clears every placement on one randomly chosen occupied field.
func fieldRemoval(rng *rand.Rand, s *allocation.PartialSolution, rate float64) []allocation.Placement {
	fieldIDs := occupiedFields(s)
	if len(fieldIDs) == 0 {
		return nil
	}
	chosen := fieldIDs[rng.Intn(len(fieldIDs))]
	removed := append([]allocation.Placement(nil), s.FieldPlacements(chosen)...)
	for _, p := range removed {
		s.Remove(p.FieldID, p.Crop.CropID, p.StartDate)
	}
	return removed
}

func occupiedFields(s *allocation.PartialSolution) []string {
	seen := make(map[string]bool)
	for _, p := range s.AllPlacements() {
		seen[p.FieldID] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// greedyInsert re-places each removed placement at its original field/dates
// if still feasible, then scans every crop's top templates by profit_rate,
// inserting any that fit, until nothing more fits.
func greedyInsert(crops []domain.Crop) repairOp {
	return func(rng *rand.Rand, s *allocation.PartialSolution, removed []allocation.Placement, fields []domain.Field, pool *periods.Pool, rules []domain.InteractionRule) bool {
		byID := fieldsByID(fields)
		for _, p := range removed {
			field, ok := byID[p.FieldID]
			if !ok {
				continue
			}
			cand := &domain.AllocationCandidate{
				Field: field, Crop: p.Crop,
				Template: &domain.PeriodTemplate{Crop: p.Crop, StartDate: p.StartDate, CompletionDate: p.CompletionDate, GrowthDays: p.GrowthDays, YieldFactor: p.YieldFactor},
				AreaUsed: p.AreaUsed,
			}
			acceptIfFeasible(s, cand, rules)
		}

		candidates := solver.BuildCandidates(fields, crops, pool, []float64{1.0}, 20)
		scores := make(map[*domain.AllocationCandidate]metrics.Metrics, len(candidates))
		emptyCtx := metrics.Context{Solution: allocation.NewPartialSolution()}
		for _, c := range candidates {
			scores[c] = metrics.Compute(c, emptyCtx)
		}
		solver.SortCandidatesDeterministic(candidates, scores)
		for _, c := range candidates {
			acceptIfFeasible(s, c, rules)
		}
		return true
	}
}

// templateInsert behaves like greedyInsert but additionally tries templates
// within 14 days of each removed placement's start_date before falling back
// to the global top-K scan, biasing the repair toward the dates that were
// just vacated.
func templateInsert(crops []domain.Crop) repairOp {
	return func(rng *rand.Rand, s *allocation.PartialSolution, removed []allocation.Placement, fields []domain.Field, pool *periods.Pool, rules []domain.InteractionRule) bool {
		byID := fieldsByID(fields)
		for _, p := range removed {
			field, ok := byID[p.FieldID]
			if !ok {
				continue
			}
			near := pool.Near(p.Crop.CropID, p.StartDate, 14)
			inserted := false
			for _, tmpl := range near {
				tmpl := tmpl
				cand := &domain.AllocationCandidate{Field: field, Crop: p.Crop, Template: &tmpl, AreaUsed: p.AreaUsed}
				if acceptIfFeasible(s, cand, rules) {
					inserted = true
					break
				}
			}
			if !inserted {
				cand := &domain.AllocationCandidate{
					Field: field, Crop: p.Crop,
					Template: &domain.PeriodTemplate{Crop: p.Crop, StartDate: p.StartDate, CompletionDate: p.CompletionDate, GrowthDays: p.GrowthDays, YieldFactor: p.YieldFactor},
					AreaUsed: p.AreaUsed,
				}
				acceptIfFeasible(s, cand, rules)
			}
		}

		candidates := solver.BuildCandidates(fields, crops, pool, []float64{1.0}, 20)
		scores := make(map[*domain.AllocationCandidate]metrics.Metrics, len(candidates))
		emptyCtx := metrics.Context{Solution: allocation.NewPartialSolution()}
		for _, c := range candidates {
			scores[c] = metrics.Compute(c, emptyCtx)
		}
		solver.SortCandidatesDeterministic(candidates, scores)
		for _, c := range candidates {
			acceptIfFeasible(s, c, rules)
		}
		return true
	}
}

func acceptIfFeasible(s *allocation.PartialSolution, candidate *domain.AllocationCandidate, rules []domain.InteractionRule) bool {
	if !allocation.FitsOnFieldWithFallow(candidate, s) {
		return false
	}
	m := metrics.Compute(candidate, metrics.Context{Solution: s, Rules: rules})
	s.Accept(solver.ToPlacement(candidate, m))
	return true
}

func fieldsByID(fields []domain.Field) map[string]*domain.Field {
	m := make(map[string]*domain.Field, len(fields))
	for i := range fields {
		m[fields[i].FieldID] = &fields[i]
	}
	return m
}

func sortedPlacements(s *allocation.PartialSolution) []allocation.Placement {
	all := s.AllPlacements()
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].FieldID != all[j].FieldID {
			return all[i].FieldID < all[j].FieldID
		}
		return all[i].StartDate.Before(all[j].StartDate)
	})
	return all
}

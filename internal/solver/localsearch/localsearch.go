// Package localsearch implements the hill-climbing neighborhood search (C8)
// that improves on a greedy or DP base solution.
package localsearch

import (
	"sort"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/allocation"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/metrics"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/periods"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver"
)

// fieldMoveToleranceDays, periodShiftToleranceDays and areaAdjustMultipliers are
// pinned by the operator table: field move looks for a same-crop template
// within 3 days of the moved allocation's current start, period shift looks
// within 14 days, and area adjust only ever tries these four multipliers.
const (
	fieldMoveToleranceDays  = 3
	periodShiftToleranceDays = 14
)

var areaAdjustMultipliers = []float64{0.8, 0.9, 1.1, 1.2}

// Config carries the subset of config.OptimizerConfig local search needs.
type Config struct {
	MaxIterations            int
	MaxNeighborsPerIteration int
	EnableNeighborSampling   bool
	OperatorWeights          map[string]float64
	MaxNoImprovement         int
}

// Result is the outcome of one local-search run.
type Result struct {
	Solution   *allocation.PartialSolution
	Iterations int
}

// Improve runs hill-climbing starting from initial, exploring the typed
// neighborhood operators. It never returns a solution worse than
// initial: if no improving neighbor is ever found, initial is returned
// unchanged.
func Improve(initial *allocation.PartialSolution, fields []domain.Field, crops []domain.Crop, pool *periods.Pool, rules []domain.InteractionRule, cfg Config) Result {
	current := initial
	currentProfit := totalProfit(current, rules)
	bestProfit := currentProfit

	noImprovement := 0
	withinBestStreak := 0
	maxNoImprovement := cfg.MaxNoImprovement
	if maxNoImprovement <= 0 {
		maxNoImprovement = 20
	}

	iterations := 0
	for ; iterations < cfg.MaxIterations; iterations++ {
		neighbors := generateNeighbors(current, fields, crops, pool, rules, cfg)

		bestNeighbor := current
		bestNeighborProfit := currentProfit
		for _, n := range neighbors {
			candidate := n.apply()
			if candidate == nil {
				continue
			}
			p := totalProfit(candidate, rules)
			if p > bestNeighborProfit {
				bestNeighborProfit = p
				bestNeighbor = candidate
			}
		}

		improvement := bestNeighborProfit - currentProfit
		threshold := currentProfit * 0.001
		if threshold < 0 {
			threshold = -threshold
		}
		if improvement > threshold {
			current = bestNeighbor
			currentProfit = bestNeighborProfit
			noImprovement = 0
		} else {
			noImprovement++
		}

		if currentProfit > bestProfit {
			bestProfit = currentProfit
		}
		if bestProfit != 0 && (bestProfit-currentProfit)/absFloat(bestProfit) <= 0.001 {
			withinBestStreak++
		} else {
			withinBestStreak = 0
		}

		if noImprovement >= maxNoImprovement || withinBestStreak >= 5 {
			break
		}
	}

	return Result{Solution: current, Iterations: iterations}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func totalProfit(s *allocation.PartialSolution, rules []domain.InteractionRule) float64 {
	var total float64
	for _, p := range s.AllPlacements() {
		total += p.Profit
	}
	return total
}

// neighbor wraps a thunk that materializes one candidate solution, so the
// full set can be generated, capped, and evaluated uniformly regardless of
// which operator produced it.
type neighbor struct {
	operator string
	apply    func() *allocation.PartialSolution
}

// generateNeighbors runs every operator over the current solution and caps
// the combined set at MaxNeighborsPerIteration. Sampling is deterministic
// rather than random (local search has no PRNG requirement in the
// configuration surface — only ALNS does): each operator is allotted a
// budget proportional to its configured weight, and takes its first
// candidates in generation order up to that budget.
func generateNeighbors(current *allocation.PartialSolution, fields []domain.Field, crops []domain.Crop, pool *periods.Pool, rules []domain.InteractionRule, cfg Config) []neighbor {
	byOperator := map[string][]neighbor{
		"field_move":   fieldMoveNeighbors(current, fields, pool, rules),
		"field_swap":   fieldSwapNeighbors(current, fields, rules),
		"crop_change":  cropChangeNeighbors(current, fields, crops, pool, rules),
		"crop_insert":  cropInsertNeighbors(current, fields, crops, pool, rules),
		"period_shift": periodShiftNeighbors(current, fields, pool, rules),
		"area_adjust":  areaAdjustNeighbors(current, fields, rules),
		"remove":       removeNeighbors(current),
	}

	total := 0
	for _, ns := range byOperator {
		total += len(ns)
	}
	if !cfg.EnableNeighborSampling || cfg.MaxNeighborsPerIteration <= 0 || total <= cfg.MaxNeighborsPerIteration {
		var all []neighbor
		for _, op := range sortedOperatorNames(byOperator) {
			all = append(all, byOperator[op]...)
		}
		return all
	}

	weights := cfg.OperatorWeights
	weightTotal := 0.0
	for _, op := range sortedOperatorNames(byOperator) {
		weightTotal += weights[op]
	}
	if weightTotal <= 0 {
		weightTotal = float64(len(byOperator))
	}

	var sampled []neighbor
	for _, op := range sortedOperatorNames(byOperator) {
		w := weights[op]
		if w <= 0 {
			w = 1
		}
		budget := int(float64(cfg.MaxNeighborsPerIteration) * w / weightTotal)
		ns := byOperator[op]
		if budget > len(ns) {
			budget = len(ns)
		}
		sampled = append(sampled, ns[:budget]...)
	}
	return sampled
}

func sortedOperatorNames(byOperator map[string][]neighbor) []string {
	names := make([]string, 0, len(byOperator))
	for name := range byOperator {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// withoutPlacement clones s, drops the placement identified by (fieldID,
// cropID, startDate) if present, and returns the clone for the caller to
// mutate further.
func withoutPlacement(s *allocation.PartialSolution, p allocation.Placement) *allocation.PartialSolution {
	clone := s.Clone()
	clone.Remove(p.FieldID, p.Crop.CropID, p.StartDate)
	return clone
}

func acceptIfFeasible(base *allocation.PartialSolution, candidate *domain.AllocationCandidate, rules []domain.InteractionRule) *allocation.PartialSolution {
	if !allocation.FitsOnFieldWithFallow(candidate, base) {
		return nil
	}
	m := metrics.Compute(candidate, metrics.Context{Solution: base, Rules: rules})
	base.Accept(solver.ToPlacement(candidate, m))
	return base
}

func fieldMoveNeighbors(current *allocation.PartialSolution, fields []domain.Field, pool *periods.Pool, rules []domain.InteractionRule) []neighbor {
	var out []neighbor
	for _, p := range sortedPlacements(current) {
		p := p
		for _, f := range fields {
			if f.FieldID == p.FieldID {
				continue
			}
			f := f
			near := pool.Near(p.Crop.CropID, p.StartDate, fieldMoveToleranceDays)
			for _, tmpl := range near {
				tmpl := tmpl
				out = append(out, neighbor{operator: "field_move", apply: func() *allocation.PartialSolution {
					base := withoutPlacement(current, p)
					cand := &domain.AllocationCandidate{Field: &f, Crop: p.Crop, Template: &tmpl, AreaUsed: p.AreaUsed}
					return acceptIfFeasible(base, cand, rules)
				}})
			}
		}
	}
	return out
}

func fieldSwapNeighbors(current *allocation.PartialSolution, fields []domain.Field, rules []domain.InteractionRule) []neighbor {
	var out []neighbor
	byID := fieldsByID(fields)
	placements := sortedPlacements(current)
	for i := 0; i < len(placements); i++ {
		for j := i + 1; j < len(placements); j++ {
			a, b := placements[i], placements[j]
			if a.FieldID == b.FieldID {
				continue
			}
			fieldA, okA := byID[b.FieldID]
			fieldB, okB := byID[a.FieldID]
			if !okA || !okB {
				continue
			}
			a, b, fieldA, fieldB := a, b, fieldA, fieldB
			out = append(out, neighbor{operator: "field_swap", apply: func() *allocation.PartialSolution {
				base := withoutPlacement(current, a)
				base.Remove(b.FieldID, b.Crop.CropID, b.StartDate)
				candA := &domain.AllocationCandidate{Field: fieldA, Crop: a.Crop, Template: &domain.PeriodTemplate{Crop: a.Crop, StartDate: a.StartDate, CompletionDate: a.CompletionDate, GrowthDays: a.GrowthDays, YieldFactor: a.YieldFactor}, AreaUsed: a.AreaUsed}
				if acceptIfFeasible(base, candA, rules) == nil {
					return nil
				}
				candB := &domain.AllocationCandidate{Field: fieldB, Crop: b.Crop, Template: &domain.PeriodTemplate{Crop: b.Crop, StartDate: b.StartDate, CompletionDate: b.CompletionDate, GrowthDays: b.GrowthDays, YieldFactor: b.YieldFactor}, AreaUsed: b.AreaUsed}
				return acceptIfFeasible(base, candB, rules)
			}})
		}
	}
	return out
}

// cropChangeNeighbors replaces the crop on an existing placement (same
// field, a template near the same start_date), preserving area_used.
func cropChangeNeighbors(current *allocation.PartialSolution, fields []domain.Field, crops []domain.Crop, pool *periods.Pool, rules []domain.InteractionRule) []neighbor {
	var out []neighbor
	byID := fieldsByID(fields)
	for _, p := range sortedPlacements(current) {
		p := p
		field, ok := byID[p.FieldID]
		if !ok {
			continue
		}
		for ci := range crops {
			crop := &crops[ci]
			if crop.CropID == p.Crop.CropID {
				continue
			}
			near := pool.Near(crop.CropID, p.StartDate, fieldMoveToleranceDays)
			for _, tmpl := range near {
				tmpl := tmpl
				out = append(out, neighbor{operator: "crop_change", apply: func() *allocation.PartialSolution {
					base := withoutPlacement(current, p)
					cand := &domain.AllocationCandidate{Field: field, Crop: crop, Template: &tmpl, AreaUsed: p.AreaUsed}
					return acceptIfFeasible(base, cand, rules)
				}})
			}
		}
	}
	return out
}

func cropInsertNeighbors(current *allocation.PartialSolution, fields []domain.Field, crops []domain.Crop, pool *periods.Pool, rules []domain.InteractionRule) []neighbor {
	var out []neighbor
	for ci := range crops {
		crop := &crops[ci]
		templates := pool.All(crop.CropID)
		for ti := range templates {
			tmpl := templates[ti]
			for fi := range fields {
				f := &fields[fi]
				out = append(out, neighbor{operator: "crop_insert", apply: func() *allocation.PartialSolution {
					base := current.Clone()
					cand := &domain.AllocationCandidate{Field: f, Crop: crop, Template: &tmpl, AreaUsed: f.Area}
					return acceptIfFeasible(base, cand, rules)
				}})
			}
		}
	}
	return out
}

func periodShiftNeighbors(current *allocation.PartialSolution, fields []domain.Field, pool *periods.Pool, rules []domain.InteractionRule) []neighbor {
	var out []neighbor
	byID := fieldsByID(fields)
	for _, p := range sortedPlacements(current) {
		p := p
		field, ok := byID[p.FieldID]
		if !ok {
			continue
		}
		near := pool.Near(p.Crop.CropID, p.StartDate, periodShiftToleranceDays)
		for _, tmpl := range near {
			if tmpl.StartDate.Equal(p.StartDate) {
				continue
			}
			tmpl := tmpl
			out = append(out, neighbor{operator: "period_shift", apply: func() *allocation.PartialSolution {
				base := withoutPlacement(current, p)
				cand := &domain.AllocationCandidate{Field: field, Crop: p.Crop, Template: &tmpl, AreaUsed: p.AreaUsed}
				return acceptIfFeasible(base, cand, rules)
			}})
		}
	}
	return out
}

func areaAdjustNeighbors(current *allocation.PartialSolution, fields []domain.Field, rules []domain.InteractionRule) []neighbor {
	var out []neighbor
	byID := fieldsByID(fields)
	for _, p := range sortedPlacements(current) {
		p := p
		field, ok := byID[p.FieldID]
		if !ok {
			continue
		}
		for _, mult := range areaAdjustMultipliers {
			mult := mult
			newArea := p.AreaUsed * mult
			if newArea <= 0 || newArea > field.Area+1e-9 {
				continue
			}
			out = append(out, neighbor{operator: "area_adjust", apply: func() *allocation.PartialSolution {
				base := withoutPlacement(current, p)
				cand := &domain.AllocationCandidate{
					Field:    field,
					Crop:     p.Crop,
					Template: &domain.PeriodTemplate{Crop: p.Crop, StartDate: p.StartDate, CompletionDate: p.CompletionDate, GrowthDays: p.GrowthDays, YieldFactor: p.YieldFactor},
					AreaUsed: newArea,
				}
				return acceptIfFeasible(base, cand, rules)
			}})
		}
	}
	return out
}

func removeNeighbors(current *allocation.PartialSolution) []neighbor {
	var out []neighbor
	for _, p := range sortedPlacements(current) {
		p := p
		out = append(out, neighbor{operator: "remove", apply: func() *allocation.PartialSolution {
			return withoutPlacement(current, p)
		}})
	}
	return out
}

func fieldsByID(fields []domain.Field) map[string]*domain.Field {
	m := make(map[string]*domain.Field, len(fields))
	for i := range fields {
		m[fields[i].FieldID] = &fields[i]
	}
	return m
}

// sortedPlacements returns every placement in the solution in a stable
// (field_id, start_date) order so neighbor generation is deterministic.
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


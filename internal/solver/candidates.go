// Package solver holds the request/candidate-generation plumbing shared by
// every base algorithm and improvement pass (greedy, dp, local search,
// ALNS).
package solver

import (
	"sort"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/allocation"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/metrics"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/periods"
)

// BuildCandidates enumerates every (field, crop, template, area_level)
// combination from the pool's top-K templates per crop, the candidate
// stream every base solver consumes.
func BuildCandidates(fields []domain.Field, crops []domain.Crop, pool *periods.Pool, areaLevels []float64, topKPerCrop int) []*domain.AllocationCandidate {
	var out []*domain.AllocationCandidate
	for ci := range crops {
		crop := &crops[ci]
		templates := pool.Top(crop.CropID, topKPerCrop)
		for ti := range templates {
			tmpl := &templates[ti]
			for fi := range fields {
				field := &fields[fi]
				for _, level := range areaLevels {
					out = append(out, &domain.AllocationCandidate{
						Field:    field,
						Crop:     crop,
						Template: tmpl,
						AreaUsed: field.Area * level,
					})
				}
			}
		}
	}
	return out
}

// FilterByProfitRate drops candidates whose context-free profit_rate falls
// below threshold (configuration `min_profit_rate_threshold`), a pruning
// pass run once before any solver sees the stream.
func FilterByProfitRate(candidates []*domain.AllocationCandidate, threshold float64) []*domain.AllocationCandidate {
	emptyCtx := metrics.Context{Solution: allocation.NewPartialSolution()}
	out := candidates[:0:0]
	for _, c := range candidates {
		if metrics.Compute(c, emptyCtx).ProfitRate >= threshold {
			out = append(out, c)
		}
	}
	return out
}

// ToPlacement converts an accepted candidate plus its computed metrics into
// a Placement for a PartialSolution.
func ToPlacement(candidate *domain.AllocationCandidate, m metrics.Metrics) allocation.Placement {
	return allocation.Placement{
		FieldID:        candidate.Field.FieldID,
		Crop:           candidate.Crop,
		StartDate:      candidate.Template.StartDate,
		CompletionDate: candidate.Template.CompletionDate,
		GrowthDays:     candidate.Template.GrowthDays,
		YieldFactor:    candidate.Template.YieldFactor,
		AreaUsed:       candidate.AreaUsed,
		Revenue:        m.Revenue,
		Profit:         m.Profit,
	}
}

// ToAllocation converts a Placement into the public domain.CropAllocation
// an OptimizationResult reports.
func ToAllocation(p allocation.Placement) domain.CropAllocation {
	return domain.CropAllocation{
		FieldID:        p.FieldID,
		CropID:         p.Crop.CropID,
		StartDate:      p.StartDate.Format("2006-01-02"),
		CompletionDate: p.CompletionDate.Format("2006-01-02"),
		GrowthDays:     int(p.CompletionDate.Sub(p.StartDate).Hours()/24) + 1,
		AreaUsed:       p.AreaUsed,
		Revenue:        p.Revenue,
		Profit:         p.Profit,
	}
}

// SortCandidatesDeterministic orders candidates by a fixed tie-break chain:
// profit_rate desc, profit desc, start_date asc, field_id lexicographic asc.
// Used wherever a stable, reproducible ordering over scored candidates is
// needed.
func SortCandidatesDeterministic(candidates []*domain.AllocationCandidate, scores map[*domain.AllocationCandidate]metrics.Metrics) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := scores[candidates[i]], scores[candidates[j]]
		if a.ProfitRate != b.ProfitRate {
			return a.ProfitRate > b.ProfitRate
		}
		if a.Profit != b.Profit {
			return a.Profit > b.Profit
		}
		if !candidates[i].Template.StartDate.Equal(candidates[j].Template.StartDate) {
			return candidates[i].Template.StartDate.Before(candidates[j].Template.StartDate)
		}
		return candidates[i].Field.FieldID < candidates[j].Field.FieldID
	})
}

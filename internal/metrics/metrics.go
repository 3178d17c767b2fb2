// Package metrics implements the single canonical profit/metrics formula
// (C4) every solver uses to rank, select, and compare candidates.
package metrics

import (
	"github.com/urban-gardening-assistant/cultivation-planner/internal/allocation"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
)

// Context is the information Compute needs beyond the candidate itself: the
// partial solution built so far (for interaction lookups and demand-cap
// tracking) and the interaction-rule catalog.
type Context struct {
	Solution *allocation.PartialSolution
	Rules    []domain.InteractionRule
}

// Metrics is the full derived-value set Compute produces for one
// candidate.
type Metrics struct {
	Cost            float64
	BaseRevenue     float64 // before interaction adjustment and demand cap
	Revenue         float64 // after interaction adjustment and demand cap
	Profit          float64
	ProfitRate      float64
	AreaUtilization float64
	DemandCapped    bool // true if max_revenue clamped this candidate's revenue
}

// Compute is the sole profit/metrics formula in the system (C4). It must be
// used by every solver; there is no alternative calculation path.
func Compute(candidate *domain.AllocationCandidate, ctx Context) Metrics {
	cost := float64(candidate.Template.GrowthDays) * candidate.Field.DailyFixedCost

	revenuePerArea := candidate.Crop.RevenuePerAreaOrZero()
	isNullRevenue := candidate.Crop.RevenuePerArea == nil

	baseRevenue := candidate.AreaUsed * revenuePerArea * candidate.Template.YieldFactor
	adjustedRevenue := applyInteractionRules(candidate, ctx, baseRevenue)

	clampedRevenue, capped := applyDemandCap(candidate.Crop, ctx, adjustedRevenue)

	var profit float64
	if isNullRevenue {
		profit = -cost
		clampedRevenue = 0
	} else {
		profit = clampedRevenue - cost
	}

	var profitRate float64
	if cost > 0 {
		profitRate = profit / cost
	}

	areaUtilization := 0.0
	if candidate.Field.Area > 0 {
		areaUtilization = candidate.AreaUsed / candidate.Field.Area
	}

	return Metrics{
		Cost:            cost,
		BaseRevenue:     baseRevenue,
		Revenue:         clampedRevenue,
		Profit:          profit,
		ProfitRate:      profitRate,
		AreaUtilization: areaUtilization,
		DemandCapped:    capped,
	}
}

// applyInteractionRules multiplies baseRevenue by the impact_ratio of every
// rule that matches (previous crop family, candidate crop family). Per the
// compounding decision recorded for this project, all applicable rules
// apply — not just the first match — since the source's two differing
// callsites gave no authoritative tie-breaker and compounding is the more
// conservative (revenue-reducing) choice.
func applyInteractionRules(candidate *domain.AllocationCandidate, ctx Context, baseRevenue float64) float64 {
	if ctx.Solution == nil || len(ctx.Rules) == 0 {
		return baseRevenue
	}
	prev := ctx.Solution.PreviousCrop(candidate.Field.FieldID, candidate.Template.StartDate)
	if prev == nil {
		return baseRevenue
	}
	adjusted := baseRevenue
	for _, rule := range ctx.Rules {
		if rule.Matches(prev.CropFamily, candidate.Crop.CropFamily) {
			adjusted *= rule.ImpactRatio
		}
	}
	return adjusted
}

// applyDemandCap clamps revenue so the crop's total realized revenue across
// the partial solution never exceeds max_revenue.
func applyDemandCap(crop *domain.Crop, ctx Context, revenue float64) (clamped float64, capped bool) {
	if crop.MaxRevenue == nil || ctx.Solution == nil {
		return revenue, false
	}
	alreadyRealized := ctx.Solution.AlreadyRealized(crop.CropID)
	remaining := *crop.MaxRevenue - alreadyRealized
	if remaining < 0 {
		remaining = 0
	}
	if revenue > remaining {
		return remaining, true
	}
	return revenue, false
}

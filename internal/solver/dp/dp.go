// Package dp implements the per-field weighted interval scheduling solver
// (C7).
package dp

import (
	"sort"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/allocation"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/metrics"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver"
)

// Result is the outcome of one DP run.
type Result struct {
	Solution *allocation.PartialSolution
}

// Solve runs weighted interval scheduling independently per field using a
// context-free profit weight (no interactions, no demand caps), then
// reconciles the combined solution against the real context: any crop
// whose realized revenue exceeds max_revenue has its lowest-profit_rate
// allocations dropped one at a time until it no longer does.
func Solve(candidates []*domain.AllocationCandidate, rules []domain.InteractionRule) Result {
	byField := make(map[string][]*domain.AllocationCandidate)
	for _, c := range candidates {
		byField[c.Field.FieldID] = append(byField[c.Field.FieldID], c)
	}

	fieldIDs := make([]string, 0, len(byField))
	for id := range byField {
		fieldIDs = append(fieldIDs, id)
	}
	sort.Strings(fieldIDs)

	emptyCtx := metrics.Context{Solution: allocation.NewPartialSolution()}

	var selected []*domain.AllocationCandidate
	for _, fieldID := range fieldIDs {
		selected = append(selected, solveField(byField[fieldID], emptyCtx)...)
	}

	// The per-field DP chose its selection using a context-free weight.
	// Reconcile the combined selection's revenue/profit under the real
	// context (interactions + demand caps) by replaying acceptance in
	// start_date order, so interaction-rule lookups see a sensible
	// chronological history.
	sort.SliceStable(selected, func(i, j int) bool {
		if !selected[i].Template.StartDate.Equal(selected[j].Template.StartDate) {
			return selected[i].Template.StartDate.Before(selected[j].Template.StartDate)
		}
		return selected[i].Field.FieldID < selected[j].Field.FieldID
	})

	solution := allocation.NewPartialSolution()
	for _, c := range selected {
		m := metrics.Compute(c, metrics.Context{Solution: solution, Rules: rules})
		solution.Accept(solver.ToPlacement(c, m))
	}

	reconcileDemandCaps(solution)

	return Result{Solution: solution}
}

// solveField runs the weighted-interval-scheduling recurrence for one
// field's candidates: sort by completion_date, binary-search the latest
// non-conflicting (fallow-respecting) predecessor, and take the standard
// opt(k) = max(opt(k-1), weight(k) + opt(p(k))) recurrence.
func solveField(candidates []*domain.AllocationCandidate, emptyCtx metrics.Context) []*domain.AllocationCandidate {
	if len(candidates) == 0 {
		return nil
	}

	sorted := append([]*domain.AllocationCandidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Template.CompletionDate.Equal(sorted[j].Template.CompletionDate) {
			return sorted[i].Template.CompletionDate.Before(sorted[j].Template.CompletionDate)
		}
		return sorted[i].Template.StartDate.Before(sorted[j].Template.StartDate)
	})

	n := len(sorted)
	weight := make([]float64, n)
	for i, c := range sorted {
		weight[i] = metrics.Compute(c, emptyCtx).Profit
	}

	predecessor := make([]int, n)
	for k := 0; k < n; k++ {
		predecessor[k] = latestCompatible(sorted, k)
	}

	opt := make([]float64, n+1) // opt[0] = 0 (no candidates considered); opt[k+1] covers sorted[0..k]
	choice := make([]bool, n)
	for k := 0; k < n; k++ {
		withK := weight[k]
		if predecessor[k] >= 0 {
			withK += opt[predecessor[k]+1]
		}
		withoutK := opt[k]
		if withK > withoutK {
			opt[k+1] = withK
			choice[k] = true
		} else {
			opt[k+1] = withoutK
			choice[k] = false
		}
	}

	var result []*domain.AllocationCandidate
	for k := n - 1; k >= 0; {
		if choice[k] {
			result = append(result, sorted[k])
			k = predecessor[k]
		} else {
			k--
		}
	}
	return result
}

// latestCompatible binary-searches for the largest index j < k such that
// sorted[j].completion_date + fallow < sorted[k].start_date. fallow is
// taken from the field the candidates share (all candidates passed to
// solveField are on the same field).
func latestCompatible(sorted []*domain.AllocationCandidate, k int) int {
	fallow := sorted[k].Field.FallowPeriodDays
	startK := sorted[k].Template.StartDate

	lo, hi := 0, k-1
	result := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		boundary := sorted[mid].Template.CompletionDate.AddDate(0, 0, fallow)
		if boundary.Before(startK) {
			result = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return result
}

// reconcileDemandCaps drops the lowest-profit_rate allocation of any crop
// whose realized revenue (computed under the real interaction+cap context)
// exceeds max_revenue, repeating until every crop is within its cap. This
// terminates in O(allocations): each iteration removes exactly one
// allocation.
func reconcileDemandCaps(solution *allocation.PartialSolution) {
	for {
		overCapCrop, worst := findWorstOverCapAllocation(solution)
		if worst == nil {
			return
		}
		solution.Remove(worst.FieldID, overCapCrop, worst.StartDate)
	}
}

func findWorstOverCapAllocation(solution *allocation.PartialSolution) (string, *allocation.Placement) {
	realized := make(map[string]float64)
	maxRevenue := make(map[string]*float64)
	placementsByCrop := make(map[string][]allocation.Placement)

	for _, p := range solution.AllPlacements() {
		realized[p.Crop.CropID] += p.Revenue
		maxRevenue[p.Crop.CropID] = p.Crop.MaxRevenue
		placementsByCrop[p.Crop.CropID] = append(placementsByCrop[p.Crop.CropID], p)
	}

	cropIDs := make([]string, 0, len(realized))
	for id := range realized {
		cropIDs = append(cropIDs, id)
	}
	sort.Strings(cropIDs)

	for _, cropID := range cropIDs {
		maxRev := maxRevenue[cropID]
		if maxRev == nil || realized[cropID] <= *maxRev+1e-9 {
			continue
		}
		placements := placementsByCrop[cropID]
		worstIdx := 0
		worstRate := profitRate(placements[0])
		for i := 1; i < len(placements); i++ {
			if rate := profitRate(placements[i]); rate < worstRate {
				worstRate = rate
				worstIdx = i
			}
		}
		worst := placements[worstIdx]
		return cropID, &worst
	}
	return "", nil
}

func profitRate(p allocation.Placement) float64 {
	cost := p.Revenue - p.Profit
	if cost <= 0 {
		return 0
	}
	return p.Profit / cost
}

// Package greedy implements the profit-rate-sorted insertion solver (C6).
package greedy

import (
	"time"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/allocation"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/metrics"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver"
)

// Result is the outcome of one greedy run.
type Result struct {
	Solution         *allocation.PartialSolution
	TimeLimitReached bool
}

// Solve iterates candidates in profit_rate order, accepting every feasible
// one. Because accepting a candidate changes the context (interaction
// lookups, demand-cap realized revenue), every remaining candidate's
// metrics are recomputed and the remaining list is fully re-sorted after
// each acceptance — a stricter, still-deterministic version of the
// demand-cap re-ranking (which only re-ranks the affected crop's
// candidates): recomputing the whole list is simpler to reason about
// and no less correct, at the cost of extra sorting work.
func Solve(candidates []*domain.AllocationCandidate, rules []domain.InteractionRule, deadline time.Time) Result {
	solution := allocation.NewPartialSolution()
	remaining := append([]*domain.AllocationCandidate(nil), candidates...)

	for len(remaining) > 0 {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return Result{Solution: solution, TimeLimitReached: true}
		}

		scores := make(map[*domain.AllocationCandidate]metrics.Metrics, len(remaining))
		ctx := metrics.Context{Solution: solution, Rules: rules}
		for _, c := range remaining {
			scores[c] = metrics.Compute(c, ctx)
		}
		solver.SortCandidatesDeterministic(remaining, scores)

		acceptedAt := -1
		for i, c := range remaining {
			if allocation.FitsOnFieldWithFallow(c, solution) {
				solution.Accept(solver.ToPlacement(c, scores[c]))
				acceptedAt = i
				break
			}
		}
		if acceptedAt == -1 {
			break // no remaining candidate is feasible: FeasibilityExhausted for what's left
		}
		remaining = append(remaining[:acceptedAt], remaining[acceptedAt+1:]...)
	}

	return Result{Solution: solution}
}

package allocation

import (
	"time"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
)

// intervalsIntersect reports whether two closed day-ranges [aStart, aEnd]
// and [bStart, bEnd], each extended by its own trailing padding, intersect.
func intervalsIntersect(aStart, aEnd time.Time, aPad int, bStart, bEnd time.Time, bPad int) bool {
	aEndExclusive := aEnd.AddDate(0, 0, aPad+1)
	bEndExclusive := bEnd.AddDate(0, 0, bPad+1)
	return aStart.Before(bEndExclusive) && bStart.Before(aEndExclusive)
}

// OverlapsWith reports whether candidate and an existing placement on the
// same field violate the fallow-respecting non-overlap invariant: their
// closed day ranges `[start, completion + fallow_days]` intersect, so two
// allocations are compatible only when one's completion + fallow_days falls
// strictly before the other's start. Candidates on different fields never
// overlap.
func OverlapsWith(candidate *domain.AllocationCandidate, other Placement, fallowDays int) bool {
	if candidate.Field.FieldID != other.FieldID {
		return false
	}
	return intervalsIntersect(
		candidate.Template.StartDate, candidate.Template.CompletionDate, fallowDays,
		other.StartDate, other.CompletionDate, fallowDays,
	)
}

// FitsOnField reports whether accepting candidate keeps the area invariant:
// for every day the candidate is active, the sum of area_used over
// concurrently active allocations on the field (including the candidate
// itself) does not exceed field.Area. Unlike OverlapsWith, this check uses
// the raw [start, completion] range — fallow only governs timing between
// allocations, not concurrent area sharing.
func FitsOnField(candidate *domain.AllocationCandidate, solution *PartialSolution) bool {
	total := candidate.AreaUsed
	for _, p := range solution.FieldPlacements(candidate.Field.FieldID) {
		if intervalsIntersect(candidate.Template.StartDate, candidate.Template.CompletionDate, 0, p.StartDate, p.CompletionDate, 0) {
			total += p.AreaUsed
		}
	}
	return total <= candidate.Field.Area+1e-9
}

// FitsOnFieldWithFallow additionally enforces the fallow-respecting
// non-overlap invariant against every existing placement on the field —
// the full feasibility check a solver runs before accepting a candidate.
func FitsOnFieldWithFallow(candidate *domain.AllocationCandidate, solution *PartialSolution) bool {
	for _, p := range solution.FieldPlacements(candidate.Field.FieldID) {
		if OverlapsWith(candidate, p, candidate.Field.FallowPeriodDays) {
			return false
		}
	}
	return FitsOnField(candidate, solution)
}

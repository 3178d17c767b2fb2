package domain

// AllocationCandidate is a concrete, ephemeral (field, crop, template,
// area_used) tuple. Candidates are never stored materialized for every
// field; solvers create and discard them freely. See internal/metrics for
// the canonical profit/metrics calculation and internal/allocation for the
// overlap/fit predicates (C5).
type AllocationCandidate struct {
	Field    *Field
	Crop     *Crop
	Template *PeriodTemplate
	AreaUsed float64
}

// CropAllocation is a solution element: one accepted candidate, with the
// metrics the orchestrator cached for it at acceptance time.
type CropAllocation struct {
	FieldID        string
	CropID         string
	StartDate      string // ISO-8601 YYYY-MM-DD
	CompletionDate string
	GrowthDays     int
	AreaUsed       float64
	AccumulatedGDD float64
	Revenue        float64
	Profit         float64
}

// FieldSchedule is the ordered, non-overlapping (fallow-respecting) set of
// allocations on one field.
type FieldSchedule struct {
	FieldID     string
	Allocations []CropAllocation // sorted by StartDate
}

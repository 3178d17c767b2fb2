package domain

import (
	"fmt"
	"time"
)

// PeriodTemplate is a field-independent (crop, start_date) -> completion
// record produced once by the sliding-window generator (C2) and handed out
// immutably by the template pool (C3). Templates are never mutated after
// construction.
type PeriodTemplate struct {
	Crop           *Crop
	StartDate      time.Time
	CompletionDate time.Time
	GrowthDays     int
	AccumulatedGDD float64
	YieldFactor    float64 // in [0.3, 1.0]
}

// TemplateID returns the "{crop_id}|{start_date}" identity for a template.
func (t PeriodTemplate) TemplateID() string {
	return fmt.Sprintf("%s|%s", t.Crop.CropID, t.StartDate.Format("2006-01-02"))
}

// Apply derives a concrete AllocationCandidate for one field at the given
// area_used in O(1); it performs no feasibility checks of its own — callers
// use AllocationCandidate's predicates for that.
func (t *PeriodTemplate) Apply(field *Field, areaUsed float64) AllocationCandidate {
	return AllocationCandidate{
		Field:    field,
		Crop:     t.Crop,
		Template: t,
		AreaUsed: areaUsed,
	}
}

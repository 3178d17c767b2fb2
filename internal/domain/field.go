// Package domain defines the core entities of the cultivation allocation
// planner: fields, crops, weather, interaction rules, period templates and
// the allocations/schedules a solver produces from them.
package domain

import "fmt"

// DefaultFallowPeriodDays is applied to a Field when FallowPeriodDays is left unset.
const DefaultFallowPeriodDays = 28

// Field is an immutable parcel available for cultivation. Fields are shared
// read-only across every solver; nothing in this package mutates one after
// construction.
type Field struct {
	FieldID          string
	Name             string
	Area             float64 // m², must be > 0
	DailyFixedCost   float64 // currency/day, must be >= 0
	FallowPeriodDays int     // mandatory soil-rest gap between allocations
}

// Validate checks the invariants a Field must satisfy before it can be used
// by any solver (area positive, cost non-negative, fallow non-negative).
func (f *Field) Validate() error {
	if f.FieldID == "" {
		return fmt.Errorf("%w: field_id is required", ErrInputError)
	}
	if f.Area <= 0 {
		return fmt.Errorf("%w: field %q area must be positive, got %.4f", ErrInputError, f.FieldID, f.Area)
	}
	if f.DailyFixedCost < 0 {
		return fmt.Errorf("%w: field %q daily_fixed_cost must be non-negative, got %.4f", ErrInputError, f.FieldID, f.DailyFixedCost)
	}
	if f.FallowPeriodDays < 0 {
		return fmt.Errorf("%w: field %q fallow_period_days must be non-negative, got %d", ErrInputError, f.FieldID, f.FallowPeriodDays)
	}
	return nil
}

// NewField constructs a Field, applying DefaultFallowPeriodDays when
// fallowDays is negative (the "unset" sentinel). A caller that wants an
// explicit zero-day fallow — legal per the data model — passes 0 directly.
func NewField(fieldID, name string, area, dailyFixedCost float64, fallowDays int) Field {
	if fallowDays < 0 {
		fallowDays = DefaultFallowPeriodDays
	}
	return Field{
		FieldID:          fieldID,
		Name:             name,
		Area:             area,
		DailyFixedCost:   dailyFixedCost,
		FallowPeriodDays: fallowDays,
	}
}

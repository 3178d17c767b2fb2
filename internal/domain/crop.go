package domain

import "fmt"

// TemperatureProfile describes the thermal band a crop (or one of its
// growth stages) tolerates. All values are in degrees Celsius.
type TemperatureProfile struct {
	BaseTemperature        float64
	OptimalMin             float64
	OptimalMax             float64
	LowStressThreshold     float64
	HighStressThreshold    float64
	FrostThreshold         float64
	MaxTemperature         float64 // required — see Validate
	SterilityRiskThreshold *float64
	Reproductive           bool // stage is reproductive; gates the sterility-risk multiplier
}

// Validate enforces base < optimal_min <= optimal_max < max_temperature.
func (p TemperatureProfile) Validate() error {
	if p.BaseTemperature >= p.OptimalMin {
		return fmt.Errorf("%w: base_temperature (%.2f) must be < optimal_min (%.2f)", ErrInputError, p.BaseTemperature, p.OptimalMin)
	}
	if p.OptimalMin > p.OptimalMax {
		return fmt.Errorf("%w: optimal_min (%.2f) must be <= optimal_max (%.2f)", ErrInputError, p.OptimalMin, p.OptimalMax)
	}
	if p.OptimalMax >= p.MaxTemperature {
		return fmt.Errorf("%w: optimal_max (%.2f) must be < max_temperature (%.2f)", ErrInputError, p.OptimalMax, p.MaxTemperature)
	}
	if p.MaxTemperature == 0 {
		return fmt.Errorf("%w: max_temperature is required", ErrInputError)
	}
	return nil
}

// StageRequirement is one ordered growth stage of a crop's development.
type StageRequirement struct {
	Order              int
	Profile            TemperatureProfile
	RequiredGDD        float64
	SunshineHoursMin   *float64
	SunshineHoursMax   *float64
}

// Crop is the field-independent catalog entry a period template is built
// from. Crop values are immutable and shared by reference across the
// template pool and every solver.
type Crop struct {
	CropID          string
	Variety         string
	AreaPerUnit     float64 // m² per unit, used by callers sizing area_levels
	RevenuePerArea  *float64 // currency/m²; nil is treated as 0 revenue
	MaxRevenue      *float64 // optional cap on total realized revenue for this crop
	CropFamily      string
	StageRequirements []StageRequirement
}

// Validate checks stage ordering and per-stage thermal-profile invariants,
// and that max_temperature is present on every stage.
func (c *Crop) Validate() error {
	if c.CropID == "" {
		return fmt.Errorf("%w: crop_id is required", ErrInputError)
	}
	if len(c.StageRequirements) == 0 {
		return fmt.Errorf("%w: crop %q has no stage requirements", ErrInputError, c.CropID)
	}
	expectedOrder := 1
	for _, stage := range c.StageRequirements {
		if stage.Order != expectedOrder {
			return fmt.Errorf("%w: crop %q stage order must be strictly increasing from 1, got %d after %d", ErrInputError, c.CropID, stage.Order, expectedOrder-1)
		}
		if stage.RequiredGDD <= 0 {
			return fmt.Errorf("%w: crop %q stage %d required_gdd must be positive", ErrInputError, c.CropID, stage.Order)
		}
		if stage.Profile.MaxTemperature == 0 {
			return fmt.Errorf("%w: crop %q stage %d missing required max_temperature", ErrInputError, c.CropID, stage.Order)
		}
		if err := stage.Profile.Validate(); err != nil {
			return fmt.Errorf("crop %q stage %d: %w", c.CropID, stage.Order, err)
		}
		expectedOrder++
	}
	return nil
}

// RequiredTotalGDD sums required_gdd across every stage.
func (c *Crop) RequiredTotalGDD() float64 {
	total := 0.0
	for _, s := range c.StageRequirements {
		total += s.RequiredGDD
	}
	return total
}

// RevenuePerAreaOrZero returns RevenuePerArea, treating a nil pointer as 0
// per the data-model note that a null revenue_per_area is treated as 0.
func (c *Crop) RevenuePerAreaOrZero() float64 {
	if c.RevenuePerArea == nil {
		return 0
	}
	return *c.RevenuePerArea
}

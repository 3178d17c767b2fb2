// Package thermal implements the daily modified-GDD kernel (trapezoidal
// temperature efficiency, stress multipliers) that every period template is
// built from.
package thermal

import (
	"math"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
)

// Efficiency is the trapezoidal temperature-efficiency function E(T): zero
// at or beyond the crop's tolerance band, 1 across the optimal band, linear
// in between.
func Efficiency(tMean float64, p domain.TemperatureProfile) float64 {
	switch {
	case tMean <= p.BaseTemperature || tMean >= p.MaxTemperature:
		return 0
	case tMean < p.OptimalMin:
		return (tMean - p.BaseTemperature) / (p.OptimalMin - p.BaseTemperature)
	case tMean <= p.OptimalMax:
		return 1
	default: // optimal_max < T < max_temperature
		return (p.MaxTemperature - tMean) / (p.MaxTemperature - p.OptimalMax)
	}
}

// DailyGDD is the modified growing-degree-day contribution of one day.
func DailyGDD(tMean float64, p domain.TemperatureProfile) float64 {
	return math.Max(tMean-p.BaseTemperature, 0) * Efficiency(tMean, p)
}

// DayContribution is the full per-day outcome of evaluating one mean
// temperature against a stage's profile: the GDD it contributes and which
// stress multipliers it triggers.
type DayContribution struct {
	GDD         float64
	HighStress  bool // T >= high_stress_threshold: 0.98/day
	LowStress   bool // T <= low_stress_threshold: 0.99/day
	Sterility   bool // reproductive stage, T >= sterility_risk_threshold: 0.95/day
}

// EvaluateDay computes one day's GDD and stress flags against the profile
// governing that day (the active stage, per StageTracker).
func EvaluateDay(tMean float64, p domain.TemperatureProfile) DayContribution {
	sterile := p.Reproductive && p.SterilityRiskThreshold != nil && tMean >= *p.SterilityRiskThreshold
	return DayContribution{
		GDD:        DailyGDD(tMean, p),
		HighStress: tMean >= p.HighStressThreshold,
		LowStress:  tMean <= p.LowStressThreshold,
		Sterility:  sterile,
	}
}

// StressCounts tallies the stress days accumulated over a window. Because
// each day contributes a fixed per-day multiplier (never a value that
// depends on other days), the window's yield factor can be tracked as
// exact counts instead of a running float product — sliding the window
// is then a plain increment/decrement, with no floating-point drift from
// repeated multiply/divide.
type StressCounts struct {
	HighStressDays int
	LowStressDays  int
	SterilityDays  int
}

// Add folds one day's contribution into the running counts.
func (c StressCounts) Add(d DayContribution) StressCounts {
	if d.HighStress {
		c.HighStressDays++
	}
	if d.LowStress {
		c.LowStressDays++
	}
	if d.Sterility {
		c.SterilityDays++
	}
	return c
}

// Remove undoes Add for the day leaving the window on a slide.
func (c StressCounts) Remove(d DayContribution) StressCounts {
	if d.HighStress {
		c.HighStressDays--
	}
	if d.LowStress {
		c.LowStressDays--
	}
	if d.Sterility {
		c.SterilityDays--
	}
	return c
}

const yieldFactorFloor = 0.3

// YieldFactor applies the 0.98/0.99/0.95 per-day multipliers and floors the
// result at 0.3.
func (c StressCounts) YieldFactor() float64 {
	f := math.Pow(0.98, float64(c.HighStressDays)) *
		math.Pow(0.99, float64(c.LowStressDays)) *
		math.Pow(0.95, float64(c.SterilityDays))
	if f < yieldFactorFloor {
		return yieldFactorFloor
	}
	return f
}

// StageTracker maps cumulative accumulated GDD to the StageRequirement
// whose TemperatureProfile governs the next day's evaluation. Stage
// boundaries are prefix sums of required_gdd across the crop's ordered
// stages.
type StageTracker struct {
	stages     []domain.StageRequirement
	thresholds []float64
}

// NewStageTracker builds a tracker over a crop's ordered stage
// requirements. The crop is assumed valid (Crop.Validate already checked
// strictly increasing order and positive required_gdd).
func NewStageTracker(stages []domain.StageRequirement) *StageTracker {
	thresholds := make([]float64, len(stages))
	running := 0.0
	for i, s := range stages {
		running += s.RequiredGDD
		thresholds[i] = running
	}
	return &StageTracker{stages: stages, thresholds: thresholds}
}

// StageForCumulative returns the stage governing a day when cumulativeBefore
// GDD has already accumulated prior to that day. Once the final stage's
// threshold is passed, the tracker keeps returning the final stage — the
// caller (the period generator) is the one that decides the window is
// complete once total required GDD is reached.
func (t *StageTracker) StageForCumulative(cumulativeBefore float64) domain.StageRequirement {
	for i, threshold := range t.thresholds {
		if cumulativeBefore < threshold {
			return t.stages[i]
		}
	}
	return t.stages[len(t.stages)-1]
}

// Package periods implements the sliding-window period generator (C2) and
// the field-independent template pool (C3) built on top of it.
package periods

import (
	"fmt"
	"sort"
	"time"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/thermal"
)

const isoDate = "2006-01-02"

// DefaultMaxTemplatesPerCrop is the pool-size cap applied when a caller does
// not override it (configuration `max_templates_per_crop`).
const DefaultMaxTemplatesPerCrop = 200

// Generate computes, for every admissible start date in [horizon_start,
// horizon_end], the completion date, growth days, accumulated GDD and yield
// factor for crop against weather. It is the two-pointer O(M) window
// algorithm: each weather day's GDD/stress contribution is computed exactly
// once (the first time it enters a window) and is then reused — never
// recomputed — by every later window that shares it, so each day is touched
// at most twice (entering via j, leaving via i).
//
// A day's governing stage is resolved from the GDD accumulated so far in
// the window that first includes it; because a day is never recomputed for
// a later window, its stage assignment is fixed at that first computation.
// For single-stage crops (the common case) this has no effect; for
// multi-stage crops it keeps the O(M) bound the sliding-window design
// requires instead of re-deriving stage boundaries per window start.
func Generate(crop *domain.Crop, weather *domain.WeatherSeries, horizonStart, horizonEnd time.Time) ([]domain.PeriodTemplate, error) {
	requiredTotal := crop.RequiredTotalGDD()
	tracker := thermal.NewStageTracker(crop.StageRequirements)

	i, ok := weather.FirstIndexOnOrAfter(horizonStart)
	if !ok {
		return nil, fmt.Errorf("%w: crop %q horizon_start %s is after the last available weather day %s",
			domain.ErrWeatherRangeInsufficient, crop.CropID, horizonStart.Format(isoDate), weather.LastDate().Format(isoDate))
	}

	cache := make([]*thermal.DayContribution, weather.Len())
	dayContribution := func(idx int, cumulativeBefore float64) thermal.DayContribution {
		if cache[idx] != nil {
			return *cache[idx]
		}
		var c thermal.DayContribution
		if tMean, ok := weather.At(idx).EffectiveMean(); ok {
			stage := tracker.StageForCumulative(cumulativeBefore)
			c = thermal.EvaluateDay(tMean, stage.Profile)
		}
		cache[idx] = &c
		return c
	}

	var templates []domain.PeriodTemplate
	j := i
	cumulativeGDD := 0.0
	stress := thermal.StressCounts{}

	for i < weather.Len() && !weather.At(i).Date.After(horizonEnd) {
		for cumulativeGDD < requiredTotal {
			if j >= weather.Len() {
				if len(templates) == 0 {
					return nil, fmt.Errorf("%w: crop %q cannot reach required_gdd %.2f within available weather starting %s",
						domain.ErrWeatherRangeInsufficient, crop.CropID, requiredTotal, weather.At(i).Date.Format(isoDate))
				}
				return templates, nil
			}
			c := dayContribution(j, cumulativeGDD)
			cumulativeGDD += c.GDD
			stress = stress.Add(c)
			j++
		}

		completionDate := weather.At(j - 1).Date
		if completionDate.After(horizonEnd) {
			break
		}

		templates = append(templates, domain.PeriodTemplate{
			Crop:           crop,
			StartDate:      weather.At(i).Date,
			CompletionDate: completionDate,
			GrowthDays:     j - i,
			AccumulatedGDD: cumulativeGDD,
			YieldFactor:    stress.YieldFactor(),
		})

		removed := dayContribution(i, 0) // already cached; cumulativeBefore unused on a cache hit
		cumulativeGDD -= removed.GDD
		stress = stress.Remove(removed)
		i++
	}

	return templates, nil
}

// RankAndTruncate orders templates by descending yield_factor (a proxy for
// solution quality ahead of any solver-specific ranking), breaking ties by
// ascending growth_days then ascending start_date for determinism, and
// truncates to maxPerCrop.
func RankAndTruncate(templates []domain.PeriodTemplate, maxPerCrop int) []domain.PeriodTemplate {
	ranked := make([]domain.PeriodTemplate, len(templates))
	copy(ranked, templates)
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].YieldFactor != ranked[b].YieldFactor {
			return ranked[a].YieldFactor > ranked[b].YieldFactor
		}
		if ranked[a].GrowthDays != ranked[b].GrowthDays {
			return ranked[a].GrowthDays < ranked[b].GrowthDays
		}
		return ranked[a].StartDate.Before(ranked[b].StartDate)
	})
	if maxPerCrop > 0 && len(ranked) > maxPerCrop {
		ranked = ranked[:maxPerCrop]
	}
	return ranked
}

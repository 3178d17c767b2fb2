package periods_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/periods"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func constantWeather(start string, days int, tMean float64) *domain.WeatherSeries {
	d := date(start)
	weatherDays := make([]domain.WeatherDay, days)
	for i := 0; i < days; i++ {
		t := tMean
		weatherDays[i] = domain.WeatherDay{Date: d.AddDate(0, 0, i), TemperatureMean: &t}
	}
	series, err := domain.NewWeatherSeries(weatherDays)
	if err != nil {
		panic(err)
	}
	return series
}

func riceCrop() *domain.Crop {
	revenue := 2.0
	return &domain.Crop{
		CropID:      "rice",
		AreaPerUnit: 0.25,
		RevenuePerArea: &revenue,
		CropFamily:  "poaceae",
		StageRequirements: []domain.StageRequirement{
			{
				Order: 1,
				Profile: domain.TemperatureProfile{
					BaseTemperature:     10,
					OptimalMin:          25,
					OptimalMax:          30,
					LowStressThreshold:  15,
					HighStressThreshold: 35,
					FrostThreshold:      2,
					MaxTemperature:      42,
				},
				RequiredGDD: 1000,
			},
		},
	}
}

func TestGenerateSingleFieldLinearWeather(t *testing.T) {
	crop := riceCrop()
	weather := constantWeather("2024-01-01", 120, 25)

	templates, err := periods.Generate(crop, weather, date("2024-01-01"), date("2024-04-30"))
	require.NoError(t, err)
	require.NotEmpty(t, templates)

	first := templates[0]
	assert.Equal(t, date("2024-01-01"), first.StartDate)
	// in the optimal band E=1, so daily_gdd = T-base = 15/day; 1000/15 = 66.67 -> 67 days
	assert.Equal(t, 67, first.GrowthDays)
	assert.InDelta(t, 1.0, first.YieldFactor, 1e-9) // no stress days at T=25
	assert.GreaterOrEqual(t, first.AccumulatedGDD, 1000.0)
}

func TestGenerateWeatherRangeInsufficient(t *testing.T) {
	crop := riceCrop()
	weather := constantWeather("2024-01-01", 10, 25) // far too short to reach required_gdd

	_, err := periods.Generate(crop, weather, date("2024-01-01"), date("2024-12-31"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWeatherRangeInsufficient)
}

func TestGenerateHorizonStartAfterWeatherEnd(t *testing.T) {
	crop := riceCrop()
	weather := constantWeather("2024-01-01", 10, 25)

	_, err := periods.Generate(crop, weather, date("2025-01-01"), date("2025-06-01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWeatherRangeInsufficient)
}

func TestGenerateSlidesAcrossMultipleStartDates(t *testing.T) {
	crop := riceCrop()
	weather := constantWeather("2024-01-01", 200, 25)

	templates, err := periods.Generate(crop, weather, date("2024-01-01"), date("2024-04-10"))
	require.NoError(t, err)
	require.Greater(t, len(templates), 1)

	for i := 1; i < len(templates); i++ {
		assert.True(t, templates[i].StartDate.After(templates[i-1].StartDate))
		assert.Equal(t, templates[0].GrowthDays, templates[i].GrowthDays, "constant weather should produce identical growth windows")
	}
}

func TestRankAndTruncate(t *testing.T) {
	crop := riceCrop()
	templates := []domain.PeriodTemplate{
		{Crop: crop, StartDate: date("2024-01-03"), YieldFactor: 0.9, GrowthDays: 60},
		{Crop: crop, StartDate: date("2024-01-01"), YieldFactor: 1.0, GrowthDays: 65},
		{Crop: crop, StartDate: date("2024-01-02"), YieldFactor: 1.0, GrowthDays: 60},
	}

	ranked := periods.RankAndTruncate(templates, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, date("2024-01-02"), ranked[0].StartDate) // yield_factor tie broken by growth_days
	assert.Equal(t, date("2024-01-01"), ranked[1].StartDate)
}

func TestPoolTopAndNear(t *testing.T) {
	crop := riceCrop()
	weather := constantWeather("2024-01-01", 200, 25)
	templates, err := periods.Generate(crop, weather, date("2024-01-01"), date("2024-04-10"))
	require.NoError(t, err)

	ranked := periods.RankAndTruncate(templates, periods.DefaultMaxTemplatesPerCrop)
	pool := periods.NewPool()
	pool.Add(crop.CropID, ranked)

	top3 := pool.Top(crop.CropID, 3)
	assert.Len(t, top3, 3)

	near := pool.Near(crop.CropID, date("2024-01-05"), 2)
	for _, tmpl := range near {
		diff := tmpl.StartDate.Sub(date("2024-01-05"))
		assert.LessOrEqual(t, diff.Abs(), 2*24*time.Hour)
	}
	assert.NotEmpty(t, near)
}

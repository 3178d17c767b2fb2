package planner_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-gardening-assistant/cultivation-planner/config"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/planner"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/sources"
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

func riceCrop() domain.Crop {
	revenue := 2.0
	return domain.Crop{
		CropID:         "rice",
		AreaPerUnit:    0.25,
		RevenuePerArea: &revenue,
		CropFamily:     "poaceae",
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

func defaultOptimizerConfig() config.OptimizerConfig {
	return config.OptimizerConfig{
		CandidateGenerationStrategy: config.StrategyPeriodTemplate,
		MaxTemplatesPerCrop:         20,
		TemplateLimits:              config.TemplateLimits{Greedy: 10, DP: 10},
		Algorithm:                   config.AlgorithmDP,
		EnableLocalSearch:           false,
		MaxLocalSearchIterations:    10,
		MaxNeighborsPerIteration:    50,
		EnableNeighborSampling:      true,
		OperatorWeights:             config.DefaultOperatorWeights(),
		EnableALNS:                  false,
		ALNSIterations:              20,
		ALNSRemovalRate:             0.3,
		MaxComputationTime:          5 * time.Second,
		AreaLevels:                  []float64{1.0},
		MinProfitRateThreshold:      -1,
		EnableCandidateFiltering:    false,
	}
}

func TestOptimizeProducesProfitableSchedule(t *testing.T) {
	cfg := defaultOptimizerConfig()
	fieldSrc := sources.StaticFieldSource{Values: []domain.Field{{FieldID: "f1", Area: 100, DailyFixedCost: 1}}}
	cropSrc := sources.StaticCropSource{Values: []domain.Crop{riceCrop()}}
	weatherSrc := sources.StaticWeatherSource{Series: constantWeather("2024-01-01", 150, 25)}

	orch, err := planner.NewOrchestrator(fieldSrc, cropSrc, weatherSrc, nil, cfg)
	require.NoError(t, err)

	result, err := orch.Optimize(context.Background(), planner.PlanRequest{
		HorizonStart: date("2024-01-01"),
		HorizonEnd:   date("2024-04-01"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.FieldSchedules)
	assert.Greater(t, result.TotalProfit, 0.0)
	assert.Equal(t, "dp", result.AlgorithmName)
}

func TestOptimizeRejectsNilCollaborators(t *testing.T) {
	_, err := planner.NewOrchestrator(nil, nil, nil, nil, defaultOptimizerConfig())
	assert.Error(t, err)
}

func TestOptimizeReportsWeatherRangeInsufficient(t *testing.T) {
	cfg := defaultOptimizerConfig()
	fieldSrc := sources.StaticFieldSource{Values: []domain.Field{{FieldID: "f1", Area: 100, DailyFixedCost: 1}}}
	cropSrc := sources.StaticCropSource{Values: []domain.Crop{riceCrop()}}
	// Far too short a weather window to ever reach required_gdd.
	weatherSrc := sources.StaticWeatherSource{Series: constantWeather("2024-01-01", 10, 25)}

	orch, err := planner.NewOrchestrator(fieldSrc, cropSrc, weatherSrc, nil, cfg)
	require.NoError(t, err)

	_, err = orch.Optimize(context.Background(), planner.PlanRequest{
		HorizonStart: date("2024-01-01"),
		HorizonEnd:   date("2024-01-05"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWeatherRangeInsufficient)
}

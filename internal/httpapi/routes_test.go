package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-gardening-assistant/cultivation-planner/config"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/httpapi"
	"github.com/urban-gardening-assistant/cultivation-planner/pkg/dto"
)

func testOptimizerConfig() config.OptimizerConfig {
	return config.OptimizerConfig{
		CandidateGenerationStrategy: config.StrategyPeriodTemplate,
		MaxTemplatesPerCrop:         20,
		TemplateLimits:              config.TemplateLimits{Greedy: 10, DP: 10},
		Algorithm:                   config.AlgorithmDP,
		MaxNeighborsPerIteration:    50,
		EnableNeighborSampling:      true,
		OperatorWeights:             config.DefaultOperatorWeights(),
		ALNSIterations:              10,
		ALNSRemovalRate:             0.3,
		MaxComputationTime:          5 * time.Second,
		AreaLevels:                  []float64{1.0},
		MinProfitRateThreshold:      -1,
	}
}

func weatherDays(start time.Time, days int, mean float64) []dto.WeatherDayPayload {
	out := make([]dto.WeatherDayPayload, days)
	for i := 0; i < days; i++ {
		m := mean
		out[i] = dto.WeatherDayPayload{Date: start.AddDate(0, 0, i), TemperatureMean: &m}
	}
	return out
}

func TestCreatePlanReturnsSchedule(t *testing.T) {
	router := httpapi.NewRouter(testOptimizerConfig(), nil)
	server := httptest.NewServer(router)
	defer server.Close()

	revenue := 2.0
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	req := dto.PlanRequest{
		HorizonStart: start,
		HorizonEnd:   start.AddDate(0, 3, 0),
		Fields:       []dto.FieldPayload{{FieldID: "f1", Area: 100}},
		Crops: []dto.CropPayload{{
			CropID:         "rice",
			AreaPerUnit:    0.25,
			RevenuePerArea: &revenue,
			CropFamily:     "poaceae",
			StageRequirements: []dto.StageRequirementPayload{{
				Order:               1,
				BaseTemperature:     10,
				OptimalMin:          25,
				OptimalMax:          30,
				LowStressThreshold:  15,
				HighStressThreshold: 35,
				FrostThreshold:      2,
				MaxTemperature:      42,
				RequiredGDD:         1000,
			}},
		}},
		Weather: weatherDays(start, 150, 25),
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/v1/plans", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.PlanResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.FieldSchedules)
	assert.Greater(t, out.TotalProfit, 0.0)
}

func TestCreatePlanRejectsMissingFields(t *testing.T) {
	router := httpapi.NewRouter(testOptimizerConfig(), nil)
	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/plans", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

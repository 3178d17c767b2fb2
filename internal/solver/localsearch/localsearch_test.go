package localsearch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/allocation"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/periods"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver/localsearch"
)

func d(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func defaultConfig() localsearch.Config {
	return localsearch.Config{
		MaxIterations:            20,
		MaxNeighborsPerIteration: 200,
		EnableNeighborSampling:   true,
		OperatorWeights: map[string]float64{
			"field_move": 1, "field_swap": 1, "crop_change": 1,
			"crop_insert": 1, "period_shift": 1, "area_adjust": 1, "remove": 1,
		},
		MaxNoImprovement: 10,
	}
}

func TestImproveRelocatesToaCheaperField(t *testing.T) {
	rev := 10.0
	crop := domain.Crop{CropID: "tomato", CropFamily: "solanaceae", RevenuePerArea: &rev}

	expensive := domain.Field{FieldID: "expensive", Area: 1000, DailyFixedCost: 50, FallowPeriodDays: 0}
	cheap := domain.Field{FieldID: "cheap", Area: 1000, DailyFixedCost: 5, FallowPeriodDays: 0}
	fields := []domain.Field{expensive, cheap}
	crops := []domain.Crop{crop}

	tmpl := domain.PeriodTemplate{Crop: &crop, StartDate: d("2024-01-01"), CompletionDate: d("2024-01-11"), GrowthDays: 10, YieldFactor: 1.0}
	pool := periods.NewPool()
	pool.Add("tomato", []domain.PeriodTemplate{tmpl})

	initial := allocation.NewPartialSolution()
	initial.Accept(allocation.Placement{
		FieldID: "expensive", Crop: &crop, StartDate: tmpl.StartDate, CompletionDate: tmpl.CompletionDate,
		GrowthDays: 10, YieldFactor: 1.0, AreaUsed: 1000, Revenue: 10000, Profit: 10000 - 10*50,
	})

	before := 0.0
	for _, p := range initial.AllPlacements() {
		before += p.Profit
	}

	result := localsearch.Improve(initial, fields, crops, pool, nil, defaultConfig())

	after := 0.0
	for _, p := range result.Solution.AllPlacements() {
		after += p.Profit
	}
	assert.GreaterOrEqual(t, after, before)
	assert.NotEmpty(t, result.Solution.FieldPlacements("cheap"))
}

func TestImproveNeverWorsensSolution(t *testing.T) {
	rev := 1.0
	crop := domain.Crop{CropID: "rice", CropFamily: "poaceae", RevenuePerArea: &rev}
	field := domain.Field{FieldID: "f1", Area: 10, DailyFixedCost: 1000, FallowPeriodDays: 0}
	fields := []domain.Field{field}
	crops := []domain.Crop{crop}

	tmpl := domain.PeriodTemplate{Crop: &crop, StartDate: d("2024-01-01"), CompletionDate: d("2024-01-02"), GrowthDays: 1, YieldFactor: 1.0}
	pool := periods.NewPool()
	pool.Add("rice", []domain.PeriodTemplate{tmpl})

	initial := allocation.NewPartialSolution()
	initial.Accept(allocation.Placement{
		FieldID: "f1", Crop: &crop, StartDate: tmpl.StartDate, CompletionDate: tmpl.CompletionDate,
		GrowthDays: 1, YieldFactor: 1.0, AreaUsed: 10, Revenue: 10, Profit: 10 - 1000,
	})
	before := initial.AllPlacements()[0].Profit

	result := localsearch.Improve(initial, fields, crops, pool, nil, defaultConfig())
	require.NotNil(t, result.Solution)

	after := 0.0
	for _, p := range result.Solution.AllPlacements() {
		after += p.Profit
	}
	assert.GreaterOrEqual(t, after, before)
}

func TestImproveEmptySolutionStaysEmpty(t *testing.T) {
	initial := allocation.NewPartialSolution()
	result := localsearch.Improve(initial, nil, nil, periods.NewPool(), nil, defaultConfig())
	assert.Empty(t, result.Solution.AllPlacements())
}

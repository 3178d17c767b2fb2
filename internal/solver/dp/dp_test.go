package dp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver/dp"
)

func d(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestSolvePicksHigherProfitOfTwoOverlappingCandidates(t *testing.T) {
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 100, FallowPeriodDays: 0}
	revLow, revHigh := 2.0, 8.0
	cropLow := domain.Crop{CropID: "low", CropFamily: "a", RevenuePerArea: &revLow}
	cropHigh := domain.Crop{CropID: "high", CropFamily: "b", RevenuePerArea: &revHigh}

	tmplLow := domain.PeriodTemplate{Crop: &cropLow, StartDate: d("2024-01-01"), CompletionDate: d("2024-01-20"), GrowthDays: 20, YieldFactor: 1.0}
	tmplHigh := domain.PeriodTemplate{Crop: &cropHigh, StartDate: d("2024-01-05"), CompletionDate: d("2024-01-25"), GrowthDays: 20, YieldFactor: 1.0}

	candidates := []*domain.AllocationCandidate{
		{Field: &field, Crop: &cropLow, Template: &tmplLow, AreaUsed: 1000},
		{Field: &field, Crop: &cropHigh, Template: &tmplHigh, AreaUsed: 1000},
	}

	result := dp.Solve(candidates, nil)
	placements := result.Solution.FieldPlacements("f1")
	require.Len(t, placements, 1)
	assert.Equal(t, "high", placements[0].Crop.CropID)
}

func TestSolveTakesBothWhenNonOverlapping(t *testing.T) {
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 100, FallowPeriodDays: 0}
	rev := 5.0
	crop := domain.Crop{CropID: "rice", CropFamily: "poaceae", RevenuePerArea: &rev}

	tmplA := domain.PeriodTemplate{Crop: &crop, StartDate: d("2024-01-01"), CompletionDate: d("2024-01-10"), GrowthDays: 10, YieldFactor: 1.0}
	tmplB := domain.PeriodTemplate{Crop: &crop, StartDate: d("2024-01-11"), CompletionDate: d("2024-01-20"), GrowthDays: 10, YieldFactor: 1.0}

	candidates := []*domain.AllocationCandidate{
		{Field: &field, Crop: &crop, Template: &tmplA, AreaUsed: 1000},
		{Field: &field, Crop: &crop, Template: &tmplB, AreaUsed: 1000},
	}

	result := dp.Solve(candidates, nil)
	assert.Len(t, result.Solution.FieldPlacements("f1"), 2)
}

func TestSolveReconcilesDemandCapByDroppingWorstPlacement(t *testing.T) {
	fieldA := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 100, FallowPeriodDays: 0}
	fieldB := domain.Field{FieldID: "f2", Area: 1000, DailyFixedCost: 900, FallowPeriodDays: 0}
	rev := 10.0
	maxRevenue := 12000.0
	crop := domain.Crop{CropID: "tomato", CropFamily: "solanaceae", RevenuePerArea: &rev, MaxRevenue: &maxRevenue}

	tmplA := domain.PeriodTemplate{Crop: &crop, StartDate: d("2024-01-01"), CompletionDate: d("2024-01-10"), GrowthDays: 10, YieldFactor: 1.0}
	tmplB := domain.PeriodTemplate{Crop: &crop, StartDate: d("2024-02-01"), CompletionDate: d("2024-02-10"), GrowthDays: 10, YieldFactor: 1.0}

	candidates := []*domain.AllocationCandidate{
		{Field: &fieldA, Crop: &crop, Template: &tmplA, AreaUsed: 1000}, // revenue 10000, cheap cost
		{Field: &fieldB, Crop: &crop, Template: &tmplB, AreaUsed: 1000}, // revenue 10000, expensive cost -> worse profit_rate
	}

	result := dp.Solve(candidates, nil)
	var totalRevenue float64
	for _, p := range result.Solution.AllPlacements() {
		totalRevenue += p.Revenue
	}
	assert.LessOrEqual(t, totalRevenue, maxRevenue+1e-6)
}

func TestSolveEmptyInputReturnsEmptySolution(t *testing.T) {
	result := dp.Solve(nil, nil)
	assert.Empty(t, result.Solution.AllPlacements())
}

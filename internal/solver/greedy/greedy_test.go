package greedy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver/greedy"
)

func d(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestSolveAcceptsSingleFeasibleCandidate(t *testing.T) {
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 5000, FallowPeriodDays: 28}
	revenue := 2.0
	crop := domain.Crop{CropID: "rice", CropFamily: "poaceae", RevenuePerArea: &revenue}
	tmpl := domain.PeriodTemplate{Crop: &crop, StartDate: d("2024-01-01"), CompletionDate: d("2024-03-08"), GrowthDays: 67, YieldFactor: 1.0}

	candidates := []*domain.AllocationCandidate{
		{Field: &field, Crop: &crop, Template: &tmpl, AreaUsed: 1000},
	}

	result := greedy.Solve(candidates, nil, time.Time{})
	placements := result.Solution.FieldPlacements("f1")
	require.Len(t, placements, 1)
	assert.InDelta(t, 1000*2.0-67*5000.0, placements[0].Profit, 1e-6)
}

func TestSolvePicksHigherProfitRateFirst(t *testing.T) {
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 100, FallowPeriodDays: 0}
	revX, revY := 3.0, 5.0
	cropX := domain.Crop{CropID: "x", CropFamily: "a", RevenuePerArea: &revX}
	cropY := domain.Crop{CropID: "y", CropFamily: "b", RevenuePerArea: &revY}

	tmplX := domain.PeriodTemplate{Crop: &cropX, StartDate: d("2024-01-01"), CompletionDate: d("2024-01-10"), GrowthDays: 10, YieldFactor: 1.0}
	tmplY := domain.PeriodTemplate{Crop: &cropY, StartDate: d("2024-01-01"), CompletionDate: d("2024-01-10"), GrowthDays: 10, YieldFactor: 1.0}

	candidates := []*domain.AllocationCandidate{
		{Field: &field, Crop: &cropX, Template: &tmplX, AreaUsed: 1000},
		{Field: &field, Crop: &cropY, Template: &tmplY, AreaUsed: 1000},
	}

	result := greedy.Solve(candidates, nil, time.Time{})
	placements := result.Solution.FieldPlacements("f1")
	require.Len(t, placements, 1)
	assert.Equal(t, "y", placements[0].Crop.CropID) // higher revenue_per_area wins on overlapping slot
}

func TestSolveNoFeasibleCandidateReturnsEmpty(t *testing.T) {
	field := domain.Field{FieldID: "f1", Area: 10, DailyFixedCost: 100}
	revenue := 2.0
	crop := domain.Crop{CropID: "rice", CropFamily: "poaceae", RevenuePerArea: &revenue}
	tmpl := domain.PeriodTemplate{Crop: &crop, StartDate: d("2024-01-01"), CompletionDate: d("2024-01-10"), GrowthDays: 10, YieldFactor: 1.0}

	candidates := []*domain.AllocationCandidate{
		{Field: &field, Crop: &crop, Template: &tmpl, AreaUsed: 1000}, // exceeds field.Area
	}

	result := greedy.Solve(candidates, nil, time.Time{})
	assert.Empty(t, result.Solution.AllPlacements())
}

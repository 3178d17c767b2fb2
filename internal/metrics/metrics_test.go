package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/allocation"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/metrics"
)

func d(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func revenueCrop(id string, revenuePerArea float64, maxRevenue *float64) *domain.Crop {
	r := revenuePerArea
	return &domain.Crop{CropID: id, CropFamily: "solanaceae", RevenuePerArea: &r, MaxRevenue: maxRevenue}
}

func candidate(field *domain.Field, crop *domain.Crop, start, completion string, growthDays int, area, yieldFactor float64) *domain.AllocationCandidate {
	return &domain.AllocationCandidate{
		Field: field,
		Crop:  crop,
		Template: &domain.PeriodTemplate{
			Crop: crop, StartDate: d(start), CompletionDate: d(completion), GrowthDays: growthDays, YieldFactor: yieldFactor,
		},
		AreaUsed: area,
	}
}

func TestComputeBasicProfit(t *testing.T) {
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 5000}
	crop := revenueCrop("rice", 2, nil)
	cand := candidate(&field, crop, "2024-01-01", "2024-03-08", 67, 1000, 1.0)

	m := metrics.Compute(cand, metrics.Context{Solution: allocation.NewPartialSolution()})

	assert.InDelta(t, 67*5000.0, m.Cost, 1e-9)
	assert.InDelta(t, 1000*2*1.0, m.BaseRevenue, 1e-9)
	assert.InDelta(t, m.Revenue-m.Cost, m.Profit, 1e-9)
}

func TestComputeZeroCostProfitRateGuard(t *testing.T) {
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 0}
	crop := revenueCrop("rice", 2, nil)
	cand := candidate(&field, crop, "2024-01-01", "2024-03-08", 67, 1000, 1.0)

	m := metrics.Compute(cand, metrics.Context{Solution: allocation.NewPartialSolution()})
	assert.Equal(t, 0.0, m.Cost)
	assert.Equal(t, 0.0, m.ProfitRate)
}

func TestComputeNullRevenueIsNegativeCost(t *testing.T) {
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 100}
	crop := &domain.Crop{CropID: "experimental", CropFamily: "misc"}
	cand := candidate(&field, crop, "2024-01-01", "2024-01-10", 10, 1000, 1.0)

	m := metrics.Compute(cand, metrics.Context{Solution: allocation.NewPartialSolution()})
	assert.Equal(t, -1000.0, m.Profit)
}

func TestComputeDemandCapClamps(t *testing.T) {
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 100}
	maxRevenue := 100000.0
	crop := revenueCrop("tomato", 10, &maxRevenue)

	solution := allocation.NewPartialSolution()
	solution.Accept(allocation.Placement{FieldID: "f2", Crop: crop, StartDate: d("2023-01-01"), CompletionDate: d("2023-02-01"), AreaUsed: 9000, Revenue: 90000})

	cand := candidate(&field, crop, "2024-01-01", "2024-01-10", 10, 2000, 1.0) // base_revenue = 20000, would exceed cap
	m := metrics.Compute(cand, metrics.Context{Solution: solution})

	assert.InDelta(t, 10000.0, m.Revenue, 1e-9)
	assert.True(t, m.DemandCapped)
}

func TestComputeMaxRevenueZeroRejectsAllRevenue(t *testing.T) {
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 100}
	zero := 0.0
	crop := revenueCrop("tomato", 10, &zero)
	cand := candidate(&field, crop, "2024-01-01", "2024-01-10", 10, 500, 1.0)

	m := metrics.Compute(cand, metrics.Context{Solution: allocation.NewPartialSolution()})
	assert.Equal(t, 0.0, m.Revenue)
	assert.Equal(t, -1000.0, m.Profit)
}

func TestComputeContinuousCultivationPenalty(t *testing.T) {
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 100}
	crop := revenueCrop("tomato", 10, nil)

	solution := allocation.NewPartialSolution()
	solution.Accept(allocation.Placement{FieldID: "f1", Crop: crop, StartDate: d("2023-01-01"), CompletionDate: d("2023-02-01"), AreaUsed: 500, Revenue: 5000})

	rules := []domain.InteractionRule{
		{RuleType: domain.RuleContinuousCultivation, CropFamilyA: "solanaceae", CropFamilyB: "solanaceae", ImpactRatio: 0.7, IsDirectional: false},
	}
	cand := candidate(&field, crop, "2023-03-01", "2023-04-01", 31, 500, 1.0)
	m := metrics.Compute(cand, metrics.Context{Solution: solution, Rules: rules})

	assert.InDelta(t, 500*10*0.7, m.Revenue, 1e-9)
}

func TestComputeContinuousCultivationZeroRatioForbidsRotation(t *testing.T) {
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 100}
	crop := revenueCrop("tomato", 10, nil)

	solution := allocation.NewPartialSolution()
	solution.Accept(allocation.Placement{FieldID: "f1", Crop: crop, StartDate: d("2023-01-01"), CompletionDate: d("2023-02-01"), AreaUsed: 500, Revenue: 5000})

	rules := []domain.InteractionRule{
		{RuleType: domain.RuleContinuousCultivation, CropFamilyA: "solanaceae", CropFamilyB: "solanaceae", ImpactRatio: 0, IsDirectional: false},
	}
	cand := candidate(&field, crop, "2023-03-01", "2023-04-01", 31, 500, 1.0)
	m := metrics.Compute(cand, metrics.Context{Solution: solution, Rules: rules})

	assert.Equal(t, 0.0, m.Revenue)
}

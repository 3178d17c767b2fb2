package alns_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/allocation"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/periods"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/solver/alns"
)

func d(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestImproveNeverWorsensIncumbent(t *testing.T) {
	rev := 10.0
	crop := domain.Crop{CropID: "tomato", CropFamily: "solanaceae", RevenuePerArea: &rev}
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 5, FallowPeriodDays: 0}
	fields := []domain.Field{field}
	crops := []domain.Crop{crop}

	tmpl := domain.PeriodTemplate{Crop: &crop, StartDate: d("2024-01-01"), CompletionDate: d("2024-01-11"), GrowthDays: 10, YieldFactor: 1.0}
	pool := periods.NewPool()
	pool.Add("tomato", []domain.PeriodTemplate{tmpl})

	initial := allocation.NewPartialSolution()
	initial.Accept(allocation.Placement{
		FieldID: "f1", Crop: &crop, StartDate: tmpl.StartDate, CompletionDate: tmpl.CompletionDate,
		GrowthDays: 10, YieldFactor: 1.0, AreaUsed: 1000, Revenue: 10000, Profit: 10000 - 50,
	})
	before := 0.0
	for _, p := range initial.AllPlacements() {
		before += p.Profit
	}

	result := alns.Improve(initial, fields, crops, pool, nil, alns.Config{Iterations: 30, RemovalRate: 0.5, RandomSeed: 42})

	after := 0.0
	for _, p := range result.Solution.AllPlacements() {
		after += p.Profit
	}
	assert.GreaterOrEqual(t, after, before)
}

func TestImproveDeterministicForFixedSeed(t *testing.T) {
	rev := 10.0
	crop := domain.Crop{CropID: "tomato", CropFamily: "solanaceae", RevenuePerArea: &rev}
	field := domain.Field{FieldID: "f1", Area: 1000, DailyFixedCost: 5, FallowPeriodDays: 0}
	fields := []domain.Field{field}
	crops := []domain.Crop{crop}

	tmpl := domain.PeriodTemplate{Crop: &crop, StartDate: d("2024-01-01"), CompletionDate: d("2024-01-11"), GrowthDays: 10, YieldFactor: 1.0}
	pool := periods.NewPool()
	pool.Add("tomato", []domain.PeriodTemplate{tmpl})

	run := func() float64 {
		initial := allocation.NewPartialSolution()
		initial.Accept(allocation.Placement{
			FieldID: "f1", Crop: &crop, StartDate: tmpl.StartDate, CompletionDate: tmpl.CompletionDate,
			GrowthDays: 10, YieldFactor: 1.0, AreaUsed: 1000, Revenue: 10000, Profit: 10000 - 50,
		})
		result := alns.Improve(initial, fields, crops, pool, nil, alns.Config{Iterations: 20, RemovalRate: 0.5, RandomSeed: 42})
		total := 0.0
		for _, p := range result.Solution.AllPlacements() {
			total += p.Profit
		}
		return total
	}

	assert.Equal(t, run(), run())
}

func TestImproveEmptySolutionStaysEmpty(t *testing.T) {
	initial := allocation.NewPartialSolution()
	result := alns.Improve(initial, nil, nil, periods.NewPool(), nil, alns.Config{Iterations: 10, RemovalRate: 0.3, RandomSeed: 0})
	assert.Empty(t, result.Solution.AllPlacements())
}

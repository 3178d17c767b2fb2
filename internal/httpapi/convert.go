package httpapi

import (
	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/planner"
	"github.com/urban-gardening-assistant/cultivation-planner/pkg/dto"
)

func toDomainInputs(req dto.PlanRequest) ([]domain.Field, []domain.Crop, *domain.WeatherSeries, []domain.InteractionRule, error) {
	fields := make([]domain.Field, 0, len(req.Fields))
	for _, f := range req.Fields {
		fields = append(fields, domain.Field{
			FieldID:          f.FieldID,
			Name:             f.Name,
			Area:             f.Area,
			DailyFixedCost:   f.DailyFixedCost,
			FallowPeriodDays: f.FallowPeriodDays,
		})
	}

	crops := make([]domain.Crop, 0, len(req.Crops))
	for _, c := range req.Crops {
		stages := make([]domain.StageRequirement, 0, len(c.StageRequirements))
		for _, s := range c.StageRequirements {
			stages = append(stages, domain.StageRequirement{
				Order: s.Order,
				Profile: domain.TemperatureProfile{
					BaseTemperature:        s.BaseTemperature,
					OptimalMin:             s.OptimalMin,
					OptimalMax:             s.OptimalMax,
					LowStressThreshold:     s.LowStressThreshold,
					HighStressThreshold:    s.HighStressThreshold,
					FrostThreshold:         s.FrostThreshold,
					MaxTemperature:         s.MaxTemperature,
					SterilityRiskThreshold: s.SterilityRiskThreshold,
					Reproductive:           s.Reproductive,
				},
				RequiredGDD:      s.RequiredGDD,
				SunshineHoursMin: s.SunshineHoursMin,
				SunshineHoursMax: s.SunshineHoursMax,
			})
		}
		crops = append(crops, domain.Crop{
			CropID:            c.CropID,
			Variety:           c.Variety,
			AreaPerUnit:       c.AreaPerUnit,
			RevenuePerArea:    c.RevenuePerArea,
			MaxRevenue:        c.MaxRevenue,
			CropFamily:        c.CropFamily,
			StageRequirements: stages,
		})
	}

	weatherDays := make([]domain.WeatherDay, 0, len(req.Weather))
	for _, w := range req.Weather {
		weatherDays = append(weatherDays, domain.WeatherDay{
			Date:            w.Date,
			TemperatureMean: w.TemperatureMean,
			TemperatureMax:  w.TemperatureMax,
			TemperatureMin:  w.TemperatureMin,
		})
	}
	weather, err := domain.NewWeatherSeries(weatherDays)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	rules := make([]domain.InteractionRule, 0, len(req.Rules))
	for _, rule := range req.Rules {
		rules = append(rules, domain.InteractionRule{
			RuleType:      domain.InteractionRuleType(rule.RuleType),
			CropFamilyA:   rule.CropFamilyA,
			CropFamilyB:   rule.CropFamilyB,
			ImpactRatio:   rule.ImpactRatio,
			IsDirectional: rule.IsDirectional,
		})
	}

	return fields, crops, weather, rules, nil
}

func fromDomainResult(result domain.OptimizationResult) dto.PlanResponse {
	schedules := make([]dto.FieldScheduleResponse, 0, len(result.FieldSchedules))
	for _, s := range result.FieldSchedules {
		allocations := make([]dto.CropAllocationResponse, 0, len(s.Allocations))
		for _, a := range s.Allocations {
			allocations = append(allocations, dto.CropAllocationResponse{
				CropID:         a.CropID,
				StartDate:      a.StartDate,
				CompletionDate: a.CompletionDate,
				GrowthDays:     a.GrowthDays,
				AreaUsed:       a.AreaUsed,
				AccumulatedGDD: a.AccumulatedGDD,
				Revenue:        a.Revenue,
				Profit:         a.Profit,
			})
		}
		schedules = append(schedules, dto.FieldScheduleResponse{FieldID: s.FieldID, Allocations: allocations})
	}
	return dto.PlanResponse{
		FieldSchedules:          schedules,
		TotalCost:               result.TotalCost,
		TotalRevenue:            result.TotalRevenue,
		TotalProfit:             result.TotalProfit,
		AverageFieldUtilization: result.AverageFieldUtilization,
		CropQuantities:          result.CropQuantities,
		AlgorithmName:           result.AlgorithmName,
		ComputationTimeSeconds:  result.ComputationTimeSeconds,
		TimeLimitReached:        result.TimeLimitReached,
	}
}

func fromRecord(record *planner.OptimizationResultRecord) dto.PlanResponse {
	byField := make(map[string][]dto.CropAllocationResponse)
	var order []string
	seen := make(map[string]bool)
	for _, a := range record.Allocations {
		if !seen[a.FieldID] {
			seen[a.FieldID] = true
			order = append(order, a.FieldID)
		}
		byField[a.FieldID] = append(byField[a.FieldID], dto.CropAllocationResponse{
			CropID:         a.CropID,
			StartDate:      a.StartDate,
			CompletionDate: a.CompletionDate,
			AreaUsed:       a.AreaUsed,
			Revenue:        a.Revenue,
			Profit:         a.Profit,
		})
	}
	schedules := make([]dto.FieldScheduleResponse, 0, len(order))
	for _, fieldID := range order {
		schedules = append(schedules, dto.FieldScheduleResponse{FieldID: fieldID, Allocations: byField[fieldID]})
	}
	return dto.PlanResponse{
		ID:                      record.ID,
		FieldSchedules:          schedules,
		TotalCost:               record.TotalCost,
		TotalRevenue:            record.TotalRevenue,
		TotalProfit:             record.TotalProfit,
		AverageFieldUtilization: record.AverageFieldUtilization,
		AlgorithmName:           record.AlgorithmName,
		ComputationTimeSeconds:  record.ComputationTimeSeconds,
		TimeLimitReached:        record.TimeLimitReached,
	}
}

// Package dto defines the request/response payloads the reference HTTP
// binding exchanges with callers, independent of the internal domain types
// the orchestrator works with.
package dto

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports which request field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PlanRequest is the POST /v1/plans request payload: a planning horizon,
// the candidate fields and crops, a weather series, and optional
// interaction rules.
type PlanRequest struct {
	HorizonStart time.Time          `json:"horizon_start" validate:"required"`
	HorizonEnd   time.Time          `json:"horizon_end" validate:"required,gtfield=HorizonStart"`
	Fields       []FieldPayload     `json:"fields" validate:"required,min=1,dive"`
	Crops        []CropPayload      `json:"crops" validate:"required,min=1,dive"`
	Weather      []WeatherDayPayload `json:"weather" validate:"required,min=1,dive"`
	Rules        []InteractionRulePayload `json:"interaction_rules" validate:"dive"`
}

// FieldPayload is one field's wire representation.
type FieldPayload struct {
	FieldID          string  `json:"field_id" validate:"required"`
	Name             string  `json:"name"`
	Area             float64 `json:"area" validate:"required,gt=0"`
	DailyFixedCost   float64 `json:"daily_fixed_cost" validate:"gte=0"`
	FallowPeriodDays int     `json:"fallow_period_days" validate:"gte=0"`
}

// StageRequirementPayload is one ordered growth stage's wire representation.
type StageRequirementPayload struct {
	Order                  int      `json:"order" validate:"required,min=1"`
	BaseTemperature        float64  `json:"base_temperature"`
	OptimalMin             float64  `json:"optimal_min"`
	OptimalMax             float64  `json:"optimal_max"`
	LowStressThreshold     float64  `json:"low_stress_threshold"`
	HighStressThreshold    float64  `json:"high_stress_threshold"`
	FrostThreshold         float64  `json:"frost_threshold"`
	MaxTemperature         float64  `json:"max_temperature" validate:"required"`
	SterilityRiskThreshold *float64 `json:"sterility_risk_threshold,omitempty"`
	Reproductive           bool     `json:"reproductive"`
	RequiredGDD            float64  `json:"required_gdd" validate:"required,gt=0"`
	SunshineHoursMin       *float64 `json:"sunshine_hours_min,omitempty"`
	SunshineHoursMax       *float64 `json:"sunshine_hours_max,omitempty"`
}

// CropPayload is one crop's wire representation.
type CropPayload struct {
	CropID            string                    `json:"crop_id" validate:"required"`
	Variety           string                    `json:"variety"`
	AreaPerUnit       float64                   `json:"area_per_unit" validate:"gte=0"`
	RevenuePerArea    *float64                  `json:"revenue_per_area,omitempty"`
	MaxRevenue        *float64                  `json:"max_revenue,omitempty"`
	CropFamily        string                    `json:"crop_family"`
	StageRequirements []StageRequirementPayload `json:"stage_requirements" validate:"required,min=1,dive"`
}

// WeatherDayPayload is one day's wire representation.
type WeatherDayPayload struct {
	Date            time.Time `json:"date" validate:"required"`
	TemperatureMean *float64  `json:"temperature_mean,omitempty"`
	TemperatureMax  *float64  `json:"temperature_max,omitempty"`
	TemperatureMin  *float64  `json:"temperature_min,omitempty"`
}

// InteractionRulePayload is one crop-family interaction rule's wire
// representation.
type InteractionRulePayload struct {
	RuleType      string  `json:"rule_type" validate:"required,oneof=continuous_cultivation companion rotation_benefit"`
	CropFamilyA   string  `json:"crop_family_a" validate:"required"`
	CropFamilyB   string  `json:"crop_family_b" validate:"required"`
	ImpactRatio   float64 `json:"impact_ratio"`
	IsDirectional bool    `json:"is_directional"`
}

// Validate runs struct-tag validation and reports the first failing field.
func (r *PlanRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
			first := validationErrors[0]
			return &ValidationError{Field: first.Field(), Message: fmt.Sprintf("failed %q validation", first.Tag())}
		}
		return err
	}
	return nil
}

// CropAllocationResponse is one allocation's wire representation.
type CropAllocationResponse struct {
	CropID         string  `json:"crop_id"`
	StartDate      string  `json:"start_date"`
	CompletionDate string  `json:"completion_date"`
	GrowthDays     int     `json:"growth_days"`
	AreaUsed       float64 `json:"area_used"`
	AccumulatedGDD float64 `json:"accumulated_gdd"`
	Revenue        float64 `json:"revenue"`
	Profit         float64 `json:"profit"`
}

// FieldScheduleResponse is one field's wire representation of its
// allocations.
type FieldScheduleResponse struct {
	FieldID     string                   `json:"field_id"`
	Allocations []CropAllocationResponse `json:"allocations"`
}

// PlanResponse is the GET /v1/plans/{id} and POST /v1/plans response
// payload.
type PlanResponse struct {
	ID                      string                  `json:"id,omitempty"`
	FieldSchedules          []FieldScheduleResponse `json:"field_schedules"`
	TotalCost               float64                 `json:"total_cost"`
	TotalRevenue            float64                 `json:"total_revenue"`
	TotalProfit             float64                 `json:"total_profit"`
	AverageFieldUtilization float64                 `json:"average_field_utilization"`
	CropQuantities          map[string]float64      `json:"crop_quantities"`
	AlgorithmName           string                  `json:"algorithm_name"`
	ComputationTimeSeconds  float64                 `json:"computation_time_seconds"`
	TimeLimitReached        bool                    `json:"time_limit_reached"`
}

// ErrorResponse is the uniform error payload the HTTP binding returns.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

package domain

// OptimizationResult is the immutable output of one orchestrator run.
type OptimizationResult struct {
	FieldSchedules         []FieldSchedule
	TotalCost              float64
	TotalRevenue           float64
	TotalProfit            float64
	AverageFieldUtilization float64
	CropQuantities         map[string]float64 // crop_id -> total area_used
	AlgorithmName          string
	ComputationTimeSeconds float64
	TimeLimitReached       bool
}

// NewEmptyResult builds a zero-allocation result for the FeasibilityExhausted
// case: not an error, just a report that no candidate satisfied the
// constraints.
func NewEmptyResult(algorithmName string) OptimizationResult {
	return OptimizationResult{
		FieldSchedules: []FieldSchedule{},
		CropQuantities: map[string]float64{},
		AlgorithmName:  algorithmName,
	}
}

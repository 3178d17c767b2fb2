package domain

import "errors"

// Sentinel errors matching the taxonomy in the planner's error-handling
// design: input/range errors bubble to the caller, FeasibilityExhausted is
// not an error (reported in the result), invariant violations are fatal,
// and ComputeTimeout is soft. Callers use errors.Is against these to branch
// without string comparison.
var (
	// ErrInputError covers malformed or inconsistent input entities: a
	// missing max_temperature, non-monotone stage ordering, empty weather,
	// an inverted horizon, or a field with non-positive area.
	ErrInputError = errors.New("input error")

	// ErrWeatherRangeInsufficient means the sliding-window generator could
	// not close a window for the requested horizon because the weather
	// series ends too soon.
	ErrWeatherRangeInsufficient = errors.New("weather range insufficient")

	// ErrCapacityViolation, ErrFallowViolation and ErrOverlapViolation are
	// raised only when a constructed allocation would break an invariant a
	// correct solver should never violate; callers treat these as fatal
	// programming errors rather than recoverable conditions.
	ErrCapacityViolation = errors.New("capacity violation")
	ErrFallowViolation   = errors.New("fallow violation")
	ErrOverlapViolation  = errors.New("overlap violation")
)

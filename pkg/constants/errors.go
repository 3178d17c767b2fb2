// Package constants provides standardized error codes shared across the
// cultivation planner.
package constants

import (
	"errors"
	"fmt"
	"strings"
)

// Infrastructure-level error codes, unrelated to planning semantics.
const (
	ErrInvalidInput      = "INVALID_INPUT"
	ErrInternalServer    = "INTERNAL_SERVER_ERROR"
	ErrNotFound          = "NOT_FOUND"
	ErrDatabaseOperation = "DATABASE_ERROR"
	ErrValidation        = "VALIDATION_ERROR"
)

// Planning-domain error codes, matching the taxonomy the orchestrator
// raises and propagates (input/range errors bubble up, invariant
// violations are fatal, timeout is soft).
const (
	ErrWeatherRangeInsufficient = "WEATHER_RANGE_INSUFFICIENT"
	ErrFeasibilityExhausted     = "FEASIBILITY_EXHAUSTED"
	ErrCapacityViolation        = "CAPACITY_VIOLATION"
	ErrFallowViolation          = "FALLOW_VIOLATION"
	ErrOverlapViolation         = "OVERLAP_VIOLATION"
	ErrComputeTimeout           = "COMPUTE_TIMEOUT"
)

// validErrorCodes contains all valid error codes for validation
var validErrorCodes = map[string]bool{
	ErrInvalidInput:             true,
	ErrInternalServer:           true,
	ErrNotFound:                 true,
	ErrDatabaseOperation:        true,
	ErrValidation:               true,
	ErrWeatherRangeInsufficient: true,
	ErrFeasibilityExhausted:     true,
	ErrCapacityViolation:        true,
	ErrFallowViolation:          true,
	ErrOverlapViolation:         true,
	ErrComputeTimeout:           true,
}

// NewError creates a new error with standardized format including error code.
func NewError(code string, message string) error {
	if code == "" {
		return errors.New("[INTERNAL_SERVER_ERROR] error code cannot be empty")
	}
	if message == "" {
		return errors.New("[INTERNAL_SERVER_ERROR] error message cannot be empty")
	}
	if !validErrorCodes[code] {
		return fmt.Errorf("[INTERNAL_SERVER_ERROR] invalid error code: %s", code)
	}
	return errors.New(fmt.Sprintf("[%s] %s", code, message))
}

// WrapError wraps an existing error with additional context while
// preserving the original error code.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	if message == "" {
		return err
	}

	errStr := err.Error()
	code := ErrInternalServer
	if strings.HasPrefix(errStr, "[") {
		if idx := strings.Index(errStr, "]"); idx > 0 {
			code = errStr[1:idx]
		}
	}

	return errors.New(fmt.Sprintf("[%s] %s: %v", code, message, err))
}

/*
errors.go - Centralized error types for the engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The rules kernel itself never fails for business reasons: it returns
  fail-closed values instead. These errors come from the boundary (input
  validation), the stores and the export sink.

ERROR CATEGORIES:
  1. Input errors - Malformed JSON, capacity, cost, date or compliance values
  2. Lookup errors - Unknown project, scenario or compliance field
  3. Sink errors - Contract export failures

USAGE:
  if errors.Is(err, generic.ErrProjectNotFound) {
      // 404
  }

SEE ALSO:
  - factory/project.go: Wraps input errors in FieldError
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProjectNotFound is returned when a referenced project id doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrInvalidCapacity is returned for non-numeric or non-positive capacity.
	ErrInvalidCapacity = errors.New("invalid capacity")

	// ErrInvalidCost is returned for non-numeric or negative cost figures.
	ErrInvalidCost = errors.New("invalid cost")

	// ErrInvalidDate is returned when a date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrMalformedInput is returned when a request body isn't valid JSON or
	// doesn't match the expected shape.
	ErrMalformedInput = errors.New("malformed input")

	// ErrMissingField is returned when a required input field is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownComplianceField is returned when an update names a field the
	// compliance record doesn't have.
	ErrUnknownComplianceField = errors.New("unknown compliance field")

	// ErrInvalidComplianceValue is returned when an update value has the wrong
	// type or is out of range (domestic content percentage outside 0-100).
	ErrInvalidComplianceValue = errors.New("invalid compliance value")

	// ErrUnknownScenario is returned when loading a scenario id that isn't defined.
	ErrUnknownScenario = errors.New("unknown scenario")

	// ErrExportFailed is returned when the export sink cannot persist a document.
	ErrExportFailed = errors.New("export failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError names the input field that failed validation.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v (got %v)", e.Field, e.Err, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformedInput) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidCost) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrUnknownComplianceField) ||
		errors.Is(err, ErrInvalidComplianceValue) ||
		errors.Is(err, ErrUnknownScenario)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound)
}

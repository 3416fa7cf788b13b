/*
errors.go - Centralized error types for the gym engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Services return these; the HTTP layer maps them to status codes.

ERROR CATEGORIES:
  1. Not-found errors  - an identifier did not resolve
  2. Invalid-state     - the operation contradicts current entity state
  3. Validation errors - rejected input (non-positive cost, bad count)
  4. Storage failures  - surfaced from the store, wrapped with %w,
     never retried or swallowed by the engine

USAGE:
  if gym.IsNotFound(err) { ... 404 ... }
  if errors.Is(err, gym.ErrInstallmentAlreadyPaid) { ... 409 ... }

SEE ALSO:
  - api/handlers.go: status-code mapping
*/
package gym

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - use with errors.Is()
// =============================================================================

var (
	ErrClientNotFound          = errors.New("client not found")
	ErrPlanNotFound            = errors.New("membership plan not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrInstallmentNotFound     = errors.New("installment not found")
	ErrInstallmentPlanNotFound = errors.New("installment plan not found")

	// ErrInstallmentAlreadyPaid is returned when settling an installment that
	// is no longer pending. There is no reversal operation; a repeated
	// payment attempt must fail rather than double-charge.
	ErrInstallmentAlreadyPaid = errors.New("installment already paid")

	// ErrInvalidInstallmentCount is returned for counts below 2. A count of 1
	// degenerates to a full-price renewal and must use that path instead.
	ErrInvalidInstallmentCount = errors.New("installment count must be at least 2")

	ErrInsufficientStock = errors.New("insufficient stock")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError reports rejected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates an unresolved identifier.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrInstallmentNotFound) ||
		errors.Is(err, ErrInstallmentPlanNotFound)
}

// IsInvalidState reports whether the operation contradicts current state.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInstallmentAlreadyPaid) ||
		errors.Is(err, ErrInvalidInstallmentCount) ||
		errors.Is(err, ErrInsufficientStock)
}

// IsValidation reports whether the error is a rejected input.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

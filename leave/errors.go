/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP status codes.

ERROR CATEGORIES:
  1. NotFound errors  - Operation addressed to a missing record. Fatal
                        precondition violation, never silently skipped.
  2. Validation errors - Rejected input; the caller catches these before
                        invoking the lifecycle engine.

NOT ERRORS:
  - Balance underflow on debit is clamped to zero and proceeds. Approval
    authority is treated as absolute.
  - Team conflicts are advisory warnings the submitter may override.
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRequestNotFound is returned when a referenced leave request doesn't exist.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrNotificationNotFound is returned when a referenced notification doesn't exist.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrInvalidStatus is returned for a status value outside the state machine.
	ErrInvalidStatus = errors.New("invalid request status")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes input rejected before it reaches the engine.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrNotificationNotFound)
}

// IsValidation returns true if the error is due to invalid client input.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrInvalidStatus)
}

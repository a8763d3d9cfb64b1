package boleto

import (
	"errors"
	"fmt"
)

// Common extraction errors.
//
// The public extraction operations (ExtractPaymentInfo, ExtractDueDate)
// never return errors: all failure is represented in the returned
// record's validation report. Errors below surface only from the
// lower-level checksum and validation helpers.
var (
	// ErrInvalidInput is returned when a checksum function receives an
	// empty string or a string containing non-digit characters.
	ErrInvalidInput = errors.New("invalid input: expected a non-empty digit string")
)

// ExtractionError wraps errors with context about the extraction step
// that failed.
type ExtractionError struct {
	// Op is the operation that failed (e.g., "Mod10", "ValidateLine").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("boleto: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("boleto: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExtractionError creates an ExtractionError for the given operation.
func NewExtractionError(op string, err error, details string) *ExtractionError {
	return &ExtractionError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

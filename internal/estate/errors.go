package estate

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a field-level constraint violation. It is reported
// to the caller verbatim and never retried or silently corrected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func validationErrorf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DomainError reports a business-rule violation, typically an illegal state
// transition. The losing side of a concurrent double-accept surfaces as a
// DomainError, not a crash.
type DomainError struct {
	Op     string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func domainErrorf(op, format string, args ...interface{}) error {
	return &DomainError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

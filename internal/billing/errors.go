package billing

import "fmt"

// ValidationError reports bad local input: a non-numeric or non-positive
// quantity, a negative discount, a missing customer name. It is surfaced
// immediately, the submission is blocked, and the draft is left untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

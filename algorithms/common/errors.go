package common

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel every InputError unwraps to
var ErrInvalidInput = errors.New("invalid input")

// InputError describes malformed caller input: mismatched or empty sequences,
// negative durations, unparseable note names.
type InputError struct {
	Field  string // Offending argument, e.g. "durations"
	Index  int    // Element index, or -1 when the error concerns the whole argument
	Reason string
}

// NewInputError creates an InputError that is not tied to a single element
func NewInputError(field, format string, args ...any) *InputError {
	return &InputError{
		Field:  field,
		Index:  -1,
		Reason: fmt.Sprintf(format, args...),
	}
}

// NewElementInputError creates an InputError for the element at index
func NewElementInputError(field string, index int, format string, args ...any) *InputError {
	return &InputError{
		Field:  field,
		Index:  index,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (e *InputError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid %s[%d]: %s", e.Field, e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// IsInputError reports whether err is, or wraps, an InputError
func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}

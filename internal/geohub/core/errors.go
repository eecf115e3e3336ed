package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a vehicle identifier is unknown to the store.
var ErrNotFound = errors.New("vehicle not found")

// ErrBusy is returned by bounded mutation attempts when the vehicle's lock
// could not be acquired in time. The simulator skips the vehicle for the tick.
var ErrBusy = errors.New("vehicle busy")

// ValidationError marks a client error: a missing or malformed field on an
// inbound request. It is never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Package quizerr classifies errors surfaced to the participant.
package quizerr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Match with errors.Is.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrValidation     = errors.New("validation error")
	ErrStateViolation = errors.New("operation not allowed")
	ErrPersistence    = errors.New("result not saved")
)

// Error attaches a kind to a message and an optional cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Configuration returns a configuration error.
func Configuration(format string, args ...any) error {
	return &Error{Kind: ErrConfiguration, Msg: fmt.Sprintf(format, args...)}
}

// Validation returns a validation error.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

// StateViolation returns an error for a disabled operation.
func StateViolation(format string, args ...any) error {
	return &Error{Kind: ErrStateViolation, Msg: fmt.Sprintf(format, args...)}
}

// Persistence wraps a backend failure.
func Persistence(err error, format string, args ...any) error {
	return &Error{Kind: ErrPersistence, Msg: fmt.Sprintf(format, args...), Err: err}
}

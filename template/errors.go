package template

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for template operations.
var (
	// ErrVariable is returned when a required variable is missing.
	ErrVariable = errors.New("required variable missing")

	// ErrNotFoundHandler wraps failures raised by a not-found handler.
	ErrNotFoundHandler = errors.New("not-found handler failed")

	// ErrSettle is returned when a deferred batch is abandoned because the
	// caller's context ended.
	ErrSettle = errors.New("deferred batch abandoned")
)

// HandlerError reports a not-found handler failure for one tag.
type HandlerError struct {
	Tag string
	Err error
}

// Error implements error.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrNotFoundHandler, e.Tag, e.Err)
}

// Unwrap returns the handler's error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Is matches ErrNotFoundHandler.
func (e *HandlerError) Is(target error) bool {
	return target == ErrNotFoundHandler
}

// MissingError lists required variables absent from a context.
type MissingError struct {
	Names []string
}

// Error implements error.
func (e *MissingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrVariable, strings.Join(e.Names, ", "))
}

// Is matches ErrVariable.
func (e *MissingError) Is(target error) bool {
	return target == ErrVariable
}

package tree

import (
	"errors"
	"fmt"
)

// Sentinel errors for tree interpolation.
var (
	// ErrInvalidRoot is returned when the root is not an object or array.
	ErrInvalidRoot = errors.New("tree root must be an object or array")

	// ErrValueNotFound is returned for an unknown key under ActionThrow.
	ErrValueNotFound = errors.New("interpolation value not found")

	// ErrNoParent is returned when a copy-into-parent command sits on the
	// root object.
	ErrNoParent = errors.New("no parent object to merge")

	// ErrNotConverged is returned when InterpolateUntilStable runs out of
	// rounds while values are still changing.
	ErrNotConverged = errors.New("tree did not converge")
)

// NotFoundError reports an unknown key under ActionThrow.
type NotFoundError struct {
	Tag string
	Key string
}

// Error implements error.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValueNotFound, e.Tag)
}

// Is matches ErrValueNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrValueNotFound
}

// PathError records the tree location where interpolation failed.
type PathError struct {
	Path string
	Err  error
}

// Error implements error.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

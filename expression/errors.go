package expression

import (
	"errors"
	"fmt"
)

// ErrParse matches every error produced by this package.
var ErrParse = errors.New("expression parse error")

// Specific failure kinds, all matched by ErrParse through *Error.
var (
	ErrEmpty           = errors.New("parsing expression resulted in an empty parse")
	ErrConversion      = errors.New("operand conversion failed")
	ErrTypeMismatch    = errors.New("cannot operate on parameters with different types")
	ErrArity           = errors.New("not enough args for operator")
	ErrTernaryMismatch = errors.New("ternary operator mismatched")
	ErrParenthesis     = errors.New("parenthesis mismatched")
	ErrMalformed       = errors.New("resulting stack appears incorrect")
)

// Error reports a failed evaluation of Expression.
type Error struct {
	Expression string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v in expression %q", e.Err, e.Expression)
}

// Unwrap returns the specific failure.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports ErrParse for every expression error.
func (e *Error) Is(target error) bool {
	return target == ErrParse
}

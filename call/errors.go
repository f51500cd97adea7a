package call

import (
	"errors"
	"fmt"
)

// ErrSyntax matches every parse failure.
var ErrSyntax = errors.New("parse error")

// Parse failures, matched by ErrSyntax through *SyntaxError.
var (
	ErrUnexpectedParen = errors.New("unexpected '(' or ')' missing function name")
	ErrExpectedParen   = errors.New("expected parenthesis")
	ErrUnmatchedGroup  = errors.New("mismatch on some ending symbols")
	ErrEmptyToken      = errors.New("expected a function name or argument")
	ErrTrailingInput   = errors.New("unexpected input after expression")
)

// Evaluation failures.
var (
	// ErrUndefinedFunction is returned when a call names no registered function.
	ErrUndefinedFunction = errors.New("function is not defined in the context")

	// ErrArity is returned when a function receives too few or too many arguments.
	ErrArity = errors.New("wrong number of arguments")
)

// SyntaxError reports where parsing of Expression failed.
type SyntaxError struct {
	Expression string
	Pos        int
	Err        error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parse error - %v (at %d in %q)", e.Err, e.Pos, e.Expression)
}

// Unwrap returns the specific failure.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Is reports ErrSyntax for every syntax error.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// CallError wraps a failure raised while invoking Function.
type CallError struct {
	Function string
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("call %s: %v", e.Function, e.Err)
}

// Unwrap returns the underlying error.
func (e *CallError) Unwrap() error {
	return e.Err
}

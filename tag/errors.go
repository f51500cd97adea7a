package tag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnbalanced is returned when enclosure tracking ends with unclosed symbols.
var ErrUnbalanced = errors.New("unbalanced symbols")

// UnbalancedError lists the closing symbols still expected at the end of a scan.
type UnbalancedError struct {
	Missing []rune
}

func (e *UnbalancedError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		parts[i] = string(r)
	}
	return fmt.Sprintf("match error - unbalanced symbols missing: %s", strings.Join(parts, ","))
}

// Unwrap allows errors.Is(err, ErrUnbalanced).
func (e *UnbalancedError) Unwrap() error {
	return ErrUnbalanced
}

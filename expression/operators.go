package expression

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type associativity int

const (
	left associativity = iota
	right
)

// ternary is the synthetic operator that replaces a matched "?" ... ":" pair.
const ternary = "?:"

type operator struct {
	rank  int
	assoc associativity
	nargs int
	apply func(args []any) (any, error)
}

var operators = map[string]operator{
	ternary: {rank: 13, assoc: right, nargs: 3, apply: func(a []any) (any, error) {
		cond, err := toBool(a[0])
		if err != nil {
			return nil, err
		}
		if cond {
			return toOperand(a[1])
		}
		return toOperand(a[2])
	}},
	"!": {rank: 2, assoc: right, nargs: 1, apply: func(a []any) (any, error) {
		b, err := toBool(a[0])
		return !b, err
	}},
	"^":  {rank: 2, assoc: right, nargs: 2, apply: numeric(math.Pow)},
	"*":  {rank: 3, assoc: left, nargs: 2, apply: numeric(func(x, y float64) float64 { return x * y })},
	"/":  {rank: 3, assoc: left, nargs: 2, apply: numeric(func(x, y float64) float64 { return x / y })},
	"+":  {rank: 4, assoc: left, nargs: 2, apply: numeric(func(x, y float64) float64 { return x + y })},
	"-":  {rank: 4, assoc: left, nargs: 2, apply: numeric(func(x, y float64) float64 { return x - y })},
	"<":  {rank: 6, assoc: left, nargs: 2, apply: compare(func(x, y float64) bool { return x < y })},
	">":  {rank: 6, assoc: left, nargs: 2, apply: compare(func(x, y float64) bool { return x > y })},
	"<=": {rank: 6, assoc: left, nargs: 2, apply: compare(func(x, y float64) bool { return x <= y })},
	">=": {rank: 6, assoc: left, nargs: 2, apply: compare(func(x, y float64) bool { return x >= y })},
	"==": {rank: 7, assoc: left, nargs: 2, apply: equality(true)},
	"!=": {rank: 7, assoc: left, nargs: 2, apply: equality(false)},
	"&&": {rank: 11, assoc: left, nargs: 2, apply: logical(func(x, y bool) bool { return x && y })},
	"||": {rank: 12, assoc: left, nargs: 2, apply: logical(func(x, y bool) bool { return x || y })},
}

func numeric(f func(x, y float64) float64) func([]any) (any, error) {
	return func(a []any) (any, error) {
		x, y, err := numPair(a)
		if err != nil {
			return nil, err
		}
		return f(x, y), nil
	}
}

func compare(f func(x, y float64) bool) func([]any) (any, error) {
	return func(a []any) (any, error) {
		x, y, err := numPair(a)
		if err != nil {
			return nil, err
		}
		return f(x, y), nil
	}
}

func logical(f func(x, y bool) bool) func([]any) (any, error) {
	return func(a []any) (any, error) {
		x, err := toBool(a[0])
		if err != nil {
			return nil, err
		}
		y, err := toBool(a[1])
		if err != nil {
			return nil, err
		}
		return f(x, y), nil
	}
}

// equality compares strings by content, so the quote style does not matter.
func equality(want bool) func([]any) (any, error) {
	return func(a []any) (any, error) {
		x, err := toOperand(a[0])
		if err != nil {
			return nil, err
		}
		y, err := toOperand(a[1])
		if err != nil {
			return nil, err
		}
		xs, xStr := x.(string)
		ys, yStr := y.(string)
		if xStr && yStr {
			return (unquote(xs) == unquote(ys)) == want, nil
		}
		if !sameType(x, y) {
			return nil, fmt.Errorf("%w: %v <??> %v", ErrTypeMismatch, a[0], a[1])
		}
		return (x == y) == want, nil
	}
}

func sameType(x, y any) bool {
	switch x.(type) {
	case float64:
		_, ok := y.(float64)
		return ok
	case bool:
		_, ok := y.(bool)
		return ok
	}
	return false
}

func numPair(a []any) (float64, float64, error) {
	x, err := toNum(a[0])
	if err != nil {
		return 0, 0, err
	}
	y, err := toNum(a[1])
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

var floatPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// toNum parses the leading numeric part of a token, ignoring trailing text.
func toNum(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		m := floatPrefix.FindString(strings.TrimLeft(x, " \t\r\n"))
		switch strings.TrimLeft(m, "+-") {
		case "":
			return 0, fmt.Errorf("%w: failed to convert %s to number", ErrConversion, x)
		case "Infinity":
			if strings.HasPrefix(m, "-") {
				return math.Inf(-1), nil
			}
			return math.Inf(1), nil
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: failed to convert %s to number", ErrConversion, x)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: failed to convert %v to number", ErrConversion, v)
}

func toBool(v any) (bool, error) {
	switch v {
	case true, "true":
		return true, nil
	case false, "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: failed to convert %v to boolean", ErrConversion, v)
}

// toStr validates a quoted string operand and returns it with its quotes.
func toStr(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: failed to convert %v to string", ErrConversion, v)
	}
	s = strings.TrimSpace(s)
	if len(s) < 2 || !isQuote(s[0]) || !isQuote(s[len(s)-1]) {
		return "", fmt.Errorf("%w: string expression %s must be enclosed in quotes", ErrConversion, v)
	}
	return s, nil
}

// toOperand tries number, then boolean, then quoted string.
func toOperand(v any) (any, error) {
	if f, err := toNum(v); err == nil {
		return f, nil
	}
	if b, err := toBool(v); err == nil {
		return b, nil
	}
	return toStr(v)
}

func isQuote(c byte) bool {
	return c == '\'' || c == '"'
}

func unquote(s string) string {
	return s[1 : len(s)-1]
}

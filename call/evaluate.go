package call

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/code4ward/JSOI/value"
)

// Invoke evaluates n. Arguments are evaluated depth-first before the
// function is called; the function's result is returned as-is, so a
// *value.Deferred stays deferred.
func (r *Registry) Invoke(env *Env, n Node) (any, error) {
	switch x := n.(type) {
	case *Literal:
		return Coerce(x.Raw), nil
	case *FunctionCall:
		fn, ok := r.Lookup(x.Name)
		if !ok {
			return nil, r.undefined(x.Name)
		}
		args := make([]any, len(x.Args))
		for i, arg := range x.Args {
			v, err := r.Invoke(env, arg)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return fn.Call(env, args)
	}
	return nil, fmt.Errorf("unknown syntax node %T", n)
}

// Evaluate parses expr and invokes it.
func (r *Registry) Evaluate(env *Env, expr string, opts ...ParseOption) (any, error) {
	n, err := Parse(expr, opts...)
	if err != nil {
		return nil, err
	}
	return r.Invoke(env, n)
}

var quotedPattern = regexp.MustCompile(`(?s)^['"](.*)['"]$`)

// Coerce converts a literal token to a value: number, quoted string,
// boolean, null, JSON document, and finally the raw text.
func Coerce(raw string) any {
	if f, ok := parseNumber(raw); ok {
		return f
	}
	if m := quotedPattern.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if v, err := value.ParseJSON([]byte(raw)); err == nil {
		return v
	}
	return raw
}

// parseNumber accepts decimal and exponent forms, 0x/0o/0b integers and
// signed Infinity.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return 0, false
	}
	if len(lower) > 2 && lower[0] == '0' && strings.ContainsRune("xob", rune(lower[1])) {
		n, err := strconv.ParseInt(s, 0, 64)
		return float64(n), err == nil
	}
	if strings.ContainsAny(lower, "xp") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

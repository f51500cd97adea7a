package template

import (
	"fmt"
	"strings"

	"github.com/code4ward/JSOI/call"
	"github.com/code4ward/JSOI/value"
)

// Functions returns the helper functions available to function tags:
//
//	{{-> upper(name)}}
//	{{-> default(lookup(title), 'untitled')}}
func Functions() *call.Registry {
	r := call.NewRegistry()
	r.RegisterArity("truncate", 2, 2, truncate)
	r.RegisterArity("json", 1, 1, toJSON)
	r.RegisterArity("upper", 1, 1, stringFunc(strings.ToUpper))
	r.RegisterArity("lower", 1, 1, stringFunc(strings.ToLower))
	r.RegisterArity("trim", 1, 1, stringFunc(strings.TrimSpace))
	r.RegisterArity("split", 2, 2, split)
	r.RegisterArity("join", 2, 2, join)
	r.RegisterArity("replace", 3, 3, replace)
	r.RegisterArity("contains", 2, 2, predicate(strings.Contains))
	r.RegisterArity("hasPrefix", 2, 2, predicate(strings.HasPrefix))
	r.RegisterArity("hasSuffix", 2, 2, predicate(strings.HasSuffix))
	r.RegisterArity("default", 2, 2, defaultValue)
	r.RegisterArity("indent", 2, 2, indent)
	r.RegisterArity("wrap", 2, 2, wrap)
	r.RegisterArity("lookup", 1, 2, lookupValue)
	r.Register("concat", concat)
	return r
}

func stringFunc(fn func(string) string) call.Func {
	return func(_ *call.Env, args ...any) (any, error) {
		return fn(value.String(args[0])), nil
	}
}

func predicate(fn func(s, arg string) bool) call.Func {
	return func(_ *call.Env, args ...any) (any, error) {
		return fn(value.String(args[0]), value.String(args[1])), nil
	}
}

func intArg(v any, name string) (int, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s must be a number, got %s", name, value.KindOf(v))
	}
	return int(f), nil
}

// truncate cuts a string to the specified maximum length in runes.
// If the string is longer than maxLen, it is truncated and "..." is appended.
// For maxLen <= 3, no ellipsis is added (the string is simply cut).
func truncate(_ *call.Env, args ...any) (any, error) {
	maxLen, err := intArg(args[1], "length")
	if err != nil {
		return nil, err
	}
	s := []rune(value.String(args[0]))
	switch {
	case maxLen < 0:
		return nil, fmt.Errorf("length must not be negative, got %d", maxLen)
	case len(s) <= maxLen:
		return string(s), nil
	case maxLen <= 3:
		return string(s[:maxLen]), nil
	}
	return string(s[:maxLen-3]) + "...", nil
}

// toJSON renders a value in its JSON form, keeping object key order.
func toJSON(_ *call.Env, args ...any) (any, error) {
	return value.ToJSON(args[0])
}

func split(_ *call.Env, args ...any) (any, error) {
	parts := strings.Split(value.String(args[0]), value.String(args[1]))
	items := make([]any, len(parts))
	for i, p := range parts {
		items[i] = p
	}
	return value.NewArray(items...), nil
}

func join(_ *call.Env, args ...any) (any, error) {
	arr, ok := args[0].(*value.Array)
	if !ok {
		return nil, fmt.Errorf("join expects an array, got %s", value.KindOf(args[0]))
	}
	parts := make([]string, 0, arr.Len())
	for _, item := range arr.Items() {
		parts = append(parts, value.String(item))
	}
	return strings.Join(parts, value.String(args[1])), nil
}

func replace(_ *call.Env, args ...any) (any, error) {
	return strings.ReplaceAll(value.String(args[0]), value.String(args[1]), value.String(args[2])), nil
}

// defaultValue returns the default if the value is nil or an empty string.
// For other types (including zero values like 0), the original value is returned.
func defaultValue(_ *call.Env, args ...any) (any, error) {
	val, defaultVal := args[0], args[1]
	if val == nil {
		return defaultVal, nil
	}
	if s, ok := val.(string); ok && s == "" {
		return defaultVal, nil
	}
	return val, nil
}

// indent adds a prefix of spaces to each line of the input.
func indent(_ *call.Env, args ...any) (any, error) {
	spaces, err := intArg(args[1], "spaces")
	if err != nil {
		return nil, err
	}
	prefix := strings.Repeat(" ", max(spaces, 0))
	lines := strings.Split(value.String(args[0]), "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n"), nil
}

// wrap wraps text at the specified width, breaking on word boundaries.
// If width <= 0, the string is returned unchanged.
func wrap(_ *call.Env, args ...any) (any, error) {
	width, err := intArg(args[1], "width")
	if err != nil {
		return nil, err
	}
	s := value.String(args[0])
	if width <= 0 {
		return s, nil
	}

	var result strings.Builder
	var lineLen int
	for _, word := range strings.Fields(s) {
		if lineLen+len(word) > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}
		result.WriteString(word)
		lineLen += len(word)
	}
	return result.String(), nil
}

// lookupValue reads a key from the caller's context, with an optional
// fallback for unknown keys.
func lookupValue(env *call.Env, args ...any) (any, error) {
	key := value.String(args[0])
	if env != nil && env.Values != nil {
		if v, ok := env.Values.Get(key); ok {
			return v, nil
		}
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrVariable, key)
}

func concat(_ *call.Env, args ...any) (any, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(value.String(a))
	}
	return b.String(), nil
}

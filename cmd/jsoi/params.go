package main

import (
	"fmt"
	"strings"

	"github.com/code4ward/JSOI/call"
)

// parseParams parses "Key1=value1; Key2=value2". Keys and values are
// trimmed; pairs missing either are skipped.
func parseParams(s string) map[string]any {
	params := make(map[string]any)
	for _, pair := range strings.Split(s, ";") {
		key, val, ok := strings.Cut(pair, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			continue
		}
		params[key] = val
	}
	return params
}

// parseSet parses a --set flag value "key=value". The value is typed like
// a function argument: numbers, booleans, null, quoted strings and JSON.
func parseSet(s string) (string, any, error) {
	key, val, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("invalid --set %q: want key=value", s)
	}
	return key, call.Coerce(strings.TrimSpace(val)), nil
}

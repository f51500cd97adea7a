package call

import (
	"regexp"

	"github.com/code4ward/JSOI/expression"
	"github.com/code4ward/JSOI/value"
)

var functionTagPattern = regexp.MustCompile(`(?s)^\s*->\s*(.*)$`)

// FunctionTag reports whether a tag key is a function call ("-> f(x)") and
// returns the call expression. An arrow with nothing after it is not a call.
func FunctionTag(key string) (string, bool) {
	m := functionTagPattern.FindStringSubmatch(key)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// Builtins returns a registry holding the built-in functions:
//
//	ƒ(expr), Exp(expr)  evaluate an infix expression
//	_(v)                convert a value to its text form
func Builtins() *Registry {
	r := NewRegistry()
	r.RegisterArity("ƒ", 1, 1, evalExpression)
	r.RegisterArity("Exp", 1, 1, evalExpression)
	r.RegisterArity("_", 1, 1, func(_ *Env, args ...any) (any, error) {
		return value.String(args[0]), nil
	})
	return r
}

// WithBuiltins returns a copy of r with the built-ins added. Built-ins
// replace user functions of the same name.
func WithBuiltins(r *Registry) *Registry {
	c := r.Clone()
	c.Merge(Builtins())
	return c
}

func evalExpression(_ *Env, args ...any) (any, error) {
	expr, ok := args[0].(string)
	if !ok {
		expr = value.String(args[0])
	}
	return expression.Evaluate(expr)
}

package call

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code4ward/JSOI/lookup"
	"github.com/code4ward/JSOI/value"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want Node
	}{
		{
			name: "no arguments",
			expr: "getVar()",
			want: &FunctionCall{Name: "getVar", Args: []Node{}},
		},
		{
			name: "spaced empty arguments",
			expr: "  getVar (  )  ",
			want: &FunctionCall{Name: "getVar", Args: []Node{}},
		},
		{
			name: "literals",
			expr: "f(1, 'a, b', true, null)",
			want: &FunctionCall{Name: "f", Args: []Node{
				&Literal{Raw: "1"}, &Literal{Raw: "'a, b'"}, &Literal{Raw: "true"}, &Literal{Raw: "null"},
			}},
		},
		{
			name: "nested call",
			expr: "REDUCE(load('a'), load( 'b' ))",
			want: &FunctionCall{Name: "REDUCE", Args: []Node{
				&FunctionCall{Name: "load", Args: []Node{&Literal{Raw: "'a'"}}},
				&FunctionCall{Name: "load", Args: []Node{&Literal{Raw: "'b'"}}},
			}},
		},
		{
			name: "grouped tokens",
			expr: `f([1, [2, "x)"]], {"k": "(v)"})`,
			want: &FunctionCall{Name: "f", Args: []Node{
				&Literal{Raw: `[1, [2, "x)"]]`}, &Literal{Raw: `{"k": "(v)"}`},
			}},
		},
		{
			name: "bare identifier is quoted",
			expr: "f(name)",
			want: &FunctionCall{Name: "f", Args: []Node{&Literal{Raw: "'name'"}}},
		},
		{
			name: "expression function name",
			expr: "ƒ('1 + 1')",
			want: &FunctionCall{Name: "ƒ", Args: []Node{&Literal{Raw: "'1 + 1'"}}},
		},
		{
			name: "literal only",
			expr: "42",
			want: &Literal{Raw: "42"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		expr   string
		opts   []ParseOption
		want   error
		substr string
	}{
		{name: "missing name", expr: "(1)", want: ErrUnexpectedParen},
		{name: "nested missing name", expr: "f((1))", want: ErrUnexpectedParen},
		{name: "missing close", expr: "f(1", want: ErrExpectedParen, substr: "expected ')' to close call to f"},
		{name: "unmatched quote", expr: "_('abc)", want: ErrUnmatchedGroup, substr: "['''"},
		{name: "unmatched bracket", expr: "f([1, 2)", want: ErrUnmatchedGroup},
		{name: "strict bare identifier", expr: "f(name)", opts: []ParseOption{WithStrictQuoting()}, want: ErrExpectedParen, substr: "after function name name"},
		{name: "trailing input", expr: "f() g()", want: ErrTrailingInput},
		{name: "empty", expr: "   ", want: ErrEmptyToken},
		{name: "empty argument", expr: "f(,1)", want: ErrEmptyToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr, tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrSyntax)
			if tt.substr != "" {
				assert.Contains(t, err.Error(), tt.substr)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"1", 1.0},
		{"-2.5", -2.5},
		{"1e3", 1000.0},
		{"0x10", 16.0},
		{"Infinity", math.Inf(1)},
		{"'text'", "text"},
		{`"text"`, "text"},
		{"''", ""},
		{"true", true},
		{"false", false},
		{"null", nil},
		{"inf", "inf"},
		{"NaN", "NaN"},
		{"raw", "raw"},
		{"[1,2", "[1,2"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.raw))
		})
	}
}

func TestCoerce_JSON(t *testing.T) {
	got := Coerce(`{"b": [1, "two"], "a": null}`)
	obj, ok := got.(*value.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, obj.Keys())
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.RegisterArity("Add", 2, 2, func(env *Env, args ...any) (any, error) {
		return args[0].(float64) + args[1].(float64), nil
	})
	r.Register("concat", func(env *Env, args ...any) (any, error) {
		var b strings.Builder
		for _, a := range args {
			b.WriteString(value.String(a))
		}
		return b.String(), nil
	})
	r.Register("lookup", func(env *Env, args ...any) (any, error) {
		v, _ := env.Values.Get(args[0].(string))
		return v, nil
	})
	r.Register("fail", func(env *Env, args ...any) (any, error) {
		return nil, errors.New("failed on purpose")
	})
	return r
}

func TestRegistry_Evaluate(t *testing.T) {
	r := newTestRegistry()
	env := &Env{Context: context.Background(), Values: lookup.Map{"name": "John"}}

	tests := []struct {
		expr string
		want any
	}{
		{"Add(1, 2)", 3.0},
		{"Add(Add(1, 2), 0.5)", 3.5},
		{"concat('a', [1,2], true, null)", "a[1,2]truenull"},
		{"lookup(name)", "John"},
		{"lookup('name')", "John"},
		{"7", 7.0},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := r.Evaluate(env, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_EvaluateErrors(t *testing.T) {
	r := newTestRegistry()
	env := &Env{}

	_, err := r.Evaluate(env, "Ad(1, 2)")
	require.ErrorIs(t, err, ErrUndefinedFunction)
	assert.Contains(t, err.Error(), "did you mean Add?")

	_, err = r.Evaluate(env, "Add(1)")
	require.ErrorIs(t, err, ErrArity)
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "Add", callErr.Function)

	_, err = r.Evaluate(env, "concat(fail())")
	assert.ErrorContains(t, err, "failed on purpose")

	var empty *Registry
	_, err = empty.Evaluate(env, "Add(1, 2)")
	assert.ErrorIs(t, err, ErrUndefinedFunction)
}

func TestRegistry_Deferred(t *testing.T) {
	r := NewRegistry()
	r.Register("later", func(env *Env, args ...any) (any, error) {
		return value.Defer(func(ctx context.Context) (any, error) { return args[0], nil }), nil
	})

	got, err := r.Evaluate(&Env{}, "later(5)")
	require.NoError(t, err)
	d, ok := got.(*value.Deferred)
	require.True(t, ok)
	v, err := d.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
}

func TestRegistry_CloneMerge(t *testing.T) {
	base := newTestRegistry()
	clone := base.Clone()
	clone.Register("extra", func(*Env, ...any) (any, error) { return nil, nil })

	_, ok := base.Lookup("extra")
	assert.False(t, ok)

	override := NewRegistry()
	override.Register("Add", func(*Env, ...any) (any, error) { return "overridden", nil })
	base.Merge(override)

	got, err := base.Evaluate(&Env{}, "Add(1, 2, 3)")
	require.NoError(t, err)
	assert.Equal(t, "overridden", got)
	assert.Equal(t, []string{"Add", "concat", "fail", "lookup"}, base.Names())
}

func TestEnv_Ctx(t *testing.T) {
	var env *Env
	assert.NotNil(t, env.Ctx())
	assert.NotNil(t, (&Env{}).Ctx())
}

func TestFunctionTag(t *testing.T) {
	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{key: "->Add(1, 2)", want: "Add(1, 2)", wantOK: true},
		{key: "  ->  _(x)", want: "_(x)", wantOK: true},
		{key: "->", want: "", wantOK: false},
		{key: "->  ", want: "", wantOK: false},
		{key: "name", wantOK: false},
		{key: "<- true", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := FunctionTag(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuiltins(t *testing.T) {
	user := NewRegistry()
	user.Register("Exp", func(*Env, ...any) (any, error) { return "user", nil })
	user.Register("double", func(_ *Env, args ...any) (any, error) {
		return args[0].(float64) * 2, nil
	})
	reg := WithBuiltins(user)
	env := &Env{Context: context.Background()}

	tests := []struct {
		expr string
		want any
	}{
		{expr: "ƒ('1 + 2 * 3')", want: 7.0},
		{expr: "Exp('2 > 1 ? \"yes\" : \"no\"')", want: "yes"},
		{expr: "_(42)", want: "42"},
		{expr: "_([1, 2])", want: "[1,2]"},
		{expr: "double(Exp('2 ^ 3'))", want: 16.0},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := reg.Evaluate(env, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	fn, ok := user.Lookup("Exp")
	require.True(t, ok)
	got, err := fn.Call(env, []any{"1"})
	require.NoError(t, err)
	assert.Equal(t, "user", got, "WithBuiltins must not modify its argument")
}

// Package call parses and evaluates function-call expressions.
//
// A call expression is a function name followed by parenthesized,
// comma-separated arguments. Arguments are literals or nested calls:
//
//	Add(1, 2)
//	concat('a', [1, 2], {"k": true})
//	REDUCE(load('a'), load('b'))
//
// Quoted strings, arrays and objects are read as single tokens, so their
// contents may hold commas and parentheses. A bare identifier that is not
// followed by "(" becomes a quoted string unless strict quoting is enabled.
//
// Functions live in a [Registry] and receive an [Env] with the caller's
// context.Context, the invoking engine and its key/value context:
//
//	reg := call.NewRegistry()
//	reg.RegisterArity("Add", 2, 2, func(env *call.Env, args ...any) (any, error) {
//	    return args[0].(float64) + args[1].(float64), nil
//	})
//	v, err := reg.Evaluate(&call.Env{Context: ctx}, "Add(1, 2)")
//
// Literal arguments are coerced in order: number, quoted string, boolean,
// null, JSON, then the raw token text.
package call

package call

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/code4ward/JSOI/lookup"
	"github.com/code4ward/JSOI/value"
)

// Env is passed to every function invocation.
type Env struct {
	// Context carries cancellation for the enclosing interpolation.
	Context context.Context

	// Caller is the engine that evaluated the call.
	Caller any

	// Values is the key/value context in effect where the call appeared.
	Values lookup.Context
}

// Ctx returns the environment's context, or context.Background when unset.
func (e *Env) Ctx() context.Context {
	if e == nil || e.Context == nil {
		return context.Background()
	}
	return e.Context
}

// Func implements a callable. Arguments arrive normalized into the closed
// value set. Returning a *value.Deferred makes the result asynchronous.
type Func func(env *Env, args ...any) (any, error)

// Variadic marks a function without an upper argument bound.
const Variadic = -1

// Function is a registered callable with its arity bounds.
type Function struct {
	Name    string
	MinArgs int
	MaxArgs int
	Fn      Func
}

// Call validates the argument count and invokes the function.
func (f Function) Call(env *Env, args []any) (any, error) {
	if len(args) < f.MinArgs || (f.MaxArgs != Variadic && len(args) > f.MaxArgs) {
		return nil, &CallError{Function: f.Name, Err: fmt.Errorf("%w: %s", ErrArity, f.arity(len(args)))}
	}
	v, err := f.Fn(env, args...)
	if err != nil {
		return nil, &CallError{Function: f.Name, Err: err}
	}
	return value.Normalize(v), nil
}

func (f Function) arity(got int) string {
	switch {
	case f.MaxArgs == Variadic:
		return fmt.Sprintf("expects at least %d, got %d", f.MinArgs, got)
	case f.MinArgs == f.MaxArgs:
		return fmt.Sprintf("expects %d, got %d", f.MinArgs, got)
	default:
		return fmt.Sprintf("expects %d to %d, got %d", f.MinArgs, f.MaxArgs, got)
	}
}

// Registry maps function names to callables. It is safe for concurrent use.
// A nil *Registry has no functions.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Function)}
}

// Register adds a variadic function, replacing any function of the same name.
func (r *Registry) Register(name string, fn Func) {
	r.RegisterArity(name, 0, Variadic, fn)
}

// RegisterArity adds a function accepting between min and max arguments.
// Use Variadic as max for no upper bound.
func (r *Registry) RegisterArity(name string, min, max int, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.funcs[name] = Function{Name: name, MinArgs: min, MaxArgs: max, Fn: fn}
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Function, bool) {
	if r == nil {
		return Function{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.funcs[name]
	return f, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	if r == nil {
		return c
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, f := range r.funcs {
		c.funcs[name] = f
	}
	return c
}

// Merge copies every function of other into r. Functions of other win on
// name clashes.
func (r *Registry) Merge(other *Registry) {
	if other == nil {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, f := range other.funcs {
		r.funcs[name] = f
	}
}

// undefined builds the error for an unknown function name, suggesting the
// closest registered name.
func (r *Registry) undefined(name string) error {
	err := fmt.Errorf("%w: %s", ErrUndefinedFunction, name)
	if suggestion := closest(name, r.Names()); suggestion != "" {
		err = fmt.Errorf("%w (did you mean %s?)", err, suggestion)
	}
	return err
}

func closest(target string, candidates []string) string {
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

package lookup

import (
	"github.com/code4ward/JSOI/value"
)

// Context resolves a key to a value. The boolean is false when the key is
// unknown; a found key may still hold nil.
type Context interface {
	Get(key string) (any, bool)
}

// Map is a flat context backed by a Go map.
type Map map[string]any

// Get returns the normalized value stored under key.
func (m Map) Get(key string) (any, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	return value.Normalize(v), true
}

// Func adapts a function to Context.
type Func func(key string) (any, bool)

// Get calls f.
func (f Func) Get(key string) (any, bool) {
	return f(key)
}

type objectContext struct {
	obj *value.Object
}

// FromObject returns a flat context over obj. Later changes to obj are
// visible through the context.
func FromObject(obj *value.Object) Context {
	return objectContext{obj: obj}
}

func (c objectContext) Get(key string) (any, bool) {
	return c.obj.Get(key)
}

// Layered returns the first hit across its contexts, in order.
type Layered []Context

// Layer builds a Layered context, skipping nil entries.
func Layer(contexts ...Context) Layered {
	out := make(Layered, 0, len(contexts))
	for _, c := range contexts {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Get queries each layer in order.
func (l Layered) Get(key string) (any, bool) {
	for _, c := range l {
		if v, ok := c.Get(key); ok {
			return v, true
		}
	}
	return nil, false
}

// Empty is a context with no keys.
var Empty Context = Func(func(string) (any, bool) { return nil, false })

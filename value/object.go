package value

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a string-keyed map that remembers insertion order.
//
// Setting an existing key keeps its position; new keys are appended.
// The zero value is not usable, create objects with NewObject.
type Object struct {
	pairs *orderedmap.OrderedMap[string, any]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{pairs: orderedmap.New[string, any]()}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return o.pairs.Len()
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	return o.pairs.Get(key)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores v under key after normalizing it.
func (o *Object) Set(key string, v any) {
	o.pairs.Set(key, Normalize(v))
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.pairs.Delete(key)
	return ok
}

// Keys returns the keys in order. The slice is a snapshot.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, 0, o.pairs.Len())
	for p := o.pairs.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// All iterates over the key/value pairs in order.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if o == nil {
			return
		}
		for p := o.pairs.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Merge copies every pair of src into o with assignment semantics.
func (o *Object) Merge(src *Object) {
	for k, v := range src.All() {
		o.pairs.Set(k, v)
	}
}

// MarshalJSON renders the object with its keys in order.
func (o *Object) MarshalJSON() ([]byte, error) {
	return appendJSON(nil, o)
}

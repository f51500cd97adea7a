package value

import "strconv"

// Array is an ordered sequence. It is always handled by pointer so that
// in-place edits (append, flatten, slot replacement) are visible to every
// holder of the reference.
type Array struct {
	items []any
}

// NewArray returns an array holding the normalized items.
func NewArray(items ...any) *Array {
	a := &Array{items: make([]any, 0, len(items))}
	for _, it := range items {
		a.items = append(a.items, Normalize(it))
	}
	return a
}

// Len returns the number of items.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// Get returns the item at i.
func (a *Array) Get(i int) (any, bool) {
	if a == nil || i < 0 || i >= len(a.items) {
		return nil, false
	}
	return a.items[i], true
}

// Set replaces the item at i. Setting one past the end appends.
func (a *Array) Set(i int, v any) bool {
	switch {
	case i >= 0 && i < len(a.items):
		a.items[i] = Normalize(v)
	case i == len(a.items):
		a.items = append(a.items, Normalize(v))
	default:
		return false
	}
	return true
}

// Append adds items to the end.
func (a *Array) Append(items ...any) {
	for _, it := range items {
		a.items = append(a.items, Normalize(it))
	}
}

// Remove deletes the item at i, shifting later items down.
func (a *Array) Remove(i int) bool {
	if a == nil || i < 0 || i >= len(a.items) {
		return false
	}
	a.items = append(a.items[:i], a.items[i+1:]...)
	return true
}

// Items returns the backing items. Callers must not retain the slice
// across mutations of the array.
func (a *Array) Items() []any {
	if a == nil {
		return nil
	}
	return a.items
}

// Replace swaps the whole content of the array, keeping its identity.
func (a *Array) Replace(items []any) {
	a.items = a.items[:0]
	a.Append(items...)
}

// Flatten splices nested arrays into a one level deeper, in place.
func (a *Array) Flatten() {
	flat := make([]any, 0, len(a.items))
	for _, it := range a.items {
		if inner, ok := it.(*Array); ok && inner != nil {
			flat = append(flat, inner.items...)
			continue
		}
		flat = append(flat, it)
	}
	a.items = flat
}

// MarshalJSON renders the array.
func (a *Array) MarshalJSON() ([]byte, error) {
	return appendJSON(nil, a)
}

// Index parses key as an array index. Only canonical non-negative decimal
// integers are accepted, so "01" and "-1" are not indexes.
func Index(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

package value

import "strconv"

// Child returns the member of container addressed by key. Objects are
// addressed by name, arrays by decimal index.
func Child(container any, key string) (any, bool) {
	switch c := container.(type) {
	case *Object:
		return c.Get(key)
	case *Array:
		i, ok := Index(key)
		if !ok {
			return nil, false
		}
		return c.Get(i)
	}
	return nil, false
}

// SetChild stores v under key in container.
func SetChild(container any, key string, v any) bool {
	switch c := container.(type) {
	case *Object:
		c.Set(key, v)
		return true
	case *Array:
		i, ok := Index(key)
		if !ok {
			return false
		}
		return c.Set(i, v)
	}
	return false
}

// DeleteChild removes key from container. Array items are spliced out.
func DeleteChild(container any, key string) bool {
	switch c := container.(type) {
	case *Object:
		return c.Delete(key)
	case *Array:
		i, ok := Index(key)
		if !ok {
			return false
		}
		return c.Remove(i)
	}
	return false
}

// Keys returns the member keys of container: object keys in order, or the
// decimal indexes of an array.
func Keys(container any) []string {
	switch c := container.(type) {
	case *Object:
		return c.Keys()
	case *Array:
		keys := make([]string, c.Len())
		for i := range keys {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	}
	return nil
}

// Len returns the member count of an Object or Array, and 0 otherwise.
func Len(container any) int {
	switch c := container.(type) {
	case *Object:
		return c.Len()
	case *Array:
		return c.Len()
	}
	return 0
}

package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Normalize converts a Go value into the closed value set.
//
// Go maps are unordered, so their keys are sorted to keep results
// deterministic. Structs go through their JSON form, which keeps field order.
// Values that cannot be represented become their fmt text.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil, bool, float64, string, *Object, *Array, *Deferred:
		return v
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case float32:
		return float64(x)
	case uint:
		return float64(x)
	case uint64:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		return objectFromMap(reflect.ValueOf(x))
	case []any:
		return NewArray(x...)
	case error:
		return x.Error()
	}
	return normalizeReflect(v)
}

func normalizeReflect(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		a := &Array{items: make([]any, 0, rv.Len())}
		for i := range rv.Len() {
			a.items = append(a.items, Normalize(rv.Index(i).Interface()))
		}
		return a
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return objectFromMap(rv)
		}
	case reflect.Struct:
		data, err := json.Marshal(v)
		if err == nil {
			if decoded, err := ParseJSON(data); err == nil {
				return decoded
			}
		}
	}
	return fmt.Sprint(v)
}

func objectFromMap(rv reflect.Value) any {
	if rv.IsNil() {
		return nil
	}
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	slices.Sort(keys)
	o := NewObject()
	for _, k := range keys {
		o.Set(k, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
	}
	return o
}

// DeepCopy duplicates objects and arrays recursively. Deferred values are
// shared between the copies.
func DeepCopy(v any) any {
	switch x := v.(type) {
	case *Object:
		if x == nil {
			return nil
		}
		o := NewObject()
		for k, item := range x.All() {
			o.pairs.Set(k, DeepCopy(item))
		}
		return o
	case *Array:
		if x == nil {
			return nil
		}
		a := &Array{items: make([]any, len(x.items))}
		for i, item := range x.items {
			a.items[i] = DeepCopy(item)
		}
		return a
	}
	return v
}

// Plain converts v to native Go values: map[string]any and []any.
// Key order is lost.
func Plain(v any) any {
	switch x := v.(type) {
	case *Object:
		if x == nil {
			return nil
		}
		m := make(map[string]any, x.Len())
		for k, item := range x.All() {
			m[k] = Plain(item)
		}
		return m
	case *Array:
		if x == nil {
			return nil
		}
		s := make([]any, len(x.items))
		for i, item := range x.items {
			s[i] = Plain(item)
		}
		return s
	}
	return v
}

// String renders v as it appears when substituted into text.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return FormatNumber(x)
	case *Object, *Array:
		s, err := ToJSON(x)
		if err != nil {
			return fmt.Sprint(Plain(x))
		}
		return s
	case *Deferred:
		return "[deferred]"
	}
	return String(Normalize(v))
}

// FormatNumber renders f in the shortest form that round-trips, switching to
// exponent notation for very large and very small magnitudes.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

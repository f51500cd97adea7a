// Package value defines the dynamic values that flow through interpolation.
//
// Trees, context values and callable results all use one closed set of Go
// types. Consumers switch on [KindOf] rather than on arbitrary Go types:
//
//	nil        -> KindNull
//	bool       -> KindBool
//	float64    -> KindNumber
//	string     -> KindString
//	*Object    -> KindObject   (insertion-ordered string-keyed map)
//	*Array     -> KindArray    (sequence with reference semantics)
//	*Deferred  -> KindDeferred (value that becomes available later)
//
// [Normalize] converts ordinary Go values (maps, slices, every numeric kind,
// structs) into this set. Objects keep key order, which matters because the
// tree walk and the serialized output both follow it.
//
// # Decoding
//
// [ParseJSON] and [ParseYAML] decode documents without losing key order:
//
//	tree, err := value.ParseJSON([]byte(`{"b": 1, "a": [true, null]}`))
//	obj := tree.(*value.Object)
//	obj.Keys() // ["b", "a"]
//
// # Text conversion
//
// [String] renders primitives the way they appear when substituted into
// text (1, 1.5, true, null, Infinity). [ToJSON] renders structured values.
package value

package value

// Kind identifies which member of the closed value set a Go value is.
type Kind int

// Value kinds.
const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
	KindDeferred
)

var kindNames = map[Kind]string{
	KindInvalid:  "invalid",
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindObject:   "object",
	KindArray:    "array",
	KindDeferred: "deferred",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// KindOf reports the kind of v. Values outside the closed set report
// KindInvalid; pass them through Normalize first.
func KindOf(v any) Kind {
	switch x := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case float64:
		return KindNumber
	case string:
		return KindString
	case *Object:
		if x == nil {
			return KindNull
		}
		return KindObject
	case *Array:
		if x == nil {
			return KindNull
		}
		return KindArray
	case *Deferred:
		if x == nil {
			return KindNull
		}
		return KindDeferred
	default:
		return KindInvalid
	}
}

// IsStructured reports whether v is an Object or an Array.
func IsStructured(v any) bool {
	k := KindOf(v)
	return k == KindObject || k == KindArray
}

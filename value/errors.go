package value

import "errors"

// Sentinel errors for value operations.
var (
	// ErrDecode is returned when a JSON or YAML document cannot be decoded.
	ErrDecode = errors.New("decode error")

	// ErrEncode is returned when a value cannot be serialized.
	ErrEncode = errors.New("encode error")

	// ErrPanic is returned by a deferred value whose computation panicked.
	ErrPanic = errors.New("deferred computation panicked")
)

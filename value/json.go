package value

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// ToJSON renders v as compact JSON with object keys in insertion order.
// Non-finite numbers render as null and deferred values as their
// placeholder text.
func ToJSON(v any) (string, error) {
	buf, err := appendJSON(nil, v)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func appendJSON(buf []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return append(buf, "null"...), nil
	case bool:
		if x {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil
	case float64:
		s := FormatNumber(x)
		if s == "NaN" || s == "Infinity" || s == "-Infinity" {
			s = "null"
		}
		return append(buf, s...), nil
	case string:
		return appendQuoted(buf, x), nil
	case *Object:
		if x == nil {
			return append(buf, "null"...), nil
		}
		buf = append(buf, '{')
		first := true
		for k, item := range x.All() {
			if !first {
				buf = append(buf, ',')
			}
			first = false
			buf = appendQuoted(buf, k)
			buf = append(buf, ':')
			var err error
			if buf, err = appendJSON(buf, item); err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	case *Array:
		if x == nil {
			return append(buf, "null"...), nil
		}
		buf = append(buf, '[')
		for i, item := range x.items {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			if buf, err = appendJSON(buf, item); err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case *Deferred:
		return appendQuoted(buf, String(x)), nil
	}
	n := Normalize(v)
	if KindOf(n) == KindInvalid {
		return nil, fmt.Errorf("%w: unsupported type %T", ErrEncode, v)
	}
	return appendJSON(buf, n)
}

// appendQuoted writes s as a JSON string without HTML escaping.
func appendQuoted(buf []byte, s string) []byte {
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return append(buf, bytes.TrimRight(out.Bytes(), "\n")...)
}

// ParseJSON decodes a JSON document into the value set, keeping object key
// order. Trailing content after the document is an error.
func ParseJSON(data []byte) (any, error) {
	raw, typ, offset, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if rest := bytes.TrimSpace(data[offset:]); len(rest) > 0 {
		return nil, fmt.Errorf("%w: unexpected trailing data %q", ErrDecode, truncate(rest))
	}
	v, err := decodeJSON(raw, typ)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return v, nil
}

func decodeJSON(raw []byte, typ jsonparser.ValueType) (any, error) {
	switch typ {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, err
		}
		return b, nil
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(raw)
		if err != nil {
			return nil, err
		}
		return f, nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, err
		}
		return s, nil
	case jsonparser.Object:
		o := NewObject()
		err := jsonparser.ObjectEach(raw, func(key, item []byte, itemType jsonparser.ValueType, _ int) error {
			decoded, err := decodeJSON(item, itemType)
			if err != nil {
				return err
			}
			o.pairs.Set(string(key), decoded)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return o, nil
	case jsonparser.Array:
		a := &Array{items: []any{}}
		var itemErr error
		_, err := jsonparser.ArrayEach(raw, func(item []byte, itemType jsonparser.ValueType, _ int, err error) {
			if itemErr != nil {
				return
			}
			if err != nil {
				itemErr = err
				return
			}
			decoded, err := decodeJSON(item, itemType)
			if err != nil {
				itemErr = err
				return
			}
			a.items = append(a.items, decoded)
		})
		if err == nil {
			err = itemErr
		}
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, fmt.Errorf("unknown value %q", truncate(raw))
}

func truncate(b []byte) string {
	const max = 32
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

package lookup

import (
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/code4ward/JSOI/value"
)

// JSONPath resolves keys that start with "$" as JSONPath expressions, for
// example "$.servers[0].host" or "$..name". The first match wins. Other keys
// are looked up directly on the root.
//
// The root is converted once at construction; later changes to it are not
// visible through the context.
type JSONPath struct {
	root  any
	plain any
}

// NewJSONPath creates a JSONPath context over root.
func NewJSONPath(root any) *JSONPath {
	root = value.Normalize(root)
	return &JSONPath{root: root, plain: value.Plain(root)}
}

// Get evaluates key.
func (c *JSONPath) Get(key string) (any, bool) {
	if !strings.HasPrefix(key, "$") {
		return value.Child(c.root, key)
	}
	expr, err := jp.ParseString(key)
	if err != nil {
		return nil, false
	}
	results := expr.Get(c.plain)
	if len(results) == 0 {
		return nil, false
	}
	return value.Normalize(results[0]), true
}

package lookup

import (
	"strings"

	"github.com/code4ward/JSOI/value"
)

// DefaultSeparator splits query paths.
const DefaultSeparator = "."

// Query resolves separator-delimited paths through nested objects and
// arrays. Each segment may index arrays: "hosts[0][1]". Any traversal
// failure reports the key as not found.
type Query struct {
	root any
	sep  string
}

// NewQuery creates a path context over root. An empty separator selects
// DefaultSeparator.
func NewQuery(root any, sep string) *Query {
	if sep == "" {
		sep = DefaultSeparator
	}
	return &Query{root: value.Normalize(root), sep: sep}
}

// Separator returns the path separator in use.
func (q *Query) Separator() string {
	return q.sep
}

// Get walks the path described by key.
func (q *Query) Get(key string) (any, bool) {
	cur := q.root
	for _, segment := range strings.Split(key, q.sep) {
		for i, part := range strings.Split(segment, "[") {
			if part == "" {
				continue
			}
			name := part
			if i > 0 {
				name = strings.TrimSuffix(part, "]")
			}
			next, ok := value.Child(cur, name)
			if !ok {
				return nil, false
			}
			cur = next
		}
	}
	return cur, true
}

package tag

import (
	"slices"
	"strings"
)

// Edit replaces the byte range [Start, End) of a string.
type Edit struct {
	Replacement string
	Start       int
	End         int
}

// ResolveFunc produces the replacement text for a match. whole is the
// complete string being scanned.
type ResolveFunc func(m Match, whole string) (string, error)

// Replace scans s once and substitutes every tag with the text returned by
// resolve. Nested tags are not revisited in the same call; the outer markers
// survive for a later pass.
func Replace(s string, resolve ResolveFunc, opts ...Option) (string, error) {
	sc := NewScanner(s, opts...)
	var edits []Edit
	for {
		m, ok := sc.Next()
		if !ok {
			break
		}
		text, err := resolve(m, s)
		if err != nil {
			return "", err
		}
		edits = append(edits, Edit{Replacement: text, Start: m.Start, End: m.End})
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return ApplyEdits(s, edits), nil
}

// ApplyEdits rebuilds s with the edits applied. Edits must not overlap; they
// are applied in offset order regardless of slice order.
func ApplyEdits(s string, edits []Edit) string {
	if len(edits) == 0 {
		return s
	}
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b Edit) int { return a.Start - b.Start })

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, e := range sorted {
		b.WriteString(s[last:e.Start])
		b.WriteString(e.Replacement)
		last = e.End
	}
	b.WriteString(s[last:])
	return b.String()
}

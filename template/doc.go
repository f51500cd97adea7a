// Package template substitutes {{key}} tags in strings.
//
// Keys are trimmed and looked up in a [lookup.Context]. Unknown keys stay in
// place unless a not-found handler supplies a value:
//
//	e := template.New()
//	res, err := e.Interpolate(ctx, "Hello, {{ name }}!", lookup.Map{"name": "World"})
//	// res.Value: "Hello, World!", res.Replaced: 1
//
// # Type preservation
//
// A template that is exactly one tag returns the looked-up value itself
// rather than its text, so "{{port}}" can yield the number 8080. Turn this off
// with WithTypePreservation(false), or use Render, which always returns text.
// Objects and arrays embedded in longer text are written as JSON.
//
// # Nested tags
//
// The innermost tag is resolved first and its outer markers are left for a
// later call:
//
//	"{{user_{{id}}}}"  ->  "{{user_7}}"
//
// WithEnclosureTracking keeps "}}" inside single-brace groups, such as JSON
// text, from closing a tag.
//
// # Deferred values
//
// A *value.Deferred found for a tag is not substituted during the scan. The
// tag is swapped for a generated placeholder, all deferred values of the
// call are awaited together, and the text is resolved again with their
// outcomes. A failed value leaves its original tag in the text; the others
// are unaffected. Each batch runs inside an OpenTelemetry span and may be
// bounded with WithSettleTimeout.
//
// # Function tags
//
// With WithFunctions, a tag starting with "->" is parsed as a call
// expression:
//
//	{{-> upper(name)}}
//	{{-> Exp('1 + 2')}}
//
// [Functions] returns a registry of string helpers (truncate, json, upper,
// lower, trim, split, join, replace, contains, hasPrefix, hasSuffix,
// default, indent, wrap, lookup, concat).
package template

// Package jsoi interpolates {{key}} tags in strings and in JSON-like trees.
//
// The module is split into packages that build on each other:
//
//   - value: ordered objects, arrays, deferred values and JSON/YAML codecs
//   - tag: finds {{...}} tags, tracking single-brace groups
//   - expression: evaluates infix arithmetic and comparisons
//   - call: parses and invokes function tags ("{{-> f(x)}}")
//   - lookup: flat, path, JSONPath and layered value contexts
//   - template: resolves the tags of one string
//   - tree: resolves every key and value of an object tree
//   - config: settings from files and JSOI_ environment variables
//
// # Quick Start
//
// A string:
//
//	e := template.New()
//	res, _ := e.Interpolate(ctx, "Hello {{name}}", lookup.Map{"name": "World"})
//	// res.Value: "Hello World"
//
// A tree, where members see their siblings:
//
//	root, _ := value.ParseJSON([]byte(`{"host": "db", "url": "pg://{{host}}:{{port}}"}`))
//	res, _ := tree.Interpolate(ctx, root, lookup.Map{"port": 5432})
//	// url: "pg://db:5432"
//
// The jsoi command in cmd/jsoi wraps both for files.
package jsoi

// Package lookup resolves tag keys to values.
//
// Every interpolation engine reads values through the [Context] interface.
// The package ships several implementations:
//
//   - [Map]: flat lookup in a Go map
//   - [FromObject]: flat lookup in an ordered object
//   - [Query]: path lookup such as "server.ports[0]" with a configurable separator
//   - [JSONPath]: JSONPath lookup for keys starting with "$"
//   - [Layered]: first hit across several contexts
//
// Values returned by a Context are normalized into the closed set defined
// by package value.
package lookup

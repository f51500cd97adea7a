// Package tree interpolates every key and string value of a JSON-like tree.
//
// The tree is walked depth-first. For each string leaf the key is resolved
// first, then the value, each up to two times so one level of nested tags
// settles in a single walk. Lookups see the settled members of the
// enclosing object before the global context:
//
//	root, _ := value.ParseJSON([]byte(`{"Name": "{{First}} {{Last}}", "Greeting": "Hi {{Name}}"}`))
//	res, err := tree.Interpolate(ctx, root, lookup.Map{"First": "Ada", "Last": "Lovelace"})
//	// Greeting: "Hi Ada Lovelace"
//
// Values that depend on members processed later need another walk;
// InterpolateUntilStable repeats until a walk replaces nothing.
//
// # Commands
//
// A key that resolves to one of these is a command:
//
//	"<-" or "<-true"     merge the structured value into the holding object
//	"<--" or "<--true"   merge it into the parent; in an array, it takes the
//	                     holding object's place and arrays are spliced in
//	"<-false", "<--false" drop the property
//
// Objects emptied by a command are removed from their parent once the walk
// ends. "__ProcessKeys__" lists the keys of an object to visit, in order,
// and "__DEBUG__<n>" keys are sent to the debug sink and removed.
//
// # Unknown keys
//
// WithNotFoundAction picks between keeping the tag, deleting the property
// and failing with ErrValueNotFound. A WithNotFound handler may return a
// replacement or an Action.
package tree

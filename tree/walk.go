package tree

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/code4ward/JSOI/lookup"
	"github.com/code4ward/JSOI/tag"
	"github.com/code4ward/JSOI/template"
	"github.com/code4ward/JSOI/value"
)

// walker holds the state of one Interpolate call.
type walker struct {
	ctx      context.Context
	i        *Interpolator
	replaced int

	// deletes holds paths removed after the walk, in queue order.
	deletes [][]string

	// flatten holds arrays flattened one level after the walk, in order.
	flatten     []*value.Array
	flattenSeen map[*value.Array]bool

	// slotArrays are arrays a copy-into-parent command stored in an array
	// slot; later commands for the same slot append to them.
	slotArrays map[*value.Array]bool
}

func newWalker(ctx context.Context, i *Interpolator) *walker {
	return &walker{
		ctx:         ctx,
		i:           i,
		flattenSeen: make(map[*value.Array]bool),
		slotArrays:  make(map[*value.Array]bool),
	}
}

// walk visits container depth-first. path holds the keys from the root to
// container and stack the containers above it.
func (w *walker) walk(container any, path []string, stack []any) error {
	stack = append(stack[:len(stack):len(stack)], container)
	for _, key := range processKeys(container) {
		v, ok := value.Child(container, key)
		if !ok {
			continue
		}
		switch x := v.(type) {
		case *value.Object, *value.Array:
			if err := w.walk(x, appendPath(path, key), stack); err != nil {
				return err
			}
		case string:
			if err := w.leaf(container, key, strings.TrimSpace(x), path, stack); err != nil {
				return &PathError{Path: formatPath(appendPath(path, key)), Err: err}
			}
			if debugKeyPattern.MatchString(key) {
				if dv, ok := value.Child(container, key); ok {
					w.i.opts.debugSink()(key, dv)
					value.DeleteChild(container, key)
				}
			}
		}
	}
	return nil
}

// processKeys returns the keys to visit: the __ProcessKeys__ list when an
// object carries one, else its natural order. Taken before any key is
// processed.
func processKeys(container any) []string {
	if obj, ok := container.(*value.Object); ok {
		if v, ok := obj.Get(processKeysKey); ok {
			if order, ok := v.(*value.Array); ok {
				keys := make([]string, 0, order.Len())
				for _, k := range order.Items() {
					keys = append(keys, value.String(k))
				}
				return keys
			}
		}
	}
	return value.Keys(container)
}

func (w *walker) leaf(container any, key, raw string, path []string, stack []any) error {
	local := w.localContext(container)

	resolvedKey, err := w.resolveKey(key, local)
	if err != nil {
		return err
	}
	cmd := classify(resolvedKey)
	if cmd == cmdSkip {
		w.deletes = append(w.deletes, appendPath(path, key))
		return nil
	}

	deleted, err := w.resolveValue(container, key, raw, local, path)
	if err != nil || deleted {
		return err
	}

	switch cmd {
	case cmdCopyIntoObject:
		w.copyIntoObject(container, key)
	case cmdCopyIntoParent:
		return w.copyIntoParent(container, key, path, stack)
	default:
		if obj, ok := container.(*value.Object); ok && resolvedKey != key {
			v, _ := obj.Get(key)
			obj.Delete(key)
			obj.Set(resolvedKey, v)
		}
	}
	return nil
}

// localContext layers the container's settled members over the global
// context. Strings still holding a tag are left out so stale text is never
// substituted.
func (w *walker) localContext(container any) lookup.Context {
	snapshot := value.NewObject()
	for _, k := range value.Keys(container) {
		v, _ := value.Child(container, k)
		if s, ok := v.(string); ok && tag.Contains(s) {
			continue
		}
		snapshot.Set(k, v)
	}
	var siblings lookup.Context = lookup.FromObject(snapshot)
	if w.i.opts.separator != "" {
		siblings = lookup.NewQuery(snapshot, w.i.opts.separator)
	}
	return lookup.Layer(siblings, w.i.values)
}

// resolveKey resolves tags in a key. Unknown keys keep their tag text;
// function tags are evaluated.
func (w *walker) resolveKey(key string, local lookup.Context) (string, error) {
	cur := key
	for range resolvePasses {
		res, err := w.i.keyEngine.Resolve(w.ctx, cur, local, nil)
		if err != nil {
			return "", err
		}
		w.replaced += res.Replaced
		next := res.String()
		if next == cur {
			break
		}
		cur = next
	}
	return cur, nil
}

// resolveValue resolves tags in a string value and stores the result. It
// reports whether the not-found action removed the value.
func (w *walker) resolveValue(container any, key, raw string, local lookup.Context, path []string) (bool, error) {
	cur := raw
	for range resolvePasses {
		action := ActionNone
		res, err := w.i.engine.Resolve(w.ctx, cur, local, w.notFound(&action))
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				return false, notFound
			}
			return false, err
		}
		if action == ActionDelete {
			w.remove(container, key, path)
			return true, nil
		}
		w.replaced += res.Replaced

		if s, ok := res.Value.(string); ok && s == cur {
			break
		}
		value.SetChild(container, key, res.Value)
		next, ok := res.Value.(string)
		if !ok {
			break
		}
		cur = next
	}
	return false, nil
}

// remove deletes a value right away from objects. Array items are queued so
// indexes stay stable during the walk.
func (w *walker) remove(container any, key string, path []string) {
	if obj, ok := container.(*value.Object); ok {
		obj.Delete(key)
		return
	}
	w.deletes = append(w.deletes, appendPath(path, key))
}

// notFound applies the user handler or the configured action. A Delete
// request is reported through action.
func (w *walker) notFound(action *Action) template.NotFoundFunc {
	return func(ctx context.Context, matchText, key string) (any, error) {
		policy := w.i.opts.action
		if fn := w.i.opts.notFound; fn != nil {
			v, err := fn(ctx, matchText, key)
			if err != nil {
				return nil, err
			}
			a, isAction := v.(Action)
			if !isAction {
				return v, nil
			}
			policy = a
		}
		switch policy {
		case ActionThrow:
			return nil, &NotFoundError{Tag: matchText, Key: key}
		case ActionDelete:
			*action = ActionDelete
		}
		return matchText, nil
	}
}

// copyIntoObject merges a structured command value into the object holding
// the command and drops the command key.
func (w *walker) copyIntoObject(container any, key string) {
	obj, ok := container.(*value.Object)
	if !ok {
		return
	}
	candidate, _ := obj.Get(key)
	if !value.IsStructured(candidate) {
		return
	}
	assign(obj, candidate)
	obj.Delete(key)
}

// copyIntoParent moves a structured command value one level up, into the
// container that holds the command's object.
func (w *walker) copyIntoParent(container any, key string, path []string, stack []any) error {
	if len(stack) < 2 || len(path) == 0 {
		return ErrNoParent
	}
	parent := stack[len(stack)-2]
	slotKey := path[len(path)-1]

	candidate, _ := value.Child(container, key)
	if !value.IsStructured(candidate) {
		return nil
	}
	candidateArray, candidateIsArray := candidate.(*value.Array)
	slot, _ := value.Child(parent, slotKey)
	slotArray, _ := slot.(*value.Array)
	_, parentIsArray := parent.(*value.Array)

	switch {
	case slotArray != nil && w.slotArrays[slotArray] && candidateIsArray:
		slotArray.Append(candidateArray.Items()...)
	case parentIsArray:
		value.SetChild(parent, slotKey, candidate)
		if candidateIsArray {
			w.slotArrays[candidateArray] = true
		}
	default:
		assign(parent.(*value.Object), candidate)
		w.deletes = append(w.deletes, appendPath(path, key))
	}

	if parentIsArray {
		w.markFlatten(path)
	}
	return nil
}

// markFlatten queues the trailing run of arrays along path, innermost
// first. path ends at the slot, which now holds the loaded value, so a
// loaded object breaks the run and nothing is flattened. Substituting an
// array for an array item nests one level too deep; flattening removes
// that level.
func (w *walker) markFlatten(path []string) {
	var run []*value.Array
	cur := w.i.root
	if a, ok := cur.(*value.Array); ok {
		run = append(run, a)
	}
	for _, k := range path {
		cur, _ = value.Child(cur, k)
		if a, ok := cur.(*value.Array); ok {
			run = append(run, a)
		} else {
			run = nil
		}
	}
	for i := len(run) - 1; i >= 0; i-- {
		if !w.flattenSeen[run[i]] {
			w.flattenSeen[run[i]] = true
			w.flatten = append(w.flatten, run[i])
		}
	}
}

// finish flattens marked arrays, then applies queued deletions newest
// first. A container emptied by a deletion is removed from its own parent.
func (w *walker) finish() {
	for _, a := range w.flatten {
		a.Flatten()
	}
	for i := len(w.deletes) - 1; i >= 0; i-- {
		w.deletePath(w.deletes[i])
	}
}

func (w *walker) deletePath(path []string) {
	containers := []any{w.i.root}
	cur := w.i.root
	for _, k := range path[:len(path)-1] {
		next, ok := value.Child(cur, k)
		if !ok {
			return
		}
		containers = append(containers, next)
		cur = next
	}
	value.DeleteChild(cur, path[len(path)-1])

	if n := len(containers); n >= 2 && value.IsStructured(cur) && value.Len(cur) == 0 {
		value.DeleteChild(containers[n-2], path[len(path)-2])
	}
}

// assign copies the members of src into dst. Array items land under their
// decimal index.
func assign(dst *value.Object, src any) {
	switch s := src.(type) {
	case *value.Object:
		dst.Merge(s)
	case *value.Array:
		for i, item := range s.Items() {
			dst.Set(strconv.Itoa(i), item)
		}
	}
}

func appendPath(path []string, key string) []string {
	return append(path[:len(path):len(path)], key)
}

func formatPath(path []string) string {
	return strings.Join(path, ".")
}

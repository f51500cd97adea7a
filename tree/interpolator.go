package tree

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/code4ward/JSOI/lookup"
	"github.com/code4ward/JSOI/template"
	"github.com/code4ward/JSOI/value"
)

const tracerName = "github.com/code4ward/JSOI/tree"

// DefaultMaxRounds bounds InterpolateUntilStable when no limit is given.
const DefaultMaxRounds = 10

// resolvePasses is how many times a key or value is resolved per walk.
const resolvePasses = 2

// Result is the outcome of one interpolation.
type Result struct {
	// Tree is the interpolated root, an *value.Object or *value.Array.
	Tree any

	// Replaced counts successful substitutions in keys and values.
	Replaced int
}

// Interpolator resolves tags throughout an object tree. It is not safe for
// concurrent use; each call walks and mutates the same root.
type Interpolator struct {
	root      any
	values    lookup.Context
	opts      options
	tracer    trace.Tracer
	engine    *template.Engine
	keyEngine *template.Engine
}

// New prepares an interpolator. A *value.Object or *value.Array root is
// mutated in place unless WithDuplicate is set; Go maps and slices are
// converted first, so the caller's originals never change.
func New(root any, values lookup.Context, opts ...Option) (*Interpolator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	root = value.Normalize(root)
	if !value.IsStructured(root) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidRoot, value.KindOf(root))
	}
	if o.duplicate {
		root = value.DeepCopy(root)
	}
	if values == nil {
		values = lookup.Empty
	}

	i := &Interpolator{root: root, values: values, opts: o, tracer: o.tracer}
	if i.tracer == nil {
		i.tracer = otel.Tracer(tracerName)
	}
	i.engine = template.New(
		template.WithEnclosureTracking(o.trackEnclosures),
		template.WithTypePreservation(o.preserveTypes),
		template.WithFunctions(o.functions),
		template.WithStrictQuoting(o.strictQuoting),
		template.WithCaller(i),
		template.WithLogger(o.logger),
		template.WithTracer(i.tracer),
		template.WithSettleTimeout(o.settleTimeout),
	)
	i.keyEngine = i.engine.With(template.WithTypePreservation(false))
	return i, nil
}

// Root returns the tree being interpolated.
func (i *Interpolator) Root() any {
	return i.root
}

// Interpolate walks the tree once, resolving every key and string value up
// to two times. Values that depend on not yet resolved siblings may need
// further calls; see InterpolateUntilStable.
func (i *Interpolator) Interpolate(ctx context.Context) (Result, error) {
	ctx, span := i.tracer.Start(ctx, "jsoi.tree.interpolate")
	defer span.End()

	w := newWalker(ctx, i)
	if err := w.walk(i.root, nil, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "interpolation failed")
		return Result{}, err
	}
	w.finish()

	span.SetAttributes(attribute.Int("jsoi.tree.replaced", w.replaced))
	i.opts.logger.DebugContext(ctx, "interpolated tree",
		slog.Int("replaced", w.replaced),
		slog.Int("flattened", len(w.flatten)),
		slog.Int("deleted", len(w.deletes)))
	return Result{Tree: i.root, Replaced: w.replaced}, nil
}

// InterpolateUntilStable calls Interpolate until a round replaces nothing,
// at most maxRounds times (DefaultMaxRounds when maxRounds <= 0). It
// returns the summed result and the number of rounds run.
func (i *Interpolator) InterpolateUntilStable(ctx context.Context, maxRounds int) (Result, int, error) {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	total := Result{Tree: i.root}
	for round := 1; round <= maxRounds; round++ {
		res, err := i.Interpolate(ctx)
		if err != nil {
			return total, round, err
		}
		total.Replaced += res.Replaced
		if res.Replaced == 0 {
			return total, round, nil
		}
	}
	return total, maxRounds, fmt.Errorf("%w after %d rounds", ErrNotConverged, maxRounds)
}

// Interpolate is a one-shot helper that builds an Interpolator and walks the
// tree once.
func Interpolate(ctx context.Context, root any, values lookup.Context, opts ...Option) (Result, error) {
	i, err := New(root, values, opts...)
	if err != nil {
		return Result{}, err
	}
	return i.Interpolate(ctx)
}

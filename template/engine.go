package template

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/code4ward/JSOI/call"
	"github.com/code4ward/JSOI/lookup"
	"github.com/code4ward/JSOI/tag"
	"github.com/code4ward/JSOI/value"
)

// tracerName identifies spans started by this package.
const tracerName = "github.com/code4ward/JSOI/template"

// NotFoundFunc supplies a value for a key the context does not know.
// matchText is the full tag text and key its trimmed content. Returning the
// match text leaves the tag in place; returning a *value.Deferred defers the
// substitution to the batch settle.
type NotFoundFunc func(ctx context.Context, matchText, key string) (any, error)

// Result is the outcome of one interpolation.
type Result struct {
	// Value is the rebuilt string, or the native value when the whole
	// template was a single tag and type preservation is on.
	Value any

	// Replaced counts successful substitutions.
	Replaced int
}

// String returns the result as text.
func (r Result) String() string {
	return value.String(r.Value)
}

// Engine substitutes {{key}} tags in strings. It is safe for concurrent use.
type Engine struct {
	trackEnclosures bool
	preserveTypes   bool
	notFound        NotFoundFunc
	logger          *slog.Logger
	tracer          trace.Tracer
	placeholders    *Placeholders
	settleTimeout   time.Duration
	functions       *call.Registry
	strictQuoting   bool
	caller          any
}

// Option configures an Engine.
type Option func(*Engine)

// WithEnclosureTracking makes the scanner ignore "}}" inside unbalanced
// single braces. Off by default.
func WithEnclosureTracking(on bool) Option {
	return func(e *Engine) {
		e.trackEnclosures = on
	}
}

// WithTypePreservation controls whether a template made of exactly one tag
// returns the native value. On by default.
func WithTypePreservation(on bool) Option {
	return func(e *Engine) {
		e.preserveTypes = on
	}
}

// WithNotFound sets the handler called for unknown keys.
func WithNotFound(fn NotFoundFunc) Option {
	return func(e *Engine) {
		e.notFound = fn
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer used for batch settle spans. Defaults to the
// global provider's tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithPlaceholders shares a placeholder generator between engines.
func WithPlaceholders(p *Placeholders) Option {
	return func(e *Engine) {
		if p != nil {
			e.placeholders = p
		}
	}
}

// WithSettleTimeout bounds the wait for one deferred batch. Members still
// pending when it expires count as failures. Zero waits indefinitely.
func WithSettleTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.settleTimeout = d
	}
}

// WithFunctions enables function tags ("{{-> f(x)}}") evaluated against
// reg plus the built-ins of package call. Built-ins win on name clashes.
func WithFunctions(reg *call.Registry) Option {
	return func(e *Engine) {
		e.functions = call.WithBuiltins(reg)
	}
}

// WithStrictQuoting rejects bare identifiers in function tag arguments.
func WithStrictQuoting(on bool) Option {
	return func(e *Engine) {
		e.strictQuoting = on
	}
}

// WithCaller sets the value functions see as call.Env.Caller. Defaults to
// the engine itself.
func WithCaller(caller any) Option {
	return func(e *Engine) {
		e.caller = caller
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		preserveTypes: true,
		logger:        slog.Default(),
		tracer:        otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.placeholders == nil {
		e.placeholders = NewPlaceholders()
	}
	if e.caller == nil {
		e.caller = e
	}
	return e
}

// With returns a copy of the engine with opts applied. The copy shares the
// placeholder generator.
func (e *Engine) With(opts ...Option) *Engine {
	c := *e
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Interpolate resolves every tag in tmpl against values using the engine's
// not-found handler.
func (e *Engine) Interpolate(ctx context.Context, tmpl string, values lookup.Context) (Result, error) {
	return e.Resolve(ctx, tmpl, values, e.notFound)
}

// Resolve is Interpolate with a per-call not-found handler. A nil handler
// leaves unknown tags in place.
func (e *Engine) Resolve(ctx context.Context, tmpl string, values lookup.Context, notFound NotFoundFunc) (Result, error) {
	if values == nil {
		values = lookup.Empty
	}
	r := &run{engine: e, ctx: ctx}
	v, err := r.resolve(tmpl, r.contextFinder(values, notFound))
	if err != nil {
		return Result{}, err
	}
	return Result{Value: v, Replaced: r.replaced}, nil
}

// Render resolves tmpl against vars with type preservation off and returns
// the rebuilt text.
func (e *Engine) Render(ctx context.Context, tmpl string, vars map[string]any) (string, error) {
	res, err := e.With(WithTypePreservation(false)).Interpolate(ctx, tmpl, lookup.Map(vars))
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

// Variables returns the trimmed keys of the tags in tmpl, deduplicated in
// order of appearance. Only the innermost tags of a nested template are
// reported.
func (e *Engine) Variables(tmpl string) ([]string, error) {
	matches, err := tag.Scan(tmpl, e.scanOptions()...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(matches))
	var keys []string
	for _, m := range matches {
		key := strings.TrimSpace(m.Key)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// ValidateVariables checks that all required variables are provided.
// Returns an error wrapping ErrVariable if any required variable is missing.
func ValidateVariables(required []string, provided lookup.Context) error {
	if provided == nil {
		provided = lookup.Empty
	}
	var missing []string
	for _, name := range required {
		if _, ok := provided.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingError{Names: missing}
	}
	return nil
}

func (e *Engine) callOptions() []call.ParseOption {
	if e.strictQuoting {
		return []call.ParseOption{call.WithStrictQuoting()}
	}
	return nil
}

func (e *Engine) scanOptions() []tag.Option {
	return []tag.Option{tag.WithEnclosureTracking(e.trackEnclosures)}
}

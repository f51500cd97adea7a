package tree

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/code4ward/JSOI/call"
	"github.com/code4ward/JSOI/value"
)

// NotFoundFunc decides what replaces a tag whose key is unknown. It returns
// either a literal value or an Action.
type NotFoundFunc func(ctx context.Context, matchText, key string) (any, error)

// DebugFunc receives the value of a __DEBUG__ key before the key is removed.
type DebugFunc func(key string, v any)

type options struct {
	duplicate       bool
	separator       string
	functions       *call.Registry
	notFound        NotFoundFunc
	action          Action
	strictQuoting   bool
	debug           DebugFunc
	trackEnclosures bool
	preserveTypes   bool
	logger          *slog.Logger
	tracer          trace.Tracer
	settleTimeout   time.Duration
}

// Option configures an Interpolator.
type Option func(*options)

func defaultOptions() options {
	return options{
		trackEnclosures: true,
		preserveTypes:   true,
		logger:          slog.Default(),
	}
}

// WithDuplicate deep-copies the root before interpolating, leaving the
// caller's tree untouched.
func WithDuplicate(on bool) Option {
	return func(o *options) {
		o.duplicate = on
	}
}

// WithSeparator makes sibling lookups path queries split on sep, so
// "{{server.port}}" reaches into a sibling object.
func WithSeparator(sep string) Option {
	return func(o *options) {
		o.separator = sep
	}
}

// WithFunctions sets the functions available to "->" tags. The built-ins
// ƒ, Exp and _ are always present and win over functions of the same name.
func WithFunctions(reg *call.Registry) Option {
	return func(o *options) {
		o.functions = reg
	}
}

// WithNotFound sets a handler for unknown keys in values. It overrides the
// not-found action.
func WithNotFound(fn NotFoundFunc) Option {
	return func(o *options) {
		o.notFound = fn
	}
}

// WithNotFoundAction sets the policy for unknown keys in values. Defaults
// to ActionNone.
func WithNotFoundAction(a Action) Option {
	return func(o *options) {
		o.action = a
	}
}

// WithStrictQuoting rejects bare identifiers as function arguments.
func WithStrictQuoting(on bool) Option {
	return func(o *options) {
		o.strictQuoting = on
	}
}

// WithDebug sets the sink for __DEBUG__ keys. Defaults to logging at Info.
func WithDebug(fn DebugFunc) Option {
	return func(o *options) {
		o.debug = fn
	}
}

// WithEnclosureTracking controls single-brace tracking in tags. On by
// default for trees, since values often hold JSON text.
func WithEnclosureTracking(on bool) Option {
	return func(o *options) {
		o.trackEnclosures = on
	}
}

// WithTypePreservation controls whether a value made of exactly one tag
// takes the native type of what it resolved to. On by default.
func WithTypePreservation(on bool) Option {
	return func(o *options) {
		o.preserveTypes = on
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracer sets the tracer for interpolation and batch settle spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithSettleTimeout bounds the wait for each deferred batch.
func WithSettleTimeout(d time.Duration) Option {
	return func(o *options) {
		o.settleTimeout = d
	}
}

func (o *options) debugSink() DebugFunc {
	if o.debug != nil {
		return o.debug
	}
	logger := o.logger
	return func(key string, v any) {
		logger.Info("debug value", slog.String("key", key), slog.String("value", value.String(v)))
	}
}

package template

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/code4ward/JSOI/call"
	"github.com/code4ward/JSOI/lookup"
	"github.com/code4ward/JSOI/tag"
	"github.com/code4ward/JSOI/value"
)

// hit is a candidate value for one tag. count marks it as a substitution
// worth reporting.
type hit struct {
	value any
	count bool
}

// finder resolves one tag; ok false leaves the tag text untouched.
type finder func(m tag.Match, key string) (h hit, ok bool, err error)

// pending is a deferred value waiting behind a placeholder tag.
type pending struct {
	key      string
	text     string
	deferred *value.Deferred
}

type outcome struct {
	value any
	err   error
	text  string
}

// pass is the result of one scan over the text.
type pass struct {
	text    string
	native  any
	whole   bool
	pending []pending
}

// run carries the state of a single Interpolate call.
type run struct {
	engine   *Engine
	ctx      context.Context
	replaced int
}

func (r *run) resolve(s string, find finder) (any, error) {
	for {
		p, err := r.scan(s, find)
		if err != nil {
			return nil, err
		}
		if len(p.pending) == 0 {
			if p.whole {
				return p.native, nil
			}
			return p.text, nil
		}
		outcomes, err := r.settle(p.pending)
		if err != nil {
			return nil, err
		}
		s, find = p.text, outcomeFinder(outcomes)
	}
}

func (r *run) scan(s string, find finder) (pass, error) {
	var p pass
	text, err := tag.Replace(s, func(m tag.Match, whole string) (string, error) {
		h, ok, err := find(m, strings.TrimSpace(m.Key))
		if err != nil || !ok {
			return m.Text, err
		}
		if d, isDeferred := h.value.(*value.Deferred); isDeferred {
			key := r.engine.placeholders.Next()
			p.pending = append(p.pending, pending{key: key, text: m.Text, deferred: d})
			return tag.Wrap(key), nil
		}
		if h.count {
			r.replaced++
		}
		if r.engine.preserveTypes && m.Start == 0 && m.End == len(whole) {
			p.native, p.whole = h.value, true
		}
		if value.IsStructured(h.value) {
			return value.ToJSON(h.value)
		}
		return value.String(h.value), nil
	}, r.engine.scanOptions()...)
	if err != nil {
		return pass{}, err
	}
	p.text = text
	return p, nil
}

// contextFinder looks keys up in values, then evaluates function tags, then
// asks the not-found handler.
func (r *run) contextFinder(values lookup.Context, notFound NotFoundFunc) finder {
	e := r.engine
	return func(m tag.Match, key string) (hit, bool, error) {
		if v, ok := values.Get(key); ok {
			return hit{value: v, count: true}, true, nil
		}
		if expr, ok := call.FunctionTag(key); ok && e.functions != nil {
			env := &call.Env{Context: r.ctx, Caller: e.caller, Values: values}
			v, err := e.functions.Evaluate(env, expr, e.callOptions()...)
			if err != nil {
				return hit{}, false, err
			}
			return hit{value: v, count: true}, true, nil
		}
		if notFound == nil {
			return hit{}, false, nil
		}
		v, err := notFound(r.ctx, m.Text, key)
		if err != nil {
			return hit{}, false, &HandlerError{Tag: m.Text, Err: err}
		}
		v = value.Normalize(v)
		s, isString := v.(string)
		return hit{value: v, count: !isString || s != m.Text}, true, nil
	}
}

// outcomeFinder resolves placeholder tags from a settled batch. Failed
// members fall back to their original tag text.
func outcomeFinder(outcomes map[string]outcome) finder {
	return func(_ tag.Match, key string) (hit, bool, error) {
		o, ok := outcomes[key]
		switch {
		case !ok:
			return hit{}, false, nil
		case o.err != nil:
			return hit{value: o.text}, true, nil
		}
		return hit{value: o.value, count: true}, true, nil
	}
}

// settle awaits every member of the batch concurrently. Members record
// their own outcome, so one failure never cancels the others.
func (r *run) settle(batch []pending) (map[string]outcome, error) {
	e := r.engine
	ctx, span := e.tracer.Start(r.ctx, "jsoi.template.settle",
		trace.WithAttributes(attribute.Int("jsoi.batch.size", len(batch))))
	defer span.End()

	waitCtx := ctx
	if e.settleTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, e.settleTimeout)
		defer cancel()
	}

	results := make([]outcome, len(batch))
	var g errgroup.Group
	for i, p := range batch {
		g.Go(func() error {
			v, err := p.deferred.Await(waitCtx)
			results[i] = outcome{value: v, err: err, text: p.text}
			return nil
		})
	}
	_ = g.Wait()

	if err := r.ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "context done")
		return nil, fmt.Errorf("%w: %w", ErrSettle, err)
	}

	outcomes := make(map[string]outcome, len(batch))
	rejected := 0
	for i, p := range batch {
		o := results[i]
		if o.err != nil {
			rejected++
			e.logger.DebugContext(ctx, "deferred value rejected",
				slog.String("tag", p.text),
				slog.Any("error", o.err))
		}
		outcomes[p.key] = o
	}
	span.SetAttributes(attribute.Int("jsoi.batch.rejected", rejected))
	e.logger.DebugContext(ctx, "settled deferred batch",
		slog.Int("size", len(batch)),
		slog.Int("rejected", rejected))
	return outcomes, nil
}

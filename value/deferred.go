package value

import (
	"context"
	"fmt"
	"sync"
)

// Deferred is a value that becomes available later, the result of an
// asynchronous callable. The computation starts on the first Await and runs
// once; every awaiter observes the same outcome.
//
// The computation keeps the first awaiter's context values but not its
// cancellation: an awaiter that gives up leaves it running for later ones.
type Deferred struct {
	fn   func(context.Context) (any, error)
	once sync.Once
	done chan struct{}
	val  any
	err  error
}

// Defer wraps fn as a deferred value.
func Defer(fn func(ctx context.Context) (any, error)) *Deferred {
	return &Deferred{fn: fn, done: make(chan struct{})}
}

// Resolved returns a deferred value that already succeeded with v.
func Resolved(v any) *Deferred {
	d := &Deferred{done: make(chan struct{}), val: Normalize(v)}
	d.once.Do(func() { close(d.done) })
	return d
}

// Rejected returns a deferred value that already failed with err.
func Rejected(err error) *Deferred {
	d := &Deferred{done: make(chan struct{}), err: err}
	d.once.Do(func() { close(d.done) })
	return d
}

// Await starts the computation if needed and blocks until it settles or ctx
// is done.
func (d *Deferred) Await(ctx context.Context) (any, error) {
	d.once.Do(func() { go d.run(context.WithoutCancel(ctx)) })
	select {
	case <-d.done:
		return d.val, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Settled reports whether the outcome is available without blocking.
func (d *Deferred) Settled() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

func (d *Deferred) run(ctx context.Context) {
	defer close(d.done)
	defer func() {
		if r := recover(); r != nil {
			d.val, d.err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	v, err := d.fn(ctx)
	d.val, d.err = Normalize(v), err
}

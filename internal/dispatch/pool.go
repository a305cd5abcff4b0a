package dispatch

import (
	"context"
	"time"
)

// Pool bounds the number of outbound API calls in flight at once. Callers
// submit blocking work and wait for its result; the bound applies across all
// tool invocations sharing the pool.
type Pool struct {
	slots chan struct{}
}

// New creates a pool with the given number of workers. Values below one are
// clamped to one.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{slots: make(chan struct{}, workers)}
}

// Workers returns the pool's concurrency bound.
func (p *Pool) Workers() int {
	return cap(p.slots)
}

// Do runs fn on the pool with a context bounded by timeout and waits for it
// to finish. If the pool is saturated, Do blocks until a slot frees up or ctx
// is cancelled. A zero timeout means fn inherits ctx unchanged.
func (p *Pool) Do(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-p.slots }()
		done <- fn(callCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-callCtx.Done():
		// The worker keeps its slot until fn observes cancellation and
		// returns; the caller is released immediately.
		return callCtx.Err()
	}
}

// Call runs fn on the pool and returns its result. It is the generic
// companion to Pool.Do for calls that produce a value.
func Call[T any](ctx context.Context, p *Pool, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	type outcome struct {
		val T
		err error
	}
	// Buffered so an abandoned worker can still deliver without leaking.
	ch := make(chan outcome, 1)

	err := p.Do(ctx, timeout, func(ctx context.Context) error {
		val, err := fn(ctx)
		ch <- outcome{val: val, err: err}
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	o := <-ch
	return o.val, o.err
}

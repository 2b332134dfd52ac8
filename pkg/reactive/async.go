package reactive

import (
	"context"
	"time"
)

// NewAsyncComputed creates a Computed whose value is fetched off the calling
// goroutine.
//
// source runs synchronously on every evaluation and is tracked like a normal
// producer: the signals it reads are the Computed's dependencies. Its result
// is handed to fetch, which runs on a new goroutine with a context that is
// cancelled as soon as a newer evaluation starts or the Computed is disposed.
//
// Only the latest evaluation can update the Computed. A superseded result is
// discarded even if fetch ignored the cancellation. While an evaluation is in
// flight the Computed keeps its last resolved value, or Unset if none has
// resolved yet.
//
// Results are delivered through the installed Scheduler. A rejected fetch is
// reported to readers as a *ProducerError and keeps the last good value. The
// Computed stays stale, so the next read after the rejection has been
// delivered starts a new fetch.
//
// Example:
//
//	user := NewAsyncComputed(
//	    func() string { return userID.Get() },
//	    func(ctx context.Context, id string) (*User, error) {
//	        return api.FetchUser(ctx, id)
//	    },
//	)
func NewAsyncComputed[K, T any](source func() K, fetch func(ctx context.Context, key K) (T, error)) *Computed[T] {
	return &Computed[T]{
		n: newNode(),
		start: func() func(ctx context.Context) (T, error) {
			key := source()
			return func(ctx context.Context) (T, error) {
				return fetch(ctx, key)
			}
		},
		stale: true,
	}
}

// recomputeAsync runs the tracked source and launches the fetch.
func (c *Computed[T]) recomputeAsync() {
	c.evaluating = true
	f, restoreFrame := pushFrame(c)

	completed := false
	defer func() {
		restoreFrame()
		c.evaluating = false
		if !completed {
			c.retry = true
		}
	}()

	run := c.start()
	completed = true

	c.deps = swapDeps(c, c.deps, f.deps)
	c.initialized = true
	c.stale = false
	c.retry = false

	c.launch(run)
}

// launch cancels the in-flight evaluation, if any, and starts run with a
// fresh context.
func (c *Computed[T]) launch(run func(ctx context.Context) (T, error)) {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.supersede()
	token := c.token
	c.cancel = cancel
	c.inflight = true
	c.mu.Unlock()

	sched := currentScheduler()
	obs := currentObserver()

	go func() {
		defer cleanupGoroutineContext()

		start := time.Now()
		value, err := safeFetch(ctx, run)
		if obs != nil {
			obs.ComputedEvaluated(c.n.id, start, time.Since(start), err)
		}
		sched.Dispatch(func() { c.resolve(token, value, err) })
	}()
}

// safeFetch converts a panic in run into an error so a failing producer
// cannot take the process down from a background goroutine.
func safeFetch[T any](ctx context.Context, run func(ctx context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return run(ctx)
}

// resolve stores the result of evaluation token if it is still the latest
// one and propagates the change.
func (c *Computed[T]) resolve(token uint64, value T, err error) {
	c.mu.Lock()
	if token != c.token || c.disposed {
		c.mu.Unlock()
		return
	}
	c.inflight = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	var changed bool
	if err != nil {
		changed = true
		c.err = err
	} else {
		changed = !c.has || c.err != nil || !c.equals(c.value, value)
		c.value = value
		c.has = true
		c.err = nil
	}
	c.mu.Unlock()

	if changed {
		c.n.bumpVersion()
		propagate(&c.n)
	}

	// Dependents have seen the rejection; the next read fetches again.
	if err != nil {
		c.stale = true
		c.retry = true
	}
}

// supersede cancels the in-flight evaluation and invalidates its token so a
// late result is dropped. c.mu must be held.
func (c *Computed[T]) supersede() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.token++
	c.inflight = false
}

package reactive

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Computed is a derived, memoized signal.
//
// Computeds are lazy: the producer runs on the first read and again only when
// a read finds that one of the signals it read last time has changed. Several
// writes between two reads cost a single evaluation. Dependencies are
// recorded on every evaluation, so they follow the branches the producer
// actually takes.
//
// Dependents of a Computed are only re-run when its value changes. A
// recomputation that yields an equal value stops propagation.
type Computed[T any] struct {
	n node

	// mu guards the cached result and the async token.
	mu    sync.RWMutex
	value T
	has   bool
	err   error

	// eval is the synchronous producer. nil for async computeds.
	eval func() (T, error)

	// start runs the tracked part of an async producer and returns the
	// untracked fetch to run on its own goroutine.
	start func() func(ctx context.Context) (T, error)

	deps        []dependency
	stale       bool
	retry       bool
	evaluating  bool
	initialized bool
	disposed    bool
	epoch       uint64

	equal func(T, T) bool

	// async bookkeeping
	token    uint64
	cancel   context.CancelFunc
	inflight bool
}

// NewComputed creates a Computed from a synchronous producer.
// The producer is not run until the first read.
//
// Example:
//
//	doubled := NewComputed(func() int { return count.Get() * 2 })
func NewComputed[T any](fn func() T) *Computed[T] {
	return &Computed[T]{
		n:     newNode(),
		eval:  func() (T, error) { return fn(), nil },
		stale: true,
	}
}

// NewComputedE creates a Computed from a producer that can fail. An error is
// reported to readers and leaves the last good value cached; the next read
// runs the producer again.
func NewComputedE[T any](fn func() (T, error)) *Computed[T] {
	return &Computed[T]{
		n:     newNode(),
		eval:  fn,
		stale: true,
	}
}

// Get returns the current value, recomputing first if a dependency changed,
// and records the Computed as a dependency of the evaluation in progress.
//
// A producer error panics with a *ProducerError; a panic in the producer
// propagates unchanged. Neither touches the cached value. Use Read to receive
// the error as a value. For an async Computed that has not resolved yet, Get
// returns the zero value; use Lookup to tell it apart from a real value.
func (c *Computed[T]) Get() T {
	value, _ := c.Lookup()
	return value
}

// Lookup is Get with an explicit Unset report: ok is false while an async
// Computed has never resolved.
func (c *Computed[T]) Lookup() (value T, ok bool) {
	drainDeferred()
	c.refresh()
	track(c)

	c.mu.RLock()
	value, ok, err := c.value, c.has, c.err
	c.mu.RUnlock()

	if err != nil {
		panic(&ProducerError{Node: c.n.id, Err: err})
	}
	return value, ok
}

// Read is Get with errors returned instead of panicking. On error the last
// good value is returned alongside it.
func (c *Computed[T]) Read() (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
			c.mu.RLock()
			value = c.value
			c.mu.RUnlock()
		}
	}()
	return c.Get(), nil
}

// Peek returns the current value without recording a dependency. It still
// recomputes if the value is stale.
func (c *Computed[T]) Peek() T {
	var value T
	Untracked(func() { value = c.Get() })
	return value
}

// ID returns the unique identifier of the Computed.
func (c *Computed[T]) ID() uint64 {
	return c.n.id
}

// GetAny implements AnySignal. It returns Unset while an async Computed has
// never resolved.
func (c *Computed[T]) GetAny() any {
	value, ok := c.Lookup()
	if !ok {
		return Unset
	}
	return value
}

// PeekAny implements AnySignal.
func (c *Computed[T]) PeekAny() any {
	var v any
	Untracked(func() { v = c.GetAny() })
	return v
}

// WithEquals sets the equality function used for propagation cut-off and
// returns c.
func (c *Computed[T]) WithEquals(fn func(T, T) bool) *Computed[T] {
	c.equal = fn
	return c
}

// Pending reports whether an async evaluation is in flight.
func (c *Computed[T]) Pending() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inflight
}

// Invalidate forces the next read to run the producer even if no dependency
// changed, and notifies dependents. For an async Computed this is how a
// failed fetch is retried.
func (c *Computed[T]) Invalidate() {
	if c.disposed {
		return
	}
	c.stale = true
	c.retry = true
	propagate(&c.n)
}

// Dispose unsubscribes the Computed from its dependencies and cancels any
// in-flight async evaluation. A disposed Computed keeps returning its last
// value.
func (c *Computed[T]) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.supersede()
	c.mu.Unlock()

	releaseDeps(c, c.deps)
	c.deps = nil
}

// String implements fmt.Stringer for debugging.
func (c *Computed[T]) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.has {
		return "Computed(UNSET)"
	}
	return fmt.Sprintf("Computed(%v)", c.value)
}

func (c *Computed[T]) base() *node { return &c.n }

// markStale implements subscriber.
func (c *Computed[T]) markStale(epoch uint64) {
	if c.disposed || c.epoch == epoch {
		return
	}
	c.epoch = epoch
	c.stale = true

	// An in-flight async evaluation is superseded as soon as an input moves.
	if c.start != nil {
		c.mu.Lock()
		if c.inflight {
			c.supersede()
			c.retry = true
		}
		c.mu.Unlock()
	}

	c.n.notify(epoch)
}

// refresh implements source. It panics with *CircularMutationError when the
// Computed is read from inside its own evaluation.
func (c *Computed[T]) refresh() {
	if c.evaluating {
		panic(&CircularMutationError{Node: c.n.id})
	}
	if !c.stale || c.disposed {
		return
	}

	if c.initialized && !c.retry {
		c.evaluating = true
		changed := func() bool {
			defer func() { c.evaluating = false }()
			return anyChanged(c.deps)
		}()
		if !changed {
			c.stale = false
			return
		}
	}

	if c.start != nil {
		c.recomputeAsync()
		return
	}
	c.recompute()
}

// recompute runs the synchronous producer inside a fresh tracking frame.
func (c *Computed[T]) recompute() {
	c.evaluating = true
	f, restoreFrame := pushFrame(c)

	obs := currentObserver()
	var start time.Time
	if obs != nil {
		start = time.Now()
	}

	completed := false
	defer func() {
		restoreFrame()
		c.evaluating = false
		if completed {
			return
		}
		// The producer panicked: keep the cache and the old dependencies and
		// make sure the next read tries again.
		c.retry = true
		if obs != nil {
			r := recover()
			obs.ComputedEvaluated(c.n.id, start, time.Since(start), panicError(r))
			panic(r)
		}
	}()

	value, err := c.eval()
	completed = true

	if obs != nil {
		obs.ComputedEvaluated(c.n.id, start, time.Since(start), err)
	}

	if err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		c.retry = true
		// Dependents compare versions: without a bump they would skip the
		// run and never see the error.
		c.n.bumpVersion()
		return
	}

	c.deps = swapDeps(c, c.deps, f.deps)
	c.initialized = true
	c.stale = false
	c.retry = false

	c.mu.Lock()
	changed := !c.has || c.err != nil || !c.equals(c.value, value)
	c.value = value
	c.has = true
	c.err = nil
	c.mu.Unlock()

	if changed {
		c.n.bumpVersion()
	}
}

func (c *Computed[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}

package reactive

import "time"

// Cleanup is returned by an effect body and runs before the next run and on
// disposal.
type Cleanup func()

// Dispose stops an effect: it runs the last cleanup and unsubscribes the
// effect from all of its dependencies.
type Dispose func()

// effect is a subscriber that re-runs a side-effecting body whenever one of
// the signals it read on its last run changes.
type effect struct {
	id uint64

	fn func() Cleanup

	// cleanup is the cleanup returned by the last successful run.
	cleanup Cleanup

	// deps are the sources read during the last successful run.
	deps []dependency

	// owner is the scope current when the effect was created.
	owner *Scope

	// scope owns effects created by the current run.
	scope *Scope

	pending     bool
	disposed    bool
	initialized bool
}

// NewEffect runs fn immediately and again whenever a signal it read changes.
//
// Each run records its own dependency set, so branches that stop reading a
// signal stop reacting to it. The Cleanup returned by a run is invoked right
// before the next run and on disposal, so cleanups and runs pair up exactly.
//
// A panic in fn propagates to whatever triggered the run: NewEffect itself,
// State.Set, or the Batch that flushed. The subscriptions from the previous
// successful run are kept.
//
// Example:
//
//	dispose := NewEffect(func() Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return func() { fmt.Println("cleanup") }
//	})
//	defer dispose()
func NewEffect(fn func() Cleanup) Dispose {
	e := &effect{
		id:    nextID(),
		fn:    fn,
		owner: CurrentScope(),
	}
	if e.owner != nil {
		e.owner.OnCleanup(e.dispose)
	}

	e.run()
	return e.dispose
}

// ID implements subscriber.
func (e *effect) ID() uint64 {
	return e.id
}

// markStale implements subscriber.
func (e *effect) markStale(uint64) {
	if e.disposed || e.pending {
		return
	}
	e.pending = true
	enqueue(e)
}

// shouldRun reports whether a dependency moved since the last run. A
// dependency that fails to refresh counts as moved so the body observes the
// failure itself.
func (e *effect) shouldRun() (run bool) {
	if !e.initialized {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			run = true
		}
	}()
	return anyChanged(e.deps)
}

// run executes the body inside a fresh tracking frame and scope.
func (e *effect) run() {
	if e.disposed {
		return
	}

	if e.scope != nil {
		e.scope.Dispose()
		e.scope = nil
	}
	if e.cleanup != nil {
		cleanup := e.cleanup
		e.cleanup = nil
		cleanup()
	}

	e.scope = NewScope(nil)

	f, restoreFrame := pushFrame(e)
	ctx := getTrackingContext()
	oldScope := ctx.scope
	ctx.scope = e.scope

	obs := currentObserver()
	var start time.Time
	if obs != nil {
		start = time.Now()
	}

	ok := false
	defer func() {
		ctx.scope = oldScope
		restoreFrame()
		if obs == nil {
			return
		}
		if ok {
			obs.EffectRan(e.id, start, time.Since(start), nil)
			return
		}
		r := recover()
		obs.EffectRan(e.id, start, time.Since(start), panicError(r))
		panic(r)
	}()

	cleanup := e.fn()
	ok = true

	e.deps = swapDeps(e, e.deps, f.deps)
	e.cleanup = cleanup
	e.initialized = true
}

// dispose runs the final cleanup and unsubscribes from every dependency.
func (e *effect) dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.pending = false

	if e.scope != nil {
		e.scope.Dispose()
		e.scope = nil
	}
	if e.cleanup != nil {
		cleanup := e.cleanup
		e.cleanup = nil
		cleanup()
	}

	releaseDeps(e, e.deps)
	e.deps = nil
}

// OnMount runs fn once, untracked, in an effect owned by the current scope.
func OnMount(fn func()) Dispose {
	return NewEffect(func() Cleanup {
		Untracked(fn)
		return nil
	})
}

// OnUpdate tracks deps on every run but only calls callback on runs after
// the first, i.e. when one of the signals read by deps changed.
//
// Example:
//
//	OnUpdate(
//	    func() { _ = count.Get() },
//	    func() { fmt.Println("count changed") },
//	)
func OnUpdate(deps func(), callback func()) Dispose {
	first := true
	return NewEffect(func() Cleanup {
		deps()
		if first {
			first = false
			return nil
		}
		Untracked(callback)
		return nil
	})
}

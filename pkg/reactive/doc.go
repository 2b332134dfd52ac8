// Package reactive provides the signal graph that backs every component.
//
// Dependencies are tracked automatically at runtime: reading a signal while a
// Computed producer or an effect body is running records it as a dependency
// of that evaluation, and the set is rebuilt on every evaluation.
//
// # Core Types
//
// State[T] is a mutable reactive value:
//
//	count := NewState(0)
//	value := count.Get()  // read (tracked)
//	count.Set(5)          // write (re-runs dependents)
//	count.Update(func(n int) int { return n + 1 })
//
// Computed[T] is a memoized derived value, recomputed lazily:
//
//	doubled := NewComputed(func() int { return count.Get() * 2 })
//
// NewEffect runs a side effect now and whenever its dependencies change:
//
//	dispose := NewEffect(func() Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return func() { /* runs before the next run and on dispose */ }
//	})
//
// # Batching
//
// Writes made inside Batch are propagated once, when the outermost batch
// returns:
//
//	Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})
//
// Effects always observe a settled graph: stale computeds are pulled before
// an effect decides whether to run, and every effect runs at most once per
// flush.
//
// # Threading
//
// The graph is single-threaded by contract. Async computeds fetch on their
// own goroutines and hand results back through the installed Scheduler. By
// default results wait until the graph's goroutine next reads or writes a
// signal, or calls Drain; use an EventLoop when signals are shared with
// other goroutines.
package reactive

package reactive

import "time"

// Batch groups State writes into a single propagation pass.
//
// Dependents are still marked stale eagerly, but effects are only re-run when
// the outermost Batch returns, each at most once and against the final values
// of every write made inside the batch.
//
// Batches can be nested. Only the outermost one flushes.
//
// Example:
//
//	Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// effects reading both names run once
func Batch(fn func()) {
	drainDeferred()

	ctx := getTrackingContext()
	ctx.batchDepth++

	completed := false
	defer func() {
		ctx.batchDepth--
		// A panicking batch leaves its queue for the next flush rather than
		// running effects while unwinding.
		if completed && ctx.batchDepth == 0 {
			flush(ctx)
		}
	}()

	fn()
	completed = true
}

// propagate starts a new epoch from n and flushes unless a batch or a flush
// is already in progress on this goroutine.
func propagate(n *node) {
	n.notify(nextEpoch())

	ctx := getTrackingContext()
	if ctx.batchDepth == 0 {
		flush(ctx)
	}
}

// enqueue schedules e for the next flush on the calling goroutine.
func enqueue(e *effect) {
	ctx := getTrackingContext()
	ctx.queue = append(ctx.queue, e)
}

// flush drains the effect queue. Effects queued while flushing, including by
// effects that write State, are drained by the same loop so that a write made
// outside a batch has fully settled when it returns.
//
// An effect only re-runs if one of its dependencies actually moved: stale
// computeds are pulled first, and a computed that recomputed to an equal value
// does not count as a change.
func flush(ctx *trackingContext) {
	if ctx.flushing || ctx.batchDepth > 0 {
		return
	}
	ctx.flushing = true
	defer func() { ctx.flushing = false }()

	obs := currentObserver()
	var start time.Time
	if obs != nil {
		start = time.Now()
	}

	budget := currentFlushBudget()
	runs := 0
	for len(ctx.queue) > 0 {
		e := ctx.queue[0]
		ctx.queue[0] = nil
		ctx.queue = ctx.queue[1:]

		if !e.pending || e.disposed {
			continue
		}
		e.pending = false

		if !e.shouldRun() {
			continue
		}

		runs++
		if budget > 0 && runs > budget {
			for _, q := range ctx.queue {
				if q != nil {
					q.pending = false
				}
			}
			ctx.queue = nil
			panic(&CircularMutationError{Node: e.id, Runs: budget})
		}
		e.run()
	}
	ctx.queue = nil

	if obs != nil && runs > 0 {
		obs.FlushCompleted(runs, start, time.Since(start))
	}
}

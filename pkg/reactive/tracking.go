package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for a goroutine.
//
// The graph is single-threaded by contract: a State is written, and Computed
// and Effect nodes are evaluated, from one goroutine at a time. The context is
// still kept per goroutine so that async producers resolving on their own
// goroutine never observe the tracking frame of an unrelated evaluation.
type trackingContext struct {
	// frame records the dependencies read by the node being evaluated.
	// nil means reads are untracked.
	frame *frame

	// scope owns effects and cleanups created during the current evaluation.
	scope *Scope

	// depth counts the evaluations in progress, tracked or not.
	depth int

	// draining is set while Drain runs queued scheduler work.
	draining bool

	// batchDepth tracks nested Batch calls. While > 0, queued effects are
	// not flushed.
	batchDepth int

	// flushing is set while the effect queue is being drained.
	flushing bool

	// queue holds effects marked stale and awaiting the next flush.
	queue []*effect
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// getGoroutineID returns a unique identifier for the current goroutine,
// parsed from the header of the runtime stack ("goroutine <id> ").
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current goroutine,
// creating it on first use.
func getTrackingContext() *trackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// cleanupGoroutineContext removes the tracking context for the current goroutine.
// Goroutines spawned by the package call it before exiting.
func cleanupGoroutineContext() {
	trackingContexts.Delete(getGoroutineID())
}

// frame is the dependency recorder for one evaluation of a Computed or Effect.
type frame struct {
	owner subscriber
	deps  []dependency
}

// record adds src to the frame, keeping the first-read order and skipping
// duplicates. The version is refreshed on repeated reads so the frame always
// holds the last version observed.
func (f *frame) record(src source) {
	id := src.base().id
	version := src.base().currentVersion()
	for i := range f.deps {
		if f.deps[i].src.base().id == id {
			f.deps[i].version = version
			return
		}
	}
	f.deps = append(f.deps, dependency{src: src, version: version})
}

// pushFrame installs a fresh frame for owner and returns a function that
// restores the previous one.
func pushFrame(owner subscriber) (*frame, func()) {
	ctx := getTrackingContext()
	f := &frame{owner: owner}
	old := ctx.frame
	ctx.frame = f
	ctx.depth++
	return f, func() {
		ctx.frame = old
		ctx.depth--
	}
}

// track records src as a dependency of the evaluation in progress, if any.
func track(src source) {
	ctx := getTrackingContext()
	if ctx.frame != nil {
		ctx.frame.record(src)
	}
}

// Untracked runs fn without recording signal reads as dependencies.
//
// Example:
//
//	NewEffect(func() Cleanup {
//	    label := title.Get()              // tracked
//	    Untracked(func() { log(count.Get()) }) // not tracked
//	    return nil
//	})
//
// For single reads, Peek is shorter.
func Untracked(fn func()) {
	ctx := getTrackingContext()
	old := ctx.frame
	ctx.frame = nil
	defer func() { ctx.frame = old }()
	fn()
}

// IsTracking reports whether the calling goroutine is inside an evaluation
// that records dependencies.
func IsTracking() bool {
	return getTrackingContext().frame != nil
}

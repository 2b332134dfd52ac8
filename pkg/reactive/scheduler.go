package reactive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Scheduler delivers work that originates off the graph's goroutine, such as
// async Computed results, back onto it.
type Scheduler interface {
	Dispatch(fn func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(fn func())

// Dispatch implements Scheduler.
func (f SchedulerFunc) Dispatch(fn func()) { f(fn) }

type schedulerHolder struct {
	s Scheduler
}

var scheduler atomic.Pointer[schedulerHolder]

// SetScheduler installs s and returns the previous scheduler. nil restores
// the default scheduler.
//
// The default scheduler queues dispatched work until the graph's goroutine
// next calls Computed.Get, State.Set, State.Update or Batch, or calls Drain.
// Applications that own a long-lived goroutine for the graph should run an
// EventLoop and install it here instead.
func SetScheduler(s Scheduler) Scheduler {
	var old *schedulerHolder
	if s == nil {
		old = scheduler.Swap(nil)
	} else {
		old = scheduler.Swap(&schedulerHolder{s: s})
	}
	if old == nil {
		return deferred
	}
	return old.s
}

func currentScheduler() Scheduler {
	if h := scheduler.Load(); h != nil {
		return h.s
	}
	return deferred
}

// deferredScheduler holds dispatched work for the graph's goroutine.
type deferredScheduler struct {
	mu    sync.Mutex
	queue []func()

	// pending mirrors len(queue) so reads can skip the lock.
	pending atomic.Int64
}

var deferred = &deferredScheduler{}

func (d *deferredScheduler) Dispatch(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.pending.Add(1)
	d.mu.Unlock()
}

func (d *deferredScheduler) pop() func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return nil
	}
	fn := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]
	d.pending.Add(-1)
	return fn
}

// Drain runs the work queued by the default scheduler on the calling
// goroutine and returns the number of items run. It does nothing while the
// goroutine is evaluating a node, flushing effects or inside a Batch; the
// work then waits for the next call.
//
// A panic in queued work has no caller to propagate to, so it is logged.
func Drain() int {
	ctx := getTrackingContext()
	if ctx.depth > 0 || ctx.flushing || ctx.batchDepth > 0 || ctx.draining {
		return 0
	}
	ctx.draining = true
	defer func() { ctx.draining = false }()

	n := 0
	for fn := deferred.pop(); fn != nil; fn = deferred.pop() {
		runDeferred(fn)
		n++
	}
	return n
}

// drainDeferred is Drain without the tracking-context lookup when nothing is
// queued.
func drainDeferred() {
	if deferred.pending.Load() > 0 {
		Drain()
	}
}

func runDeferred(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("reactive: dispatched update panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

// ErrLoopClosed is returned by Do after the loop stopped running.
var ErrLoopClosed = errors.New("reactive: event loop closed")

// EventLoop serializes all graph work onto the goroutine that calls Run.
//
// Example:
//
//	loop := reactive.NewEventLoop(64, logger)
//	reactive.SetScheduler(loop)
//	go loop.Run(ctx)
//
//	loop.Do(func() { count.Set(count.Peek() + 1) })
type EventLoop struct {
	queue  chan func()
	done   chan struct{}
	logger *slog.Logger

	// OnPanic is called with a recovered panic from work submitted through
	// Dispatch. If nil, the panic is logged.
	OnPanic func(v any)
}

// NewEventLoop creates a loop with a queue of the given capacity.
// If logger is nil, slog.Default() is used.
func NewEventLoop(buffer int, logger *slog.Logger) *EventLoop {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventLoop{
		queue:  make(chan func(), buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Dispatch queues fn to run on the loop goroutine. It blocks while the queue
// is full and drops fn once the loop has stopped.
func (l *EventLoop) Dispatch(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Do runs fn on the loop goroutine and waits for it. A panic in fn is
// re-raised on the caller's goroutine. Do must not be called from the loop
// goroutine itself.
func (l *EventLoop) Do(fn func()) error {
	result := make(chan any, 1)
	wrapped := func() {
		defer func() { result <- recover() }()
		fn()
	}

	select {
	case l.queue <- wrapped:
	case <-l.done:
		return ErrLoopClosed
	}

	select {
	case r := <-result:
		if r != nil {
			panic(r)
		}
		return nil
	case <-l.done:
		select {
		case r := <-result:
			if r != nil {
				panic(r)
			}
			return nil
		default:
			return ErrLoopClosed
		}
	}
}

// Run processes queued work until ctx is done.
func (l *EventLoop) Run(ctx context.Context) error {
	defer close(l.done)
	defer cleanupGoroutineContext()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			l.run(fn)
		}
	}
}

// Done is closed when Run returns.
func (l *EventLoop) Done() <-chan struct{} {
	return l.done
}

func (l *EventLoop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if l.OnPanic != nil {
				l.OnPanic(r)
				return
			}
			l.logger.Error("reactive: event loop task panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

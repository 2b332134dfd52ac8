package reactive

import (
	"sync/atomic"
	"time"
)

// Observer receives timing information from the graph. It is called
// synchronously on the evaluating goroutine and must not read or write
// signals.
type Observer interface {
	// ComputedEvaluated is called after a Computed producer ran. err is the
	// producer error or recovered panic, nil on success.
	ComputedEvaluated(id uint64, start time.Time, d time.Duration, err error)

	// EffectRan is called after an effect body ran.
	EffectRan(id uint64, start time.Time, d time.Duration, err error)

	// FlushCompleted is called after a flush that ran at least one effect.
	FlushCompleted(runs int, start time.Time, d time.Duration)
}

type observerHolder struct {
	obs Observer
}

var observer atomic.Pointer[observerHolder]

// SetObserver installs obs and returns the previously installed observer.
// Passing nil removes the observer.
func SetObserver(obs Observer) Observer {
	var old *observerHolder
	if obs == nil {
		old = observer.Swap(nil)
	} else {
		old = observer.Swap(&observerHolder{obs: obs})
	}
	if old == nil {
		return nil
	}
	return old.obs
}

func currentObserver() Observer {
	h := observer.Load()
	if h == nil {
		return nil
	}
	return h.obs
}

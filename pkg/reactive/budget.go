package reactive

import "sync/atomic"

// DefaultMaxEffectRunsPerFlush bounds the effect runs of a single flush.
// Reaching it means effects keep re-triggering each other.
const DefaultMaxEffectRunsPerFlush = 10000

var flushBudget atomic.Int64

func init() {
	flushBudget.Store(DefaultMaxEffectRunsPerFlush)
}

// SetFlushBudget sets the maximum number of effect runs in one flush and
// returns the previous value. Zero or a negative value disables the limit.
//
// When the budget is exceeded the flush panics with a *CircularMutationError
// whose Runs field is set, and the remaining queue is dropped.
func SetFlushBudget(maxRuns int) int {
	return int(flushBudget.Swap(int64(maxRuns)))
}

func currentFlushBudget() int {
	return int(flushBudget.Load())
}

package reactive

import (
	"errors"
	"fmt"
)

// Error codes shared with the internal error registry.
const (
	CodeCircularMutation = "UIE101"
	CodeProducer         = "UIE102"
	CodeTypeMismatch     = "UIE103"
	CodeFlushBudget      = "UIE104"
)

// ErrTypeMismatch is returned by SetAny when the value cannot be stored in
// the signal's value type.
var ErrTypeMismatch = errors.New("reactive: value type does not match signal type")

// CircularMutationError reports a computed that read itself, directly or
// through other computeds, while it was being evaluated. It also reports an
// effect flush that exceeded its run budget, which only happens when effects
// keep re-triggering each other.
type CircularMutationError struct {
	// Node is the ID of the node whose evaluation was re-entered.
	Node uint64

	// Runs is the number of effect runs when a flush budget was exceeded.
	// Zero for a re-entered computed.
	Runs int
}

// Error implements the error interface.
func (e *CircularMutationError) Error() string {
	if e.Runs > 0 {
		return fmt.Sprintf("reactive: circular mutation: flush exceeded %d effect runs", e.Runs)
	}
	return fmt.Sprintf("reactive: circular dependency detected while evaluating node %d", e.Node)
}

// Code returns the registry code for this error.
func (e *CircularMutationError) Code() string {
	if e.Runs > 0 {
		return CodeFlushBudget
	}
	return CodeCircularMutation
}

// ProducerError wraps an error returned by a Computed producer.
type ProducerError struct {
	Node uint64
	Err  error
}

// Error implements the error interface.
func (e *ProducerError) Error() string {
	return fmt.Sprintf("reactive: producer of node %d failed: %v", e.Node, e.Err)
}

// Unwrap returns the producer's error for errors.Is/As support.
func (e *ProducerError) Unwrap() error {
	return e.Err
}

// Code returns the registry code for this error.
func (e *ProducerError) Code() string {
	return CodeProducer
}

// panicError converts a recovered panic value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}

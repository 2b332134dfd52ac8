package reactive

import (
	"fmt"
	"reflect"
	"sync"
)

// unset is the type of the Unset sentinel.
type unset struct{}

// String implements fmt.Stringer.
func (unset) String() string { return "UNSET" }

// Unset marks a slot that has no value yet. It is distinct from every real
// value, including nil and zero values, and is what GetAny returns for an
// async Computed that has not resolved. Typed callers use Lookup instead.
var Unset any = unset{}

// IsUnset reports whether v is the Unset sentinel.
func IsUnset(v any) bool {
	_, ok := v.(unset)
	return ok
}

// Signal is the read capability shared by State and Computed.
// Get subscribes the evaluation in progress; Peek never does.
type Signal[T any] interface {
	AnySignal
	Get() T
	Peek() T
}

// AnySignal is the type-erased view of a signal, used by heterogeneous
// collections such as a component's property bag.
type AnySignal interface {
	ID() uint64
	GetAny() any
	PeekAny() any
}

// AnyWritable is a type-erased signal that accepts writes.
type AnyWritable interface {
	AnySignal
	SetAny(v any) error
}

// State is a mutable reactive value. It is the only kind of node external
// code writes to.
//
// Reading a State during an evaluation (Computed producer or effect body)
// records it as a dependency; writing a different value re-runs the
// dependents, immediately outside a Batch and once at the end of one.
type State[T any] struct {
	n node

	mu    sync.RWMutex
	value T

	// equal decides whether a write changes the value. nil uses defaultEquals.
	equal func(T, T) bool
}

// NewState creates a State holding initial.
func NewState[T any](initial T) *State[T] {
	return &State[T]{
		n:     newNode(),
		value: initial,
	}
}

// Get returns the current value and records the State as a dependency of
// the evaluation in progress, if any.
func (s *State[T]) Get() T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	track(s)
	return value
}

// Peek returns the current value without recording a dependency.
func (s *State[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores value and notifies dependents if it differs from the current
// value. Writing an equal value is a no-op.
func (s *State[T]) Set(value T) {
	drainDeferred()

	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.changed()
	}
}

// Update replaces the value with fn applied to the current value. The read
// is untracked.
func (s *State[T]) Update(fn func(T) T) {
	drainDeferred()

	s.mu.Lock()
	old := s.value
	next := fn(old)
	changed := !s.equals(old, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.changed()
	}
}

// WithEquals sets the equality function used to detect changes and returns s.
func (s *State[T]) WithEquals(fn func(T, T) bool) *State[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier of the State.
func (s *State[T]) ID() uint64 {
	return s.n.id
}

// GetAny implements AnySignal.
func (s *State[T]) GetAny() any {
	return s.Get()
}

// PeekAny implements AnySignal.
func (s *State[T]) PeekAny() any {
	return s.Peek()
}

// SetAny implements AnyWritable. A nil value stores the zero value of T when
// T is an interface, pointer, slice, map, func or chan type.
func (s *State[T]) SetAny(v any) error {
	if v == nil {
		var zero T
		if !nilable(reflect.TypeOf((*T)(nil)).Elem()) {
			return fmt.Errorf("%w: nil for %T", ErrTypeMismatch, zero)
		}
		s.Set(zero)
		return nil
	}
	value, ok := v.(T)
	if !ok {
		var zero T
		return fmt.Errorf("%w: %T for %T", ErrTypeMismatch, v, zero)
	}
	s.Set(value)
	return nil
}

// String implements fmt.Stringer for debugging.
func (s *State[T]) String() string {
	return fmt.Sprintf("State(%v)", s.Peek())
}

func (s *State[T]) base() *node { return &s.n }

func (s *State[T]) refresh() {}

func (s *State[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// changed bumps the version and propagates a new epoch.
func (s *State[T]) changed() {
	s.n.bumpVersion()
	propagate(&s.n)
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

package component

import (
	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/reactive"
)

// Source is anything an effect can bind to: a host property, a signal or a
// function of the target element.
type Source interface {
	signal(h *Host, target *dom.Element) reactive.AnySignal
}

// Reactive is a typed Source. It is one of Prop, From or Func.
type Reactive[T any] interface {
	Source

	// read returns the current value, tracked. ok is false when the value is
	// Unset or of another type.
	read(h *Host, target *dom.Element) (T, bool)
}

type propSource[T any] struct {
	name string
}

// Prop reads the host property name.
func Prop[T any](name string) Reactive[T] {
	return propSource[T]{name: name}
}

func (p propSource[T]) read(h *Host, _ *dom.Element) (T, bool) {
	return Read[T](h, p.name)
}

func (p propSource[T]) signal(h *Host, _ *dom.Element) reactive.AnySignal {
	return h.Signal(p.name)
}

type signalSource[T any] struct {
	s reactive.Signal[T]
}

// From reads s.
func From[T any](s reactive.Signal[T]) Reactive[T] {
	return signalSource[T]{s: s}
}

func (p signalSource[T]) read(_ *Host, _ *dom.Element) (T, bool) {
	if l, ok := p.s.(interface{ Lookup() (T, bool) }); ok {
		return l.Lookup()
	}
	return p.s.Get(), true
}

func (p signalSource[T]) signal(_ *Host, _ *dom.Element) reactive.AnySignal {
	return p.s
}

type funcSource[T any] struct {
	fn func(target *dom.Element) T
}

// Func derives the value from fn, called with the element the effect is
// applied to. Signals read by fn are tracked.
func Func[T any](fn func(target *dom.Element) T) Reactive[T] {
	return funcSource[T]{fn: fn}
}

func (p funcSource[T]) read(_ *Host, target *dom.Element) (T, bool) {
	return p.fn(target), true
}

func (p funcSource[T]) signal(_ *Host, target *dom.Element) reactive.AnySignal {
	return reactive.NewComputed(func() T { return p.fn(target) })
}

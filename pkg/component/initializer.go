package component

import (
	"github.com/vango-dev/uielement/pkg/reactive"
)

// Initializer says how a property of the property bag gets its signal.
// It is one of Value, Attribute, Producer, Lazy or Setup; the producers in
// this package (FromDOM, FromEvents, FromSelector, FromContext) are
// Producers too.
type Initializer interface {
	kind() initKind
}

type initKind uint8

const (
	kindValue initKind = iota + 1
	kindAttribute
	kindProducer
	kindSetup
)

// String returns the string representation of the initKind.
func (k initKind) String() string {
	switch k {
	case kindValue:
		return "value"
	case kindAttribute:
		return "attribute"
	case kindProducer:
		return "producer"
	case kindSetup:
		return "setup"
	default:
		return "unknown"
	}
}

type valueInit struct {
	initial  any
	newState func() reactive.AnySignal
}

func (valueInit) kind() initKind { return kindValue }

// Value initializes a property with a State holding v.
func Value[T any](v T) Initializer {
	return valueInit{
		initial:  v,
		newState: func() reactive.AnySignal { return reactive.NewState(v) },
	}
}

type attributeInit struct {
	parse    func(h *Host, value, old *string) any
	newState func(v any) reactive.AnySignal
}

func (attributeInit) kind() initKind { return kindAttribute }

// Attribute initializes a property from the attribute of the same name,
// lower-cased. The State is seeded by parsing the current attribute and
// updated whenever the attribute changes.
func Attribute[T any](parse Parser[T]) Initializer {
	return attributeInit{
		parse: func(h *Host, value, old *string) any {
			return parse(h, value, old)
		},
		newState: func(v any) reactive.AnySignal {
			t, _ := v.(T)
			return reactive.NewState(t)
		},
	}
}

type producerInit struct {
	produce func(h *Host) reactive.AnySignal
}

func (producerInit) kind() initKind { return kindProducer }

// Producer adopts the signal returned by fn as the property.
func Producer[T any](fn func(host *Host) reactive.Signal[T]) Initializer {
	return producerInit{
		produce: func(h *Host) reactive.AnySignal { return fn(h) },
	}
}

// Lazy initializes a property with a State holding the value fn returns when
// the host is first connected.
func Lazy[T any](fn func(host *Host) T) Initializer {
	return producerInit{
		produce: func(h *Host) reactive.AnySignal { return reactive.NewState(fn(h)) },
	}
}

type setupInit struct {
	run func(h *Host)
}

func (setupInit) kind() initKind { return kindSetup }

// Setup runs fn once, when the host is first connected. No property signal
// is created for its name.
func Setup(fn func(host *Host)) Initializer {
	return setupInit{run: fn}
}

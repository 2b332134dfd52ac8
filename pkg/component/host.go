package component

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/reactive"
)

type reset struct{}

// String implements fmt.Stringer.
func (reset) String() string { return "RESET" }

// Reset, passed to Host.Set, re-derives a property from its initializer:
// an Attribute property re-parses the current attribute and a Value property
// returns to its initial value. It is ignored for other properties.
var Reset any = reset{}

// Host is the custom element instance of a component.
//
// Each property of the bag is a slot holding the property's signal. Slots are
// themselves reactive, so effects that read a property follow SetSignal
// replacements. Signals are created on first connection and survive
// disconnection; effects are created on every connection and disposed on
// every disconnection.
type Host struct {
	def *Definition
	el  *dom.Element

	slots     map[string]*reactive.State[reactive.AnySignal]
	realizing map[string]bool
	realized  bool

	scope    *reactive.Scope
	cleanups []reactive.Cleanup

	// watchers are the DOM subscriptions of producer properties. Each one
	// is started on every connection and stopped on disconnection.
	watchers []func() (stop func())
}

func sameSignal(a, b reactive.AnySignal) bool { return a == b }

func newSlot() *reactive.State[reactive.AnySignal] {
	return reactive.NewState[reactive.AnySignal](nil).WithEquals(sameSignal)
}

func newHost(def *Definition, el *dom.Element) *Host {
	h := &Host{
		def:       def,
		el:        el,
		slots:     make(map[string]*reactive.State[reactive.AnySignal], len(def.props)),
		realizing: make(map[string]bool),
	}
	for name, init := range def.props {
		if init.kind() != kindSetup {
			h.slots[name] = newSlot()
		}
	}
	return h
}

// Element returns the host element.
func (h *Host) Element() *dom.Element {
	return h.el
}

// Tag returns the component's tag name.
func (h *Host) Tag() string {
	if h == nil || h.def == nil {
		return ""
	}
	return h.def.tag
}

// Definition returns the component definition.
func (h *Host) Definition() *Definition {
	return h.def
}

// IsConnected reports whether the host's effects are active.
func (h *Host) IsConnected() bool {
	return h.scope != nil
}

// Props returns the names in the property bag in sorted order.
func (h *Host) Props() []string {
	names := make([]string, 0, len(h.slots))
	for name := range h.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Host) logger() *slog.Logger {
	if h == nil || h.def == nil || h.def.registry == nil {
		return slog.Default()
	}
	return h.def.registry.Logger()
}

// Signal returns the signal behind property name, or nil if there is no such
// property. Inside an evaluation the property slot is tracked, so a later
// SetSignal re-runs the reader.
func (h *Host) Signal(name string) reactive.AnySignal {
	slot, ok := h.slots[name]
	if !ok {
		return nil
	}
	if slot.Peek() == nil {
		h.realize(name)
	}
	return slot.Get()
}

// SetSignal replaces the signal behind property name. Undeclared names add
// a property. s must implement reactive.AnySignal.
func (h *Host) SetSignal(name string, s any) error {
	sig, ok := s.(reactive.AnySignal)
	if !ok || sig == nil {
		return &InvalidSignalError{Name: name, Value: s}
	}
	slot, ok := h.slots[name]
	if !ok {
		if err := validateProperty(h.def.tag, name, Value(0)); err != nil {
			return err
		}
		slot = newSlot()
		h.slots[name] = slot
	}
	slot.Set(sig)
	return nil
}

// lookup returns the current value of property name. ok is false for
// unknown properties and Unset values.
func (h *Host) lookup(name string) (any, bool) {
	sig := h.Signal(name)
	if sig == nil {
		return nil, false
	}
	v := sig.GetAny()
	if reactive.IsUnset(v) {
		return nil, false
	}
	return v, true
}

// Get returns the value of property name, tracking it inside an evaluation.
// It returns nil for unknown properties and reactive.Unset for async values
// that have not resolved.
func (h *Host) Get(name string) any {
	sig := h.Signal(name)
	if sig == nil {
		return nil
	}
	return sig.GetAny()
}

// Set writes v to property name. Reset re-derives the property.
func (h *Host) Set(name string, v any) error {
	if _, ok := h.slots[name]; !ok {
		return fmt.Errorf("%w: %q on <%s>", ErrUnknownProperty, name, h.def.tag)
	}

	var sig reactive.AnySignal
	reactive.Untracked(func() { sig = h.Signal(name) })
	w, ok := sig.(reactive.AnyWritable)
	if !ok {
		return fmt.Errorf("%w: %q on <%s>", ErrReadOnlyProperty, name, h.def.tag)
	}

	if _, ok := v.(reset); ok {
		switch init := h.def.props[name].(type) {
		case attributeInit:
			value := h.attribute(name)
			var parsed any
			reactive.Untracked(func() { parsed = init.parse(h, value, nil) })
			return w.SetAny(parsed)
		case valueInit:
			return w.SetAny(init.initial)
		default:
			return nil
		}
	}
	return w.SetAny(v)
}

// Read returns property name as a T. ok is false if the property is unknown,
// Unset or holds another type.
func Read[T any](h *Host, name string) (T, bool) {
	var zero T
	v, ok := h.lookup(name)
	if !ok {
		return zero, false
	}
	if v == nil {
		return zero, true
	}
	t, ok := v.(T)
	return t, ok
}

// Property implements dom.PropertyHost so element properties reach the bag.
func (h *Host) Property(name string) (any, bool) {
	if _, ok := h.slots[name]; !ok {
		return nil, false
	}
	return h.Get(name), true
}

// SetProperty implements dom.PropertyHost.
func (h *Host) SetProperty(name string, v any) (bool, error) {
	if _, ok := h.slots[name]; !ok {
		return false, nil
	}
	return true, h.Set(name, v)
}

func (h *Host) attribute(name string) *string {
	v, ok := h.el.GetAttribute(strings.ToLower(name))
	if !ok {
		return nil
	}
	return &v
}

// realize creates the signal for property name from its initializer. A
// property that reads itself while being realized stays empty.
func (h *Host) realize(name string) {
	if h.realizing[name] {
		return
	}
	slot := h.slots[name]
	init, declared := h.def.props[name]
	if !declared || slot == nil {
		return
	}
	h.realizing[name] = true
	defer delete(h.realizing, name)

	var sig reactive.AnySignal
	reactive.Untracked(func() {
		switch init := init.(type) {
		case valueInit:
			sig = init.newState()
		case attributeInit:
			sig = init.newState(init.parse(h, h.attribute(name), nil))
		case producerInit:
			sig = init.produce(h)
		}
	})
	if sig == nil {
		sig = reactive.NewState[any](nil)
	}
	if slot.Peek() == nil {
		slot.Set(sig)
	}
}

// realizeAll creates every missing property signal and then runs the Setup
// initializers, once per host.
func (h *Host) realizeAll() {
	if h.realized {
		return
	}
	h.realized = true

	for _, name := range h.def.names {
		if slot, ok := h.slots[name]; ok && slot.Peek() == nil {
			h.realize(name)
		}
	}
	for _, name := range h.def.names {
		if init, ok := h.def.props[name].(setupInit); ok {
			reactive.Untracked(func() { init.run(h) })
		}
	}
}

// watch registers a DOM subscription that feeds a property. start runs now
// if the host is connected and again on every connection; the stop it
// returns runs on disconnection.
func (h *Host) watch(start func() (stop func())) {
	h.watchers = append(h.watchers, start)
	if h.scope != nil {
		h.cleanups = append(h.cleanups, reactive.Cleanup(start()))
	}
}

// ConnectedCallback implements dom.Connector: it realizes the property bag
// on first connection, then runs the setup function and applies its effects
// in a fresh scope.
func (h *Host) ConnectedCallback() error {
	if h.scope != nil {
		return nil
	}
	h.realizeAll()

	h.scope = reactive.NewScope(nil)
	h.logger().Debug("component connected", "tag", h.def.tag, "scope", h.scope.ID())

	var errs []error
	h.scope.Run(func() {
		reactive.Untracked(func() {
			for _, start := range h.watchers {
				h.cleanups = append(h.cleanups, reactive.Cleanup(start()))
			}

			effects := h.def.setup(h)
			for i, fx := range effects {
				if fx == nil {
					errs = append(errs, &InvalidSetupFunctionError{
						Tag:    h.def.tag,
						Reason: fmt.Sprintf("effect %d is nil", i),
					})
					continue
				}
				cleanup, err := fx(h, h.el)
				if cleanup != nil {
					h.cleanups = append(h.cleanups, cleanup)
				}
				if err != nil {
					errs = append(errs, err)
				}
			}
		})
	})
	return errors.Join(errs...)
}

// DisconnectedCallback implements dom.Disconnector: it runs the effect
// cleanups in reverse order and disposes the connection scope. The property
// bag is kept.
func (h *Host) DisconnectedCallback() error {
	if h.scope == nil {
		return nil
	}
	cleanups := h.cleanups
	h.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	h.scope.Dispose()
	h.scope = nil

	h.logger().Debug("component disconnected", "tag", h.def.tag)
	return nil
}

// AttributeChangedCallback implements dom.AttributeChanger: it re-parses the
// attribute into its property.
func (h *Host) AttributeChangedCallback(attr string, oldValue, newValue *string) error {
	name, ok := h.def.attrs[attr]
	if !ok {
		return nil
	}
	slot := h.slots[name]
	if slot.Peek() == nil {
		h.realize(name)
		return nil
	}
	w, ok := slot.Peek().(reactive.AnyWritable)
	if !ok {
		return nil
	}
	init := h.def.props[name].(attributeInit)

	var parsed any
	reactive.Untracked(func() { parsed = init.parse(h, newValue, oldValue) })
	return w.SetAny(parsed)
}

package component

import (
	"fmt"

	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/reactive"
)

// HostOf returns the component instance of el, upgrading el first if its
// tag is defined but it was not upgraded yet.
func HostOf(el *dom.Element) (*Host, error) {
	tag := el.TagName()
	if !dom.ValidName(tag) {
		return nil, &InvalidCustomElementError{Tag: tag, Reason: "not a custom element"}
	}
	reg := el.Document().Registry()
	if reg == nil || !reg.Defined(tag) {
		return nil, &InvalidCustomElementError{Tag: tag, Reason: "custom element is not defined"}
	}
	if err := reg.Upgrade(el); err != nil {
		return nil, err
	}
	h, ok := el.Instance().(*Host)
	if !ok {
		return nil, &InvalidCustomElementError{Tag: tag, Reason: "not a component"}
	}
	return h, nil
}

// Pass hands signals to the component at the target, replacing the signals
// behind the named properties. The child then reads and writes the
// parent's signals directly. The previous signals are restored on cleanup.
//
// Example:
//
//	component.First("child-counter", component.Pass(map[string]component.Source{
//	    "count": component.Prop[int]("count"),
//	}))
func Pass(props map[string]Source) Effect {
	return func(h *Host, target *dom.Element) (reactive.Cleanup, error) {
		child, err := HostOf(target)
		if err != nil {
			return nil, err
		}

		previous := make(map[string]reactive.AnySignal, len(props))
		restore := func() {
			for name, sig := range previous {
				child.slots[name].Set(sig)
			}
		}

		for name, src := range props {
			slot, ok := child.slots[name]
			if !ok {
				restore()
				return nil, fmt.Errorf("%w: %q on <%s>", ErrUnknownProperty, name, child.Tag())
			}
			if _, saved := previous[name]; !saved {
				previous[name] = slot.Peek()
			}
			if err := child.SetSignal(name, src.signal(h, target)); err != nil {
				restore()
				return nil, err
			}
		}
		return restore, nil
	}
}

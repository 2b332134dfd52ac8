package component

import (
	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/reactive"
)

// Extractor reads an initial value from the first descendant matching
// Selector, or from the host itself when Selector is empty.
type Extractor[T any] struct {
	Selector string
	Read     func(el *dom.Element) (T, bool)
}

// FromDOM initializes a property from server-rendered content. Extractors
// are tried in order; fallback is used when none yields a value.
//
// Example:
//
//	"count": component.FromDOM(0, component.Extractor[int]{
//	    Selector: ".count",
//	    Read: func(el *dom.Element) (int, bool) {
//	        n, err := strconv.Atoi(el.TextContent())
//	        return n, err == nil
//	    },
//	}),
func FromDOM[T any](fallback T, extractors ...Extractor[T]) Initializer {
	return producerInit{
		produce: func(h *Host) reactive.AnySignal {
			for _, ex := range extractors {
				el := h.el
				if ex.Selector != "" {
					found, err := h.el.QuerySelector(ex.Selector)
					if err != nil {
						h.logger().Warn("invalid selector", "tag", h.Tag(), "selector", ex.Selector, "error", err)
						continue
					}
					el = found
				}
				if el == nil || ex.Read == nil {
					continue
				}
				if v, ok := ex.Read(el); ok {
					return reactive.NewState(v)
				}
			}
			return reactive.NewState(fallback)
		},
	}
}

// TextOf is an Extractor reading the text content of the matched element.
func TextOf(selector string) Extractor[string] {
	return Extractor[string]{
		Selector: selector,
		Read:     func(el *dom.Element) (string, bool) { return el.TextContent(), true },
	}
}

// EventTransform computes the next value of a FromEvents property from an
// event, the element matching the selector and the previous value.
type EventTransform[T any] func(ev *dom.Event, source *dom.Element, old T) T

// FromEvents initializes a property that changes in response to events
// bubbling to the host from descendants matching selector. An empty
// selector matches events dispatched anywhere within the host.
//
// The listeners are only installed while the host is connected; the value
// is kept across disconnection.
func FromEvents[T any](initial T, selector string, handlers map[string]EventTransform[T]) Initializer {
	return producerInit{
		produce: func(h *Host) reactive.AnySignal {
			s := reactive.NewState(initial)
			h.watch(func() func() {
				removers := make([]func(), 0, len(handlers))
				for typ, transform := range handlers {
					removers = append(removers, h.el.AddEventListener(typ, func(ev *dom.Event) {
						source := h.el
						if selector != "" {
							match, err := ev.Target().Closest(selector)
							if err != nil || match == nil || !h.el.Contains(match) {
								return
							}
							source = match
						}
						s.Set(transform(ev, source, s.Peek()))
					}))
				}
				return func() {
					for _, remove := range removers {
						remove()
					}
				}
			})
			return s
		},
	}
}

func sameElements(a, b []*dom.Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FromSelector initializes a property holding the descendants of the host
// matching selector, kept current as the subtree changes. Changes made while
// the host is disconnected are picked up when it connects again.
func FromSelector(selector string) Initializer {
	return producerInit{
		produce: func(h *Host) reactive.AnySignal {
			query := func() []*dom.Element {
				els, err := h.el.QuerySelectorAll(selector)
				if err != nil {
					h.logger().Warn("invalid selector", "tag", h.Tag(), "selector", selector, "error", err)
					return nil
				}
				return els
			}

			s := reactive.NewState(query()).WithEquals(sameElements)
			update := func() {
				reactive.Untracked(func() { s.Set(query()) })
			}
			h.watch(func() func() {
				update()
				return dom.Observe(h.el, func(dom.MutationRecord) { update() })
			})
			return s
		},
	}
}

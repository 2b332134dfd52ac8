package component

import (
	"fmt"
	"strings"

	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/reactive"
)

// Effect is applied to a target element when its host connects. The returned
// cleanup runs when the host disconnects.
type Effect func(host *Host, target *dom.Element) (reactive.Cleanup, error)

// binding writes a reactive value to one aspect of an element.
type binding[T any] struct {
	op string

	// read returns the DOM value before the first update; false when absent.
	read func(el *dom.Element) (T, bool)

	update func(el *dom.Element, v T) error

	// remove restores an absent value. nil means the fallback is written back.
	remove func(el *dom.Element) error
}

// bind keeps one aspect of the target in sync with r. While r is Unset the
// DOM value found at connection time is restored.
//
// An error on the first update is returned; later errors panic out of the
// write that triggered them.
func bind[T any](r Reactive[T], b binding[T]) Effect {
	return func(h *Host, target *dom.Element) (reactive.Cleanup, error) {
		fallback, present := b.read(target)

		first := true
		var firstErr error
		dispose := reactive.NewEffect(func() reactive.Cleanup {
			v, ok := r.read(h, target)

			var err error
			switch {
			case ok:
				err = b.update(target, v)
			case present || b.remove == nil:
				err = b.update(target, fallback)
			default:
				err = b.remove(target)
			}

			if err != nil {
				err = fmt.Errorf("%s on %s: %w", b.op, target, err)
				if !first {
					panic(err)
				}
				firstErr = err
			}
			first = false
			return nil
		})

		if firstErr != nil {
			dispose()
			return nil, firstErr
		}
		return reactive.Cleanup(dispose), nil
	}
}

// SetText keeps the target's text content in sync.
func SetText(r Reactive[string]) Effect {
	return bind(r, binding[string]{
		op:   "set text",
		read: func(el *dom.Element) (string, bool) { return el.TextContent(), true },
		update: func(el *dom.Element, v string) error {
			if el.TextContent() == v {
				return nil
			}
			return el.SetTextContent(v)
		},
	})
}

// SetProperty keeps an element property in sync.
func SetProperty[T any](key string, r Reactive[T]) Effect {
	return bind(r, binding[T]{
		op: "set property " + key,
		read: func(el *dom.Element) (T, bool) {
			v, _ := el.Property(key)
			t, ok := v.(T)
			return t, ok
		},
		update: func(el *dom.Element, v T) error { return el.SetProperty(key, v) },
	})
}

// SetAttribute keeps an attribute in sync. Event handler attributes and
// script URLs are refused with ErrUnsafeAttribute.
func SetAttribute(name string, r Reactive[string]) Effect {
	return bind(r, binding[string]{
		op:   "set attribute " + name,
		read: func(el *dom.Element) (string, bool) { return el.GetAttribute(name) },
		update: func(el *dom.Element, v string) error {
			if err := checkAttribute(name, v); err != nil {
				return err
			}
			return el.SetAttribute(name, v)
		},
		remove: func(el *dom.Element) error { return el.RemoveAttribute(name) },
	})
}

var urlAttributes = map[string]bool{
	"action": true, "formaction": true, "href": true, "poster": true,
	"src": true, "xlink:href": true,
}

func checkAttribute(name, value string) error {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, "on") {
		return fmt.Errorf("%w: event handler attribute %q", ErrUnsafeAttribute, name)
	}
	if urlAttributes[name] {
		v := strings.ToLower(strings.TrimSpace(value))
		for _, scheme := range []string{"javascript:", "vbscript:", "data:text/html"} {
			if strings.HasPrefix(v, scheme) {
				return fmt.Errorf("%w: %s URL in %q", ErrUnsafeAttribute, scheme, name)
			}
		}
	}
	return nil
}

// ToggleAttribute adds the boolean attribute name while r is true.
func ToggleAttribute(name string, r Reactive[bool]) Effect {
	return bind(r, binding[bool]{
		op:     "toggle attribute " + name,
		read:   func(el *dom.Element) (bool, bool) { return el.HasAttribute(name), true },
		update: func(el *dom.Element, v bool) error { return el.ToggleAttribute(name, v) },
	})
}

// ToggleClass adds class token while r is true.
func ToggleClass(token string, r Reactive[bool]) Effect {
	return bind(r, binding[bool]{
		op:     "toggle class " + token,
		read:   func(el *dom.Element) (bool, bool) { return el.HasClass(token), true },
		update: func(el *dom.Element, v bool) error { return el.ToggleClass(token, v) },
	})
}

// SetStyle keeps an inline style property in sync.
func SetStyle(prop string, r Reactive[string]) Effect {
	return bind(r, binding[string]{
		op: "set style " + prop,
		read: func(el *dom.Element) (string, bool) {
			v := el.Style(prop)
			return v, v != ""
		},
		update: func(el *dom.Element, v string) error { return el.SetStyle(prop, v) },
		remove: func(el *dom.Element) error { return el.RemoveStyle(prop) },
	})
}

// Show hides the target while r is false.
func Show(r Reactive[bool]) Effect {
	return bind(r, binding[bool]{
		op:     "show",
		read:   func(el *dom.Element) (bool, bool) { return !el.HasAttribute("hidden"), true },
		update: func(el *dom.Element, v bool) error { return el.ToggleAttribute("hidden", !v) },
	})
}

// DangerouslySetInnerHTML replaces the target's children with the parsed
// markup. Custom elements in the markup are upgraded and connected; scripts
// are not executed.
func DangerouslySetInnerHTML(r Reactive[string]) Effect {
	return bind(r, binding[string]{
		op:   "set inner HTML",
		read: func(el *dom.Element) (string, bool) { return el.InnerHTML(), true },
		update: func(el *dom.Element, v string) error {
			if el.InnerHTML() == v {
				return nil
			}
			return el.SetInnerHTML(v)
		},
	})
}

// On listens for events of type typ on the target. handler runs inside a
// reactive.Batch, so the writes it makes are flushed together.
func On(typ string, handler func(ev *dom.Event)) Effect {
	return func(_ *Host, target *dom.Element) (reactive.Cleanup, error) {
		remove := target.AddEventListener(typ, func(ev *dom.Event) {
			reactive.Batch(func() { handler(ev) })
		})
		return reactive.Cleanup(remove), nil
	}
}

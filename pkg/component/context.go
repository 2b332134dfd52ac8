package component

import (
	"fmt"

	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/reactive"
)

// ContextRequestEvent is the type of the bubbling event consumers dispatch
// to find a provider.
const ContextRequestEvent = "context-request"

// ContextRequest is the Detail of a context request event. The nearest
// provider of Key calls Callback with its signal and stops propagation.
type ContextRequest struct {
	Key      string
	Callback func(s reactive.AnySignal)
}

// ProvideContexts answers context requests from descendants for the named
// host properties.
func ProvideContexts(keys ...string) Effect {
	return func(h *Host, target *dom.Element) (reactive.Cleanup, error) {
		provided := make(map[string]bool, len(keys))
		for _, key := range keys {
			if _, ok := h.slots[key]; !ok {
				return nil, fmt.Errorf("%w: cannot provide %q from <%s>", ErrUnknownProperty, key, h.Tag())
			}
			provided[key] = true
		}

		remove := target.AddEventListener(ContextRequestEvent, func(ev *dom.Event) {
			req, ok := ev.Detail.(*ContextRequest)
			if !ok || ev.Target() == target || !provided[req.Key] {
				return
			}
			ev.StopPropagation()
			var sig reactive.AnySignal
			reactive.Untracked(func() { sig = h.Signal(req.Key) })
			req.Callback(sig)
		})
		return reactive.Cleanup(remove), nil
	}
}

// FromContext adopts the signal of the nearest ancestor providing key, or a
// State holding fallback when no ancestor provides it.
func FromContext[T any](key string, fallback T) Initializer {
	return producerInit{
		produce: func(h *Host) reactive.AnySignal {
			var found reactive.AnySignal
			h.el.DispatchEvent(&dom.Event{
				Type:    ContextRequestEvent,
				Bubbles: true,
				Detail: &ContextRequest{
					Key:      key,
					Callback: func(s reactive.AnySignal) { found = s },
				},
			})
			if found != nil {
				return found
			}
			h.logger().Debug("no context provider", "tag", h.Tag(), "key", key)
			return reactive.NewState(fallback)
		},
	}
}

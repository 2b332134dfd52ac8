package dom

// Event is a DOM event.
type Event struct {
	Type       string
	Bubbles    bool
	Cancelable bool
	Detail     any

	target    *Element
	current   *Element
	stopped   bool
	stopNow   bool
	prevented bool
}

// NewEvent creates a bubbling, cancelable event.
func NewEvent(typ string, detail any) *Event {
	return &Event{Type: typ, Bubbles: true, Cancelable: true, Detail: detail}
}

// Target returns the element the event was dispatched on.
func (ev *Event) Target() *Element { return ev.target }

// CurrentTarget returns the element whose listeners are running.
func (ev *Event) CurrentTarget() *Element { return ev.current }

// StopPropagation prevents the event from reaching further ancestors.
func (ev *Event) StopPropagation() { ev.stopped = true }

// StopImmediatePropagation also skips the remaining listeners of the
// current element.
func (ev *Event) StopImmediatePropagation() {
	ev.stopped = true
	ev.stopNow = true
}

// PreventDefault marks a cancelable event as cancelled.
func (ev *Event) PreventDefault() {
	if ev.Cancelable {
		ev.prevented = true
	}
}

// DefaultPrevented reports whether PreventDefault was called on a
// cancelable event.
func (ev *Event) DefaultPrevented() bool { return ev.prevented }

type listener struct {
	fn      func(*Event)
	removed bool
}

// AddEventListener registers fn for events of type typ and returns a
// function that removes it.
func (e *Element) AddEventListener(typ string, fn func(*Event)) (remove func()) {
	l := &listener{fn: fn}
	if e.listeners == nil {
		e.listeners = make(map[string][]*listener)
	}
	e.listeners[typ] = append(e.listeners[typ], l)

	return func() {
		if l.removed {
			return
		}
		l.removed = true
		ls := e.listeners[typ]
		for i, x := range ls {
			if x == l {
				e.listeners[typ] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
	}
}

// ListenerCount returns the number of listeners registered for typ.
func (e *Element) ListenerCount(typ string) int {
	return len(e.listeners[typ])
}

// DispatchEvent runs the listeners of e and, for bubbling events, of its
// ancestors. The propagation path is fixed before the first listener runs.
// It returns false if a listener cancelled the event.
//
// A panicking listener aborts the dispatch.
func (e *Element) DispatchEvent(ev *Event) bool {
	ev.target = e
	ev.stopped, ev.stopNow = false, false

	path := []*Element{e}
	if ev.Bubbles {
		for p := e.Parent(); p != nil; p = p.Parent() {
			path = append(path, p)
		}
	}

	for _, el := range path {
		ev.current = el
		el.invoke(ev)
		if ev.stopped {
			break
		}
	}
	ev.current = nil
	return !ev.prevented
}

func (e *Element) invoke(ev *Event) {
	ls := append([]*listener(nil), e.listeners[ev.Type]...)
	for _, l := range ls {
		if l.removed {
			continue
		}
		l.fn(ev)
		if ev.stopNow {
			return
		}
	}
}

// Click dispatches a bubbling, cancelable click event.
func (e *Element) Click() bool {
	return e.DispatchEvent(NewEvent("click", nil))
}

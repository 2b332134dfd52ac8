package dom

// MutationType identifies the kind of a MutationRecord.
type MutationType uint8

const (
	ChildList  MutationType = iota + 1 // children added or removed
	Attributes                         // attribute set or removed
)

// String returns the string representation of the MutationType.
func (t MutationType) String() string {
	switch t {
	case ChildList:
		return "childList"
	case Attributes:
		return "attributes"
	default:
		return "unknown"
	}
}

// MutationRecord describes one change to the tree.
type MutationRecord struct {
	Type   MutationType
	Target *Element

	// For Attributes records.
	AttributeName string
	OldValue      *string
}

type observer struct {
	root    *Element
	fn      func(MutationRecord)
	stopped bool
}

// Observe calls fn for every mutation whose target is root or one of its
// descendants, after the mutation and its lifecycle callbacks completed.
// The returned function stops observation.
func Observe(root *Element, fn func(MutationRecord)) (stop func()) {
	d := root.doc
	o := &observer{root: root, fn: fn}

	d.obsMu.Lock()
	d.observers = append(d.observers, o)
	d.obsMu.Unlock()

	return func() {
		d.obsMu.Lock()
		defer d.obsMu.Unlock()
		o.stopped = true
		for i, x := range d.observers {
			if x == o {
				d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

func (d *Document) notify(rec MutationRecord) {
	d.obsMu.Lock()
	if len(d.observers) == 0 {
		d.obsMu.Unlock()
		return
	}
	obs := append([]*observer(nil), d.observers...)
	d.obsMu.Unlock()

	for _, o := range obs {
		if o.stopped || !o.root.Contains(rec.Target) {
			continue
		}
		o.fn(rec)
	}
}

package component

import (
	"errors"
	"fmt"

	"github.com/vango-dev/uielement/pkg/dom"
)

// Insert positions, relative to the target element.
const (
	BeforeBegin = "beforebegin"
	AfterBegin  = "afterbegin"
	BeforeEnd   = "beforeend"
	AfterEnd    = "afterend"
)

// Inserter configures InsertOrRemoveElement.
type Inserter struct {
	// Position is one of BeforeBegin, AfterBegin, BeforeEnd (default) or
	// AfterEnd.
	Position string

	// Create returns a new element for the given parent.
	Create func(parent *dom.Element) (*dom.Element, error)

	// Resolve, if set, is called after a change was applied. A counter
	// driving the effect is typically reset to zero here.
	Resolve func(target *dom.Element)
}

// InsertOrRemoveElement inserts r elements created by ins.Create when r is
// positive and removes -r elements at the same position when it is negative.
func InsertOrRemoveElement(r Reactive[int], ins Inserter) Effect {
	if ins.Position == "" {
		ins.Position = BeforeEnd
	}
	return bind(r, binding[int]{
		op:   "insert or remove element",
		read: func(*dom.Element) (int, bool) { return 0, true },
		update: func(target *dom.Element, diff int) error {
			var err error
			switch {
			case diff > 0:
				err = insertElements(target, ins, diff)
			case diff < 0:
				err = removeElements(target, ins.Position, -diff)
			default:
				return nil
			}
			if err == nil && ins.Resolve != nil {
				ins.Resolve(target)
			}
			return err
		},
	})
}

func insertElements(target *dom.Element, ins Inserter, n int) error {
	if ins.Create == nil {
		return errors.New("inserter has no Create function")
	}

	var parent, ref *dom.Element
	switch ins.Position {
	case BeforeBegin:
		parent, ref = target.Parent(), target
	case AfterBegin:
		parent, ref = target, target.FirstElementChild()
	case BeforeEnd:
		parent = target
	case AfterEnd:
		parent, ref = target.Parent(), target.NextElementSibling()
	default:
		return fmt.Errorf("invalid insert position %q", ins.Position)
	}
	if parent == nil {
		return fmt.Errorf("cannot insert %s a detached element", ins.Position)
	}

	var errs []error
	for i := 0; i < n; i++ {
		el, err := ins.Create(parent)
		if err != nil {
			return errors.Join(append(errs, err)...)
		}
		if err := parent.InsertBefore(el, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func removeElements(target *dom.Element, position string, n int) error {
	next := func() *dom.Element {
		switch position {
		case BeforeBegin:
			return target.PreviousElementSibling()
		case AfterBegin:
			return target.FirstElementChild()
		case BeforeEnd:
			return target.LastElementChild()
		case AfterEnd:
			return target.NextElementSibling()
		}
		return nil
	}

	var errs []error
	for i := 0; i < n; i++ {
		el := next()
		if el == nil {
			break
		}
		if err := el.Remove(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

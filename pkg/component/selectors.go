package component

import (
	"errors"

	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/reactive"
)

// apply runs effects against el and returns their combined cleanup.
func apply(h *Host, el *dom.Element, effects []Effect) (reactive.Cleanup, error) {
	var cleanups []reactive.Cleanup
	var errs []error
	for _, fx := range effects {
		if fx == nil {
			continue
		}
		cleanup, err := fx(h, el)
		if cleanup != nil {
			cleanups = append(cleanups, cleanup)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(cleanups) == 0 {
		return nil, errors.Join(errs...)
	}
	return func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}, errors.Join(errs...)
}

// First applies effects to the first descendant of the target matching
// selector. Nothing happens when there is none.
func First(selector string, effects ...Effect) Effect {
	return func(h *Host, target *dom.Element) (reactive.Cleanup, error) {
		el, err := target.QuerySelector(selector)
		if err != nil || el == nil {
			return nil, err
		}
		return apply(h, el, effects)
	}
}

// FirstRequired is First for a descendant the component cannot work without.
// A missing match fails the connection with a *MissingElementError carrying
// message.
func FirstRequired(selector, message string, effects ...Effect) Effect {
	return func(h *Host, target *dom.Element) (reactive.Cleanup, error) {
		el, err := target.QuerySelector(selector)
		if err != nil {
			return nil, err
		}
		if el == nil {
			return nil, &MissingElementError{Host: h.Tag(), Selector: selector, Message: message}
		}
		return apply(h, el, effects)
	}
}

// All applies effects to every descendant of the target matching selector.
// Matches are re-evaluated after each mutation of the subtree: new matches
// get the effects, elements that stop matching have theirs cleaned up.
//
// Errors raised for elements matched after connection panic out of the
// mutation that caused them.
func All(selector string, effects ...Effect) Effect {
	return func(h *Host, target *dom.Element) (reactive.Cleanup, error) {
		scope := reactive.CurrentScope()
		active := make(map[*dom.Element]reactive.Cleanup)
		syncing, dirty := false, false

		sync := func() error {
			els, err := target.QuerySelectorAll(selector)
			if err != nil {
				return err
			}
			seen := make(map[*dom.Element]bool, len(els))
			var errs []error
			for _, el := range els {
				seen[el] = true
				if _, ok := active[el]; ok {
					continue
				}
				active[el] = nil
				cleanup, err := apply(h, el, effects)
				active[el] = cleanup
				if err != nil {
					errs = append(errs, err)
				}
			}
			for el, cleanup := range active {
				if seen[el] {
					continue
				}
				delete(active, el)
				if cleanup != nil {
					cleanup()
				}
			}
			return errors.Join(errs...)
		}

		// resync coalesces mutations made by the effects being applied.
		resync := func() error {
			if syncing {
				dirty = true
				return nil
			}
			syncing = true
			defer func() { syncing = false }()

			var errs []error
			for {
				dirty = false
				run := func() { errs = append(errs, sync()) }
				if scope != nil {
					scope.Run(func() { reactive.Untracked(run) })
				} else {
					reactive.Untracked(run)
				}
				if !dirty {
					return errors.Join(errs...)
				}
			}
		}

		if err := resync(); err != nil {
			for _, cleanup := range active {
				if cleanup != nil {
					cleanup()
				}
			}
			return nil, err
		}

		stop := dom.Observe(target, func(dom.MutationRecord) {
			if err := resync(); err != nil {
				panic(err)
			}
		})

		return func() {
			stop()
			for el, cleanup := range active {
				delete(active, el)
				if cleanup != nil {
					cleanup()
				}
			}
		}, nil
	}
}

package reactive

import "sync"

// node provides the type-erased subscriber management shared by State and
// Computed. It is the "Signal" capability of the graph: an identity, a version
// that moves whenever the observable value changes, and the set of dependents.
type node struct {
	id uint64

	// version increments on every observable value change.
	version uint64

	// subs are the dependents subscribed to this node.
	subs  []subscriber
	subMu sync.RWMutex
}

func newNode() node {
	return node{id: nextID()}
}

func (n *node) currentVersion() uint64 {
	n.subMu.RLock()
	defer n.subMu.RUnlock()
	return n.version
}

func (n *node) bumpVersion() {
	n.subMu.Lock()
	n.version++
	n.subMu.Unlock()
}

// subscribe adds a dependent, deduplicating by ID.
func (n *node) subscribe(s subscriber) {
	if s == nil {
		return
	}

	n.subMu.Lock()
	defer n.subMu.Unlock()

	sid := s.ID()
	for _, existing := range n.subs {
		if existing.ID() == sid {
			return
		}
	}
	n.subs = append(n.subs, s)
}

// unsubscribe removes a dependent. Order of the remaining dependents is kept
// so notification order stays the subscription order.
func (n *node) unsubscribe(s subscriber) {
	if s == nil {
		return
	}

	n.subMu.Lock()
	defer n.subMu.Unlock()

	sid := s.ID()
	for i, existing := range n.subs {
		if existing.ID() == sid {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			return
		}
	}
}

// subscriberCount returns the number of current dependents.
func (n *node) subscriberCount() int {
	n.subMu.RLock()
	defer n.subMu.RUnlock()
	return len(n.subs)
}

// notify marks every dependent stale for the given epoch. Subscribers are
// copied before notification so they may unsubscribe while being notified.
func (n *node) notify(epoch uint64) {
	n.subMu.RLock()
	subs := make([]subscriber, len(n.subs))
	copy(subs, n.subs)
	n.subMu.RUnlock()

	for _, sub := range subs {
		sub.markStale(epoch)
	}
}

// subscriber is implemented by nodes that depend on other nodes: Computed and
// the effect behind NewEffect.
type subscriber interface {
	ID() uint64
	markStale(epoch uint64)
}

// source is implemented by readable nodes.
type source interface {
	base() *node

	// refresh brings the node's value up to date. It is a no-op for State;
	// Computed re-evaluates if any of its own dependencies moved.
	refresh()
}

// dependency pairs a source with the version observed at the last read.
type dependency struct {
	src     source
	version uint64
}

// changed reports whether src has moved past the recorded version. The source
// is refreshed first, so a stale Computed is pulled up to date before the
// comparison.
func (d dependency) changed() bool {
	d.src.refresh()
	return d.src.base().currentVersion() != d.version
}

// anyChanged reports whether any dependency moved. Sources are checked in
// read order and checking stops at the first change, so a branch that is no
// longer taken is never evaluated.
func anyChanged(deps []dependency) bool {
	for _, d := range deps {
		if d.changed() {
			return true
		}
	}
	return false
}

// swapDeps replaces old with next, unsubscribing sub from sources that were
// dropped and subscribing it to sources that were added.
func swapDeps(sub subscriber, old, next []dependency) []dependency {
	keep := make(map[uint64]bool, len(next))
	for _, d := range next {
		keep[d.src.base().id] = true
	}
	had := make(map[uint64]bool, len(old))
	for _, d := range old {
		id := d.src.base().id
		had[id] = true
		if !keep[id] {
			d.src.base().unsubscribe(sub)
		}
	}
	for _, d := range next {
		if !had[d.src.base().id] {
			d.src.base().subscribe(sub)
		}
	}
	return next
}

// releaseDeps unsubscribes sub from every dependency.
func releaseDeps(sub subscriber, deps []dependency) {
	for _, d := range deps {
		d.src.base().unsubscribe(sub)
	}
}

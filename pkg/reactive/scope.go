package reactive

import (
	"sync"
	"sync/atomic"
)

// Scope owns effects and cleanup functions. Disposing a scope disposes every
// effect created while it was current, runs its cleanups, and disposes its
// child scopes.
//
// Every effect run gets a fresh child scope, so effects created inside an
// effect body are disposed before that body runs again. A component instance
// owns a scope for the lifetime of one connection.
type Scope struct {
	id uint64

	parent *Scope

	children   []*Scope
	childrenMu sync.Mutex

	// cleanups run in reverse registration order on Dispose.
	cleanups   []func()
	cleanupsMu sync.Mutex

	disposed atomic.Bool
}

// NewScope creates a scope. A non-nil parent disposes it along with itself.
func NewScope(parent *Scope) *Scope {
	s := &Scope{
		id:     nextID(),
		parent: parent,
	}
	if parent != nil {
		parent.addChild(s)
	}
	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsDisposed reports whether Dispose has been called.
func (s *Scope) IsDisposed() bool {
	return s.disposed.Load()
}

// Run calls fn with s as the current scope. Effects and cleanups created by
// fn are owned by s.
func (s *Scope) Run(fn func()) {
	ctx := getTrackingContext()
	old := ctx.scope
	ctx.scope = s
	defer func() { ctx.scope = old }()
	fn()
}

// OnCleanup registers fn to run when s is disposed. On a disposed scope fn
// runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if fn == nil {
		return
	}
	if s.disposed.Load() {
		fn()
		return
	}

	s.cleanupsMu.Lock()
	defer s.cleanupsMu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// Dispose disposes child scopes, then runs cleanups in reverse registration
// order. Calling Dispose more than once is a no-op.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}

	s.childrenMu.Lock()
	children := s.children
	s.children = nil
	s.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	s.cleanupsMu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	}
}

func (s *Scope) addChild(child *Scope) {
	if s.disposed.Load() {
		child.Dispose()
		return
	}
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()
	s.children = append(s.children, child)
}

func (s *Scope) removeChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()

	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// CurrentScope returns the scope that owns effects created right now, or nil.
func CurrentScope() *Scope {
	return getTrackingContext().scope
}

// OnCleanup registers fn with the current scope. Outside any scope fn is
// never called.
func OnCleanup(fn func()) {
	if s := CurrentScope(); s != nil {
		s.OnCleanup(fn)
	}
}

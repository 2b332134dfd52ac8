package reactive

import "sync/atomic"

// globalIDCounter is the source of unique IDs for all reactive nodes.
var globalIDCounter uint64

// nextID returns the next unique ID for a reactive node.
// IDs are monotonically increasing and never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// globalEpoch numbers change propagations. Every State write and every async
// resolution starts a new epoch so a computed is marked stale at most once per
// propagation even when it is reachable through several paths.
var globalEpoch uint64

func nextEpoch() uint64 {
	return atomic.AddUint64(&globalEpoch, 1)
}

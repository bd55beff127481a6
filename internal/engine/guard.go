package engine

import "sync/atomic"

// indexGuard provides non-blocking lock semantics so only one index
// mutation (a full indexing run or a removal) is ever in flight.
// Searches are not blocked by the guard; they serialize against the
// index's own mutex.
type indexGuard struct {
	state atomic.Int32 // 0 = idle, 1 = mutating
}

// tryAcquire attempts to claim the guard without blocking.
func (g *indexGuard) tryAcquire() bool {
	return g.state.CompareAndSwap(0, 1)
}

// release returns the guard to idle. Must only be called by the
// goroutine that acquired it.
func (g *indexGuard) release() {
	g.state.Store(0)
}

// Package cache implements a two-level, budget-limited, concurrent transposition
// cache for a chess engine. An outer map groups positions into equivalence classes
// by a monotonic hash that can only decrease as a game progresses; each class owns
// an inner, Zobrist-keyed transposition table that can grow (and, under variant
// switch or shrink, be rebuilt) independently of the others.
package cache

import (
	"sync/atomic"

	"github.com/herohde/monochess/pkg/board"
)

const megabyte = 1024 * 1024

// BoardView is the read-only board state the cache needs: an exact, side-to-move
// dependent Zobrist key, and the monotonic hash identifying its equivalence class.
// It is satisfied by *board.Board.
type BoardView interface {
	Zobrist() board.ZobristHash
	MonotonicHash() board.MonotonicHash
}

// TranspositionCache is a two-level transposition cache bounded by a configured byte
// budget. All operations are safe for concurrent use by multiple goroutines.
type TranspositionCache[P Payload] struct {
	outer   *outerMap[P]
	budget  *budgetCounter
	maxSize atomic.Int64
}

// New returns a cache limited to approximately sizeMB megabytes.
func New[P Payload](sizeMB uint) *TranspositionCache[P] {
	max := int64(sizeMB) * megabyte

	c := &TranspositionCache[P]{
		outer:  newOuterMap[P](),
		budget: newBudgetCounter(max),
	}
	c.maxSize.Store(max)
	return c
}

// Insert stores payload for the given board, creating its equivalence class's inner
// table on first use. If the budget refuses a new class's initial allocation, the
// insert is dropped silently: a miss costs only a recomputation, never correctness.
func (c *TranspositionCache[P]) Insert(b BoardView, payload P) {
	digest := b.MonotonicHash().Digest()
	zobrist := uint64(b.Zobrist())

	if tt, ok := c.outer.load(digest); ok {
		tt.mu.Lock()
		tt.insert(zobrist, payload, c.budget)
		tt.mu.Unlock()
		return
	}

	tt := newInnerTT[P]()
	cost := int64(tt.sizeBytes())
	if !c.budget.reserve(cost) {
		return
	}

	tt.mu.Lock()
	tt.insert(zobrist, payload, c.budget)
	tt.mu.Unlock()

	if existing, loaded := c.outer.loadOrStore(digest, tt); loaded {
		// Lost the race to install this equivalence class: release our reservation
		// and insert into the table that won instead.
		c.budget.release(cost)

		existing.mu.Lock()
		existing.insert(zobrist, payload, c.budget)
		existing.mu.Unlock()
	}
}

// Probe looks up the payload for the given board, if any.
func (c *TranspositionCache[P]) Probe(b BoardView) (P, bool) {
	digest := b.MonotonicHash().Digest()

	tt, ok := c.outer.load(digest)
	if !ok {
		var zero P
		return zero, false
	}

	token := tt.mu.RLock()
	defer tt.mu.RUnlock(token)
	return tt.probe(uint64(b.Zobrist()))
}

// Clear empties the cache and restores the full budget.
func (c *TranspositionCache[P]) Clear() {
	c.outer.clear()
	c.budget.reset(c.maxSize.Load())
}

// Resize changes the configured maximum size. If the new maximum is smaller than
// current usage, inner tables are shrunk - largest bucket count first, repeatedly
// halved - until the budget is non-negative again or no table can be shrunk further,
// whichever comes first. Shrinking an inner table discards its contents.
func (c *TranspositionCache[P]) Resize(newMB uint) {
	newMax := int64(newMB) * megabyte
	old := c.maxSize.Swap(newMax)
	c.budget.adjust(newMax - old)

	for c.budget.value() < 0 {
		tt, count := c.largestInnerTT()
		if tt == nil {
			break
		}
		half := count / 2
		if half == 0 {
			break // degraded but stable: cannot shrink further.
		}

		tt.mu.Lock()
		tt.resizeTo(half, c.budget)
		tt.mu.Unlock()
	}
}

// PruneUnreachable discards every equivalence class whose digest exceeds
// newRootDigest. Because the outer map is keyed by a 32-bit digest rather than the
// full 128-bit monotonic hash, a surviving class may in fact hold only positions
// that are no longer reachable; Zobrist verification on probe still excludes any
// false hit. This is a conservative, never-under-keeping prune.
func (c *TranspositionCache[P]) PruneUnreachable(newRootDigest uint32) {
	c.outer.retain(func(digest uint32) bool {
		return digest <= newRootDigest
	})
	c.budget.reset(c.maxSize.Load() - c.totalBytes())
}

// HashFull reports permille fullness of the configured byte budget.
func (c *TranspositionCache[P]) HashFull() uint16 {
	max := c.maxSize.Load()
	if max <= 0 {
		return 0
	}
	used := max - c.budget.value()
	if used <= 0 {
		return 0
	}
	permille := used * 1000 / max
	if permille > 1000 {
		permille = 1000
	}
	return uint16(permille)
}

// SizeBytes reports current byte usage across all equivalence classes.
func (c *TranspositionCache[P]) SizeBytes() int64 {
	return c.maxSize.Load() - c.budget.value()
}

func (c *TranspositionCache[P]) totalBytes() int64 {
	var total int64
	c.outer.forEach(func(_ uint32, tt *innerTT[P]) {
		token := tt.mu.RLock()
		total += int64(tt.sizeBytes())
		tt.mu.RUnlock(token)
	})
	return total
}

func (c *TranspositionCache[P]) largestInnerTT() (*innerTT[P], int) {
	var best *innerTT[P]
	bestCount := -1

	c.outer.forEach(func(_ uint32, tt *innerTT[P]) {
		token := tt.mu.RLock()
		n := tt.bucketCount()
		tt.mu.RUnlock(token)

		if n > bestCount {
			best, bestCount = tt, n
		}
	})
	return best, bestCount
}

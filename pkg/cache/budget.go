package cache

import "sync/atomic"

// budgetCounter is a lock-free "room to grow" byte counter. It starts at the
// configured maximum and is decremented (reserved) before any allocation that would
// grow the cache, and incremented (released) when space is freed.
//
// Transient negative excursions are possible if multiple reservers race: each one
// that observes a negative result after its own subtraction rolls back
// unconditionally, so the counter always converges to a value consistent with what
// was actually allocated.
type budgetCounter struct {
	remaining atomic.Int64
}

func newBudgetCounter(maxBytes int64) *budgetCounter {
	b := &budgetCounter{}
	b.remaining.Store(maxBytes)
	return b
}

// reserve attempts to account for n additional bytes (n >= 0). Returns false, with
// the counter left unchanged, if doing so would drive it negative.
func (b *budgetCounter) reserve(n int64) bool {
	if n <= 0 {
		return true
	}
	if r := b.remaining.Add(-n); r < 0 {
		b.remaining.Add(n)
		return false
	}
	return true
}

// release returns n bytes (n >= 0) to the budget.
func (b *budgetCounter) release(n int64) {
	if n <= 0 {
		return
	}
	b.remaining.Add(n)
}

// adjust unconditionally changes the counter by delta, positive or negative. Used
// when the configured maximum itself changes, as opposed to a reservation for a
// specific allocation.
func (b *budgetCounter) adjust(delta int64) {
	b.remaining.Add(delta)
}

func (b *budgetCounter) reset(remaining int64) {
	b.remaining.Store(remaining)
}

func (b *budgetCounter) value() int64 {
	return b.remaining.Load()
}

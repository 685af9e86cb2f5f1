package cache

import (
	"unsafe"

	"github.com/puzpuzpuz/xsync/v4"
)

// kind distinguishes the two InnerTT storage variants.
type kind uint8

const (
	wide kind = iota
	narrow
)

// narrowThreshold is the bucket count at which the index already covers the whole
// 64-bit Zobrist space, so a full verification word is redundant: a Narrow table
// verifies against the low 32 bits only. A var, not a const, so tests can lower it
// rather than grow a table to billions of buckets to exercise the switch.
var narrowThreshold = uint64(1) << 32

// expansionSchedule is the sequence of growth factors tried, in order, on an insert
// that finds every slot of its target bucket occupied.
var expansionSchedule = []int{2}

// innerTT is a Zobrist-keyed transposition table for one monotonic-hash equivalence
// class. It is guarded by a reader-biased mutex: probe takes a read lock, insert
// and resizeTo take a write lock. The zero value is not usable; use newInnerTT.
type innerTT[P Payload] struct {
	mu *xsync.RBMutex

	kind          kind
	wideBuckets   []wideBucket[P]
	narrowBuckets []narrowBucket[P]
	usedEntries   int
}

func newInnerTT[P Payload]() *innerTT[P] {
	return &innerTT[P]{
		mu:          xsync.NewRBMutex(),
		kind:        wide,
		wideBuckets: make([]wideBucket[P], 1),
	}
}

func (t *innerTT[P]) bucketCount() int {
	if t.kind == wide {
		return len(t.wideBuckets)
	}
	return len(t.narrowBuckets)
}

func (t *innerTT[P]) sizeBytes() int {
	if t.kind == wide {
		return len(t.wideBuckets) * int(unsafe.Sizeof(wideBucket[P]{}))
	}
	return len(t.narrowBuckets) * int(unsafe.Sizeof(narrowBucket[P]{}))
}

// hashFull reports the bucket-fill permille of this table alone: used_entries*1000 /
// (buckets*4). Distinct from the facade-level HashFull, which reports byte usage
// against the configured maximum across the whole cache.
func (t *innerTT[P]) hashFull() uint16 {
	total := t.bucketCount() * bucketSize
	if total == 0 || t.usedEntries == 0 {
		return 0
	}
	return uint16(t.usedEntries * 1000 / total)
}

// insert stores payload under zobrist. Caller must hold the write lock.
func (t *innerTT[P]) insert(zobrist uint64, payload P, budget *budgetCounter) {
	if t.kind == narrow {
		if t.tryStoreNarrow(zobrist, payload, false) {
			return
		}
		t.tryStoreNarrow(zobrist, payload, true)
		return
	}

	if t.tryStoreWide(zobrist, payload, false) {
		return
	}

	for _, factor := range expansionSchedule {
		if !t.resizeTo(t.bucketCount()*factor, budget) {
			continue
		}
		if t.kind != wide {
			break // resizeTo switched variant to Narrow; fall through below.
		}
		if t.tryStoreWide(zobrist, payload, false) {
			return
		}
	}

	// All growth attempts were either refused by the budget or insufficient:
	// force a write into the current (possibly now Narrow) table.
	if t.kind == wide {
		t.tryStoreWide(zobrist, payload, true)
	} else {
		t.tryStoreNarrow(zobrist, payload, true)
	}
}

// probe looks up zobrist. Caller must hold at least the read lock.
func (t *innerTT[P]) probe(zobrist uint64) (P, bool) {
	if t.kind == wide {
		idx := int(zobrist % uint64(len(t.wideBuckets)))
		return t.wideBuckets[idx].find(zobrist)
	}
	idx := int(zobrist % uint64(len(t.narrowBuckets)))
	return t.narrowBuckets[idx].find(uint32(zobrist))
}

func (t *innerTT[P]) tryStoreWide(zobrist uint64, payload P, overwrite bool) bool {
	idx := int(zobrist % uint64(len(t.wideBuckets)))
	ok, wasEmpty := t.wideBuckets[idx].store(zobrist, payload, overwrite)
	if ok && wasEmpty {
		t.usedEntries++
	}
	return ok
}

func (t *innerTT[P]) tryStoreNarrow(zobrist uint64, payload P, overwrite bool) bool {
	idx := int(zobrist % uint64(len(t.narrowBuckets)))
	ok, wasEmpty := t.narrowBuckets[idx].store(uint32(zobrist), payload, overwrite)
	if ok && wasEmpty {
		t.usedEntries++
	}
	return ok
}

// resizeTo changes the bucket count, consulting budget for the byte delta. Caller
// must hold the write lock. Returns false iff a growth was refused by the budget,
// in which case the table is left unchanged.
//
// Growing in place (newBuckets a multiple of the current count, staying Wide)
// preserves every live entry. Any other transition - shrinking, or switching to
// Narrow once newBuckets reaches narrowThreshold - discards the table's contents:
// only growth is required to preserve data.
func (t *innerTT[P]) resizeTo(newBuckets int, budget *budgetCounter) bool {
	if newBuckets < 1 {
		newBuckets = 1
	}

	oldBytes := t.sizeBytes()
	switchToNarrow := uint64(newBuckets) >= narrowThreshold

	var newBytes int
	if switchToNarrow {
		newBytes = newBuckets * int(unsafe.Sizeof(narrowBucket[P]{}))
	} else {
		newBytes = newBuckets * int(unsafe.Sizeof(wideBucket[P]{}))
	}

	delta := int64(newBytes - oldBytes)
	switch {
	case delta > 0:
		if !budget.reserve(delta) {
			return false
		}
	case delta < 0:
		budget.release(-delta)
	}

	switch {
	case switchToNarrow:
		t.kind = narrow
		t.wideBuckets = nil
		t.narrowBuckets = make([]narrowBucket[P], newBuckets)
		t.usedEntries = 0

	case t.kind == wide && newBuckets > len(t.wideBuckets) && newBuckets%len(t.wideBuckets) == 0:
		t.growWideInPlace(newBuckets)

	case t.kind == wide:
		t.wideBuckets = make([]wideBucket[P], newBuckets)
		t.usedEntries = 0

	default: // already Narrow, resized within Narrow.
		t.narrowBuckets = make([]narrowBucket[P], newBuckets)
		t.usedEntries = 0
	}

	return true
}

// growWideInPlace extends the Wide bucket array to newBuckets, a multiple of the
// current count, and relocates every entry whose new index differs from its old
// one. new_index >= old_index always holds for this kind of resize: x mod (k*n) mod
// n == x mod n, and the new modulus is the old one plus a non-negative multiple of
// it. A violation indicates a logic error in the resize path, not bad input, so it
// is asserted unconditionally rather than silently tolerated.
func (t *innerTT[P]) growWideInPlace(newBuckets int) {
	old := t.wideBuckets
	grown := make([]wideBucket[P], newBuckets)
	copy(grown, old)
	t.wideBuckets = grown

	for oldIdx := range old {
		for _, e := range old[oldIdx].entries {
			if e.verify == 0 {
				continue
			}
			newIdx := int(e.verify % uint64(newBuckets))
			if newIdx < oldIdx {
				panic("cache: rehash invariant violated, new bucket index decreased on growth")
			}
			if newIdx == oldIdx {
				continue
			}
			if ok, wasEmpty := t.wideBuckets[newIdx].store(e.verify, e.data, true); ok && wasEmpty {
				t.usedEntries++
			}
			t.wideBuckets[oldIdx].clearVerified(e.verify)
			t.usedEntries--
		}
	}
}

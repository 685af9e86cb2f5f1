package cache

// bucketSize is the fixed number of entries per bucket, per the configuration.
const bucketSize = 4

// wideEntry is a single slot in a Wide bucket: full 64-bit Zobrist verification.
type wideEntry[P Payload] struct {
	verify uint64
	data   P
}

// wideBucket holds bucketSize entries verified against the full Zobrist key. Used
// while the inner table's bucket count is small enough that the index does not yet
// cover the full 64-bit key space.
type wideBucket[P Payload] struct {
	entries [bucketSize]wideEntry[P]
}

// store writes payload under verify into the minimum-depth slot. An unused slot is
// always preferred over a used one, even a used one that also reads depth 0: only
// the leftmost unused slot, if any, is a candidate; otherwise the leftmost used slot
// of minimum depth is. If that slot is unused, wasEmpty is true. If it is used and
// overwrite is false, the store is refused (ok is false) and the caller must grow
// the table or force an overwrite.
func (b *wideBucket[P]) store(verify uint64, payload P, overwrite bool) (ok, wasEmpty bool) {
	min := -1
	for i := 0; i < bucketSize; i++ {
		if b.entries[i].verify == 0 {
			min = i
			break
		}
		if min == -1 || b.entries[i].data.Depth() < b.entries[min].data.Depth() {
			min = i
		}
	}

	if b.entries[min].verify == 0 {
		b.entries[min] = wideEntry[P]{verify: verify, data: payload}
		return true, true
	}
	if overwrite {
		b.entries[min] = wideEntry[P]{verify: verify, data: payload}
		return true, false
	}
	return false, false
}

// find returns the payload verified against verify, if any.
func (b *wideBucket[P]) find(verify uint64) (P, bool) {
	for i := range b.entries {
		if b.entries[i].verify != 0 && b.entries[i].verify == verify {
			return b.entries[i].data, true
		}
	}
	var zero P
	return zero, false
}

// clearVerified zeroes the entry verified against verify, if present.
func (b *wideBucket[P]) clearVerified(verify uint64) {
	for i := range b.entries {
		if b.entries[i].verify == verify {
			b.entries[i] = wideEntry[P]{}
			return
		}
	}
}

// narrowEntry is a single slot in a Narrow bucket: low-32-bit Zobrist verification.
// Used once the bucket count already saturates the 64-bit index space, at which
// point the bucket index itself carries the high bits.
type narrowEntry[P Payload] struct {
	verify uint32
	data   P
}

type narrowBucket[P Payload] struct {
	entries [bucketSize]narrowEntry[P]
}

func (b *narrowBucket[P]) store(verify uint32, payload P, overwrite bool) (ok, wasEmpty bool) {
	min := -1
	for i := 0; i < bucketSize; i++ {
		if b.entries[i].verify == 0 {
			min = i
			break
		}
		if min == -1 || b.entries[i].data.Depth() < b.entries[min].data.Depth() {
			min = i
		}
	}

	if b.entries[min].verify == 0 {
		b.entries[min] = narrowEntry[P]{verify: verify, data: payload}
		return true, true
	}
	if overwrite {
		b.entries[min] = narrowEntry[P]{verify: verify, data: payload}
		return true, false
	}
	return false, false
}

func (b *narrowBucket[P]) find(verify uint32) (P, bool) {
	for i := range b.entries {
		if b.entries[i].verify != 0 && b.entries[i].verify == verify {
			return b.entries[i].data, true
		}
	}
	var zero P
	return zero, false
}

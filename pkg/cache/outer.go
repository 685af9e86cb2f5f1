package cache

import "github.com/puzpuzpuz/xsync/v4"

// outerMap is the concurrent mapping from monotonic-hash digest to its InnerTT. It is
// a thin wrapper over xsync.Map: lookups and installs are lock-free, independent of
// the reader-writer lock each InnerTT carries internally.
type outerMap[P Payload] struct {
	m *xsync.Map[uint32, *innerTT[P]]
}

func newOuterMap[P Payload]() *outerMap[P] {
	return &outerMap[P]{m: xsync.NewMap[uint32, *innerTT[P]]()}
}

func (o *outerMap[P]) load(digest uint32) (*innerTT[P], bool) {
	return o.m.Load(digest)
}

// loadOrStore installs tt under digest unless an entry already exists, in which case
// the existing entry is returned and loaded is true.
func (o *outerMap[P]) loadOrStore(digest uint32, tt *innerTT[P]) (existing *innerTT[P], loaded bool) {
	return o.m.LoadOrStore(digest, tt)
}

func (o *outerMap[P]) clear() {
	o.m.Clear()
}

// retain removes every entry for which keep returns false. Entries are discarded
// wholesale: retain never needs an InnerTT's own lock.
func (o *outerMap[P]) retain(keep func(digest uint32) bool) {
	o.m.Range(func(digest uint32, _ *innerTT[P]) bool {
		if !keep(digest) {
			o.m.Delete(digest)
		}
		return true
	})
}

// forEach visits every (digest, InnerTT) pair. The callback must take whatever lock
// on tt it needs; forEach itself does not lock entries.
func (o *outerMap[P]) forEach(fn func(digest uint32, tt *innerTT[P])) {
	o.m.Range(func(digest uint32, tt *innerTT[P]) bool {
		fn(digest, tt)
		return true
	})
}

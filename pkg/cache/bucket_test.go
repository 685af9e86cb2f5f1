package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWideBucketStoreIntoUnusedSlot(t *testing.T) {
	var b wideBucket[SearchPayload]

	ok, wasEmpty := b.store(7, NewSearchPayload(3, 0, 0, 0, Exact), false)
	assert.True(t, ok)
	assert.True(t, wasEmpty)

	got, found := b.find(7)
	assert.True(t, found)
	assert.Equal(t, int8(3), got.Depth())
}

func TestWideBucketPrefersMinimumDepthForEviction(t *testing.T) {
	var b wideBucket[SearchPayload]

	for i, depth := range []int8{5, 1, 4, 6} {
		ok, wasEmpty := b.store(uint64(i+1), NewSearchPayload(depth, 0, 0, 0, Exact), false)
		assert.True(t, ok)
		assert.True(t, wasEmpty)
	}

	// All slots full; a forced store must evict the minimum-depth slot (verify=2, depth=1).
	ok, wasEmpty := b.store(100, NewSearchPayload(2, 0, 0, 0, Exact), true)
	assert.True(t, ok)
	assert.False(t, wasEmpty)

	_, found := b.find(2)
	assert.False(t, found)
	got, found := b.find(100)
	assert.True(t, found)
	assert.Equal(t, int8(2), got.Depth())
}

func TestWideBucketTieBreaksToLeftmostMinimum(t *testing.T) {
	var b wideBucket[SearchPayload]

	for i := 0; i < 4; i++ {
		ok, _ := b.store(uint64(i+1), NewSearchPayload(2, 0, 0, 0, Exact), false)
		assert.True(t, ok)
	}

	b.store(200, NewSearchPayload(9, 0, 0, 0, Exact), true)

	_, found := b.find(1)
	assert.False(t, found, "the leftmost of several equal-minimum-depth slots is evicted first")
	for _, v := range []uint64{2, 3, 4} {
		_, found := b.find(v)
		assert.True(t, found)
	}
}

func TestWideBucketRefusesOverwriteWhenFullAndNotForced(t *testing.T) {
	var b wideBucket[SearchPayload]

	for i := 0; i < 4; i++ {
		b.store(uint64(i+1), NewSearchPayload(5, 0, 0, 0, Exact), false)
	}

	ok, _ := b.store(999, NewSearchPayload(5, 0, 0, 0, Exact), false)
	assert.False(t, ok)

	ok, wasEmpty := b.store(999, NewSearchPayload(5, 0, 0, 0, Exact), true)
	assert.True(t, ok)
	assert.False(t, wasEmpty)
}

func TestWideBucketUnusedSlotAlwaysPreferredOverUsed(t *testing.T) {
	var b wideBucket[SearchPayload]

	b.store(1, NewSearchPayload(0, 0, 0, 0, Exact), false) // depth 0, but used (verify != 0).
	b.store(2, NewSearchPayload(1, 0, 0, 0, Exact), false)
	b.store(3, NewSearchPayload(1, 0, 0, 0, Exact), false)
	// Slot 3 (index 3) left unused.

	ok, wasEmpty := b.store(4, NewSearchPayload(9, 0, 0, 0, Exact), false)
	assert.True(t, ok)
	assert.True(t, wasEmpty)

	for _, v := range []uint64{1, 2, 3} {
		_, found := b.find(v)
		assert.True(t, found, "no existing entry should have been evicted when an unused slot was available")
	}
}

func TestNarrowBucketStoreAndFind(t *testing.T) {
	var b narrowBucket[SearchPayload]

	ok, wasEmpty := b.store(42, NewSearchPayload(2, 0, 0, 0, Exact), false)
	assert.True(t, ok)
	assert.True(t, wasEmpty)

	got, found := b.find(42)
	assert.True(t, found)
	assert.Equal(t, int8(2), got.Depth())

	_, found = b.find(43)
	assert.False(t, found)
}

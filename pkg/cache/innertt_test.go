package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInnerTTInsertAndProbe(t *testing.T) {
	tt := newInnerTT[SearchPayload]()
	b := newBudgetCounter(1 << 30)

	tt.insert(0xabc, NewSearchPayload(3, 0, 0, 7, Exact), b)

	got, ok := tt.probe(0xabc)
	require.True(t, ok)
	assert.Equal(t, int16(7), got.Score)
}

func TestInnerTTGrowInPlacePreservesEntries(t *testing.T) {
	tt := newInnerTT[SearchPayload]()
	b := newBudgetCounter(1 << 30)

	// Exactly fills the single starting bucket (all keys hash to index 0 mod 1);
	// no auto-growth is triggered by insert itself.
	keys := []uint64{1, 2, 3, 5}
	for i, k := range keys {
		ok := tt.tryStoreWide(k, NewSearchPayload(int8(i+1), 0, 0, int16(k), Exact), false)
		require.True(t, ok)
	}
	require.Equal(t, 1, tt.bucketCount())

	ok := tt.resizeTo(4, b)
	require.True(t, ok)
	assert.Equal(t, wide, tt.kind)
	assert.Equal(t, 4, tt.bucketCount())

	for _, k := range keys {
		got, found := tt.probe(k)
		assert.True(t, found, "key %d should have survived grow-in-place", k)
		assert.Equal(t, int16(k), got.Score)
	}
}

func TestInnerTTGrowInPlaceRehashInvariantHolds(t *testing.T) {
	tt := newInnerTT[SearchPayload]()
	b := newBudgetCounter(1 << 30)

	for k := uint64(0); k < 4*bucketSize; k++ {
		tt.insert(k, NewSearchPayload(1, 0, 0, 0, Exact), b)
	}

	assert.NotPanics(t, func() {
		tt.resizeTo(tt.bucketCount()*8, b)
	})
}

func TestInnerTTShrinkIsDestructive(t *testing.T) {
	tt := newInnerTT[SearchPayload]()
	b := newBudgetCounter(1 << 30)

	require.True(t, tt.resizeTo(4, b))
	tt.insert(42, NewSearchPayload(3, 0, 0, 0, Exact), b)

	_, found := tt.probe(42)
	require.True(t, found)

	require.True(t, tt.resizeTo(2, b))
	_, found = tt.probe(42)
	assert.False(t, found, "shrinking must discard contents")
	assert.Equal(t, 0, tt.usedEntries)
}

func TestInnerTTVariantSwitchToNarrowIsDestructive(t *testing.T) {
	old := narrowThreshold
	narrowThreshold = 8
	defer func() { narrowThreshold = old }()

	tt := newInnerTT[SearchPayload]()
	b := newBudgetCounter(1 << 30)

	tt.insert(99, NewSearchPayload(2, 0, 0, 0, Exact), b)
	_, found := tt.probe(99)
	require.True(t, found)

	require.True(t, tt.resizeTo(8, b))
	assert.Equal(t, narrow, tt.kind)

	_, found = tt.probe(99)
	assert.False(t, found, "switching to Narrow must discard contents")
}

func TestInnerTTResizeRefusedByBudgetLeavesTableUnchanged(t *testing.T) {
	tt := newInnerTT[SearchPayload]()
	b := newBudgetCounter(0)

	before := tt.bucketCount()
	ok := tt.resizeTo(before*2, b)
	assert.False(t, ok)
	assert.Equal(t, before, tt.bucketCount())
}

func TestInnerTTInsertGrowsWhenBucketIsFullAndBudgetAllows(t *testing.T) {
	tt := newInnerTT[SearchPayload]()
	b := newBudgetCounter(1 << 30)

	// One more key than the starting single bucket can hold: the table must grow
	// rather than silently evict to make room.
	for i := 0; i < bucketSize+1; i++ {
		tt.insert(uint64(i+1), NewSearchPayload(int8(i+1), 0, 0, 0, Exact), b)
	}
	assert.Greater(t, tt.bucketCount(), 1)
	for i := 0; i < bucketSize+1; i++ {
		_, found := tt.probe(uint64(i + 1))
		assert.True(t, found)
	}
}

func TestInnerTTHashFullReflectsBucketFill(t *testing.T) {
	tt := newInnerTT[SearchPayload]()
	b := newBudgetCounter(1 << 30)

	assert.Equal(t, uint16(0), tt.hashFull())

	tt.insert(1, NewSearchPayload(1, 0, 0, 0, Exact), b)
	tt.insert(2, NewSearchPayload(1, 0, 0, 0, Exact), b)

	full := tt.hashFull()
	assert.Greater(t, full, uint16(0))
}

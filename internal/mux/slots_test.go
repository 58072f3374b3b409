package mux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotTable_AllocStartsAtOneAndGrowsMonotonically(t *testing.T) {
	st := newSlotTable()

	a := st.allocSlot()
	b := st.allocSlot()
	c := st.allocSlot()

	assert.Equal(t, uint32(1), a)
	assert.Equal(t, uint32(2), b)
	assert.Equal(t, uint32(3), c)
}

func TestSlotTable_OutOfOrderCompletionRecyclesLIFO(t *testing.T) {
	st := newSlotTable()

	id1 := st.allocSlot()
	id2 := st.allocSlot()
	id3 := st.allocSlot()
	st.install(id1, newAwaiter())
	st.install(id2, newAwaiter())
	st.install(id3, newAwaiter())

	// Runtime responds in order 3, 1, 2. Recycled ids are LIFO, so the
	// next three allocations must hand them back out in the reverse
	// order they were recycled: 2, then 1, then 3.
	_, ok := st.take(id3)
	require.True(t, ok)
	_, ok = st.take(id1)
	require.True(t, ok)
	_, ok = st.take(id2)
	require.True(t, ok)

	assert.Equal(t, id2, st.allocSlot())
	assert.Equal(t, id1, st.allocSlot())
	assert.Equal(t, id3, st.allocSlot())
}

func TestSlotTable_TakeUnknownIDReturnsFalse(t *testing.T) {
	st := newSlotTable()
	_, ok := st.take(42)
	assert.False(t, ok)
}

func TestSlotTable_DrainAllClearsTableWithoutRecycling(t *testing.T) {
	st := newSlotTable()
	id1 := st.allocSlot()
	id2 := st.allocSlot()
	st.install(id1, newAwaiter())
	st.install(id2, newAwaiter())

	drained := st.drainAll()
	assert.Len(t, drained, 2)

	inUse, _ := st.occupancy()
	assert.Zero(t, inUse)
	assert.Zero(t, st.freeListLength())
}

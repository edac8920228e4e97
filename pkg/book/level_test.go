package book

import (
	"testing"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOrder(t *testing.T, id uint64, side Side, price float64, size int64) Order {
	t.Helper()
	o, err := NewOrder(id, side, fpdecimal.FromFloat(price), size)
	require.NoError(t, err)
	return o
}

func levelIDs(pl *PriceLevel) []uint64 {
	ids := make([]uint64, 0, pl.Len())
	pl.Each(func(o Order) bool {
		ids = append(ids, o.ID())
		return true
	})
	return ids
}

func TestPriceLevel_UpsertAppendsInArrivalOrder(t *testing.T) {
	pl := NewPriceLevel(Buy, fpdecimal.FromFloat(100.0))

	pl.Upsert(mustOrder(t, 1, Buy, 100.0, 600))
	pl.Upsert(mustOrder(t, 2, Buy, 100.0, 400))
	pl.Upsert(mustOrder(t, 3, Buy, 100.0, 250))

	assert.Equal(t, []uint64{1, 2, 3}, levelIDs(pl))
	assert.Equal(t, int64(1250), pl.TotalSize())
	assert.Equal(t, 3, pl.Len())
}

func TestPriceLevel_UpsertReplaceKeepsPosition(t *testing.T) {
	pl := NewPriceLevel(Buy, fpdecimal.FromFloat(100.0))

	pl.Upsert(mustOrder(t, 1, Buy, 100.0, 600))
	pl.Upsert(mustOrder(t, 2, Buy, 100.0, 400))
	pl.Upsert(mustOrder(t, 3, Buy, 100.0, 250))

	// Replacing the middle order must not move it to the back.
	pl.Upsert(mustOrder(t, 2, Buy, 100.0, 50))

	assert.Equal(t, []uint64{1, 2, 3}, levelIDs(pl))
	assert.Equal(t, int64(900), pl.TotalSize())

	got, ok := pl.Get(2)
	require.True(t, ok)
	assert.Equal(t, int64(50), got.Size())
}

func TestPriceLevel_RemoveAdjustsAggregate(t *testing.T) {
	pl := NewPriceLevel(Sell, fpdecimal.FromFloat(50.0))

	pl.Upsert(mustOrder(t, 1, Sell, 50.0, 100))
	pl.Upsert(mustOrder(t, 2, Sell, 50.0, 150))

	removed, ok := pl.Remove(1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), removed.ID())
	assert.Equal(t, int64(150), pl.TotalSize())
	assert.Equal(t, []uint64{2}, levelIDs(pl))

	// Removing an unknown id is an ordinary miss, not an error.
	_, ok = pl.Remove(99)
	assert.False(t, ok)

	_, ok = pl.Remove(2)
	require.True(t, ok)
	assert.True(t, pl.Empty())
	assert.Equal(t, int64(0), pl.TotalSize())
}

func TestPriceLevel_RemoveHeadAndTail(t *testing.T) {
	pl := NewPriceLevel(Buy, fpdecimal.FromFloat(10.0))

	for id := uint64(1); id <= 4; id++ {
		pl.Upsert(mustOrder(t, id, Buy, 10.0, 10))
	}

	_, ok := pl.Remove(1)
	require.True(t, ok)
	_, ok = pl.Remove(4)
	require.True(t, ok)

	assert.Equal(t, []uint64{2, 3}, levelIDs(pl))

	pl.Upsert(mustOrder(t, 5, Buy, 10.0, 10))
	assert.Equal(t, []uint64{2, 3, 5}, levelIDs(pl))
}

func TestPriceLevel_GetHasNoSideEffects(t *testing.T) {
	pl := NewPriceLevel(Buy, fpdecimal.FromFloat(10.0))
	pl.Upsert(mustOrder(t, 7, Buy, 10.0, 30))

	got, ok := pl.Get(7)
	require.True(t, ok)
	assert.Equal(t, int64(30), got.Size())

	_, ok = pl.Get(8)
	assert.False(t, ok)

	assert.Equal(t, 1, pl.Len())
	assert.Equal(t, int64(30), pl.TotalSize())
}

func TestPriceLevel_EachStopsEarly(t *testing.T) {
	pl := NewPriceLevel(Buy, fpdecimal.FromFloat(10.0))
	for id := uint64(1); id <= 5; id++ {
		pl.Upsert(mustOrder(t, id, Buy, 10.0, 1))
	}

	var seen int
	pl.Each(func(o Order) bool {
		seen++
		return seen < 2
	})
	assert.Equal(t, 2, seen)
}

func TestPriceLevel_OrdersIsSnapshot(t *testing.T) {
	pl := NewPriceLevel(Buy, fpdecimal.FromFloat(10.0))
	pl.Upsert(mustOrder(t, 1, Buy, 10.0, 5))

	snapshot := pl.Orders()
	pl.Upsert(mustOrder(t, 2, Buy, 10.0, 6))

	assert.Len(t, snapshot, 1)
	assert.Equal(t, uint64(1), snapshot[0].ID())
}

package book

import (
	"math/rand"
	"testing"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addOrder(t *testing.T, b *Book, id uint64, side Side, price float64, size int64) {
	t.Helper()
	require.NoError(t, b.Add(mustOrder(t, id, side, price, size)))
}

func TestBook_BidLevels(t *testing.T) {
	b := NewBook()

	addOrder(t, b, 1, Buy, 60.6, 600)
	addOrder(t, b, 2, Buy, 60.6, 400)
	addOrder(t, b, 3, Buy, 50.6, 200)

	price, ok, err := b.PriceAtLevel(Buy, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, price.Equal(fpdecimal.FromFloat(60.6)))

	size, err := b.SizeAtLevel(Buy, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), size)

	price, ok, err = b.PriceAtLevel(Buy, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, price.Equal(fpdecimal.FromFloat(50.6)))

	size, err = b.SizeAtLevel(Buy, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(200), size)

	// BestPrice is the level-1 shortcut.
	best, ok, err := b.BestPrice(Buy)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, best.Equal(fpdecimal.FromFloat(60.6)))
}

func TestBook_AskLevels(t *testing.T) {
	b := NewBook()

	addOrder(t, b, 1, Sell, 50.0, 100)
	addOrder(t, b, 2, Sell, 50.0, 150)
	addOrder(t, b, 3, Sell, 60.0, 200)

	// Best ask is the LOWEST price.
	price, ok, err := b.PriceAtLevel(Sell, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, price.Equal(fpdecimal.FromFloat(50.0)))

	size, err := b.SizeAtLevel(Sell, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(250), size)

	price, ok, err = b.PriceAtLevel(Sell, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, price.Equal(fpdecimal.FromFloat(60.0)))

	orders, err := b.OrdersBySide(Sell)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, uint64(1), orders[0].ID())
	assert.Equal(t, uint64(2), orders[1].ID())
	assert.Equal(t, uint64(3), orders[2].ID())
}

func TestBook_SideOrderingProperties(t *testing.T) {
	// Each side is checked independently: a book that inverts one side's
	// priority can still pass fixtures whose prices arrive pre-sorted.
	rng := rand.New(rand.NewSource(42))
	b := NewBook()

	id := uint64(1)
	for i := 0; i < 500; i++ {
		price := float64(rng.Intn(200))/10.0 + 1.0
		side := Buy
		if rng.Intn(2) == 0 {
			side = Sell
		}
		addOrder(t, b, id, side, price, int64(rng.Intn(1000)+1))
		id++
	}

	bids, err := b.OrdersBySide(Buy)
	require.NoError(t, err)
	for i := 1; i < len(bids); i++ {
		prev, cur := bids[i-1], bids[i]
		assert.False(t, cur.Price().GreaterThan(prev.Price()),
			"bid prices must be non-increasing: %s before %s", prev.Price(), cur.Price())
		if cur.Price().Equal(prev.Price()) {
			assert.Less(t, prev.ID(), cur.ID(), "arrival order within a bid level")
		}
	}

	asks, err := b.OrdersBySide(Sell)
	require.NoError(t, err)
	for i := 1; i < len(asks); i++ {
		prev, cur := asks[i-1], asks[i]
		assert.False(t, cur.Price().LessThan(prev.Price()),
			"ask prices must be non-decreasing: %s before %s", prev.Price(), cur.Price())
		if cur.Price().Equal(prev.Price()) {
			assert.Less(t, prev.ID(), cur.ID(), "arrival order within an ask level")
		}
	}

	assert.Equal(t, len(bids)+len(asks), b.Len())
}

func TestBook_AggregateInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := NewBook()

	live := make([]uint64, 0)
	id := uint64(1)
	for i := 0; i < 2000; i++ {
		switch {
		case len(live) > 0 && rng.Intn(10) < 4:
			victim := live[rng.Intn(len(live))]
			b.Remove(victim)
			for j, v := range live {
				if v == victim {
					live = append(live[:j], live[j+1:]...)
					break
				}
			}
		case len(live) > 0 && rng.Intn(10) < 2:
			_, _, err := b.UpdateSize(live[rng.Intn(len(live))], int64(rng.Intn(500)))
			require.NoError(t, err)
		default:
			side := Buy
			if rng.Intn(2) == 0 {
				side = Sell
			}
			price := float64(rng.Intn(50))/10.0 + 1.0
			addOrder(t, b, id, side, price, int64(rng.Intn(300)))
			live = append(live, id)
			id++
		}
	}

	// Every level's reported aggregate must equal the sum of its orders.
	for _, side := range []Side{Buy, Sell} {
		orders, err := b.OrdersBySide(side)
		require.NoError(t, err)

		sumByPrice := make(map[string]int64)
		for _, o := range orders {
			sumByPrice[o.Price().String()] += o.Size()
		}

		levels, err := b.Levels(side)
		require.NoError(t, err)
		for lvl := 1; lvl <= levels; lvl++ {
			price, ok, err := b.PriceAtLevel(side, lvl)
			require.NoError(t, err)
			require.True(t, ok)

			size, err := b.SizeAtLevel(side, lvl)
			require.NoError(t, err)
			assert.Equal(t, sumByPrice[price.String()], size,
				"aggregate mismatch at %s level %d", side, lvl)
		}
	}
}

func TestBook_RemoveIsIdempotentlyAbsent(t *testing.T) {
	b := NewBook()
	addOrder(t, b, 1, Buy, 10.0, 100)

	removed, ok := b.Remove(1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), removed.ID())
	assert.Equal(t, int64(100), removed.Size())

	_, ok = b.Remove(1)
	assert.False(t, ok)

	_, ok, err := b.UpdateSize(1, 50)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBook_RemoveCompactsEmptyLevels(t *testing.T) {
	b := NewBook()
	addOrder(t, b, 1, Buy, 10.0, 100)

	_, ok := b.Remove(1)
	require.True(t, ok)

	size, err := b.SizeAtLevel(Buy, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	_, ok, err = b.PriceAtLevel(Buy, 1)
	require.NoError(t, err)
	assert.False(t, ok, "empty level must not be enumerable")

	levels, err := b.Levels(Buy)
	require.NoError(t, err)
	assert.Equal(t, 0, levels)
}

func TestBook_LevelsCloseRanksAfterRemoval(t *testing.T) {
	b := NewBook()
	addOrder(t, b, 1, Sell, 50.0, 100)
	addOrder(t, b, 2, Sell, 55.0, 150)
	addOrder(t, b, 3, Sell, 60.0, 200)

	// Dropping the middle level renumbers the one below it.
	_, ok := b.Remove(2)
	require.True(t, ok)

	price, ok, err := b.PriceAtLevel(Sell, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, price.Equal(fpdecimal.FromFloat(60.0)))

	_, ok, err = b.PriceAtLevel(Sell, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBook_UpdateSizePreservesTimePriority(t *testing.T) {
	b := NewBook()
	addOrder(t, b, 1, Buy, 60.6, 600)
	addOrder(t, b, 2, Buy, 60.6, 400)
	addOrder(t, b, 3, Buy, 60.6, 200)

	prior, ok, err := b.UpdateSize(2, 1000)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(400), prior.Size(), "UpdateSize returns the pre-update order")

	orders, err := b.OrdersBySide(Buy)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, uint64(1), orders[0].ID())
	assert.Equal(t, uint64(2), orders[1].ID())
	assert.Equal(t, uint64(3), orders[2].ID())
	assert.Equal(t, int64(1000), orders[1].Size())

	size, err := b.SizeAtLevel(Buy, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), size)
}

func TestBook_UpdateSizeZeroKeepsOrderResting(t *testing.T) {
	b := NewBook()
	addOrder(t, b, 1, Sell, 50.0, 100)
	addOrder(t, b, 2, Sell, 50.0, 150)

	_, ok, err := b.UpdateSize(1, 0)
	require.NoError(t, err)
	require.True(t, ok)

	// Zero size is a valid resting state; only Remove evicts.
	orders, err := b.OrdersBySide(Sell)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, uint64(1), orders[0].ID())
	assert.Equal(t, int64(0), orders[0].Size())

	size, err := b.SizeAtLevel(Sell, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(150), size)
}

func TestBook_UpdateSizeRejectsNegative(t *testing.T) {
	b := NewBook()
	addOrder(t, b, 1, Buy, 10.0, 100)

	_, _, err := b.UpdateSize(1, -5)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestBook_AddRejectsRestingDuplicate(t *testing.T) {
	b := NewBook()
	addOrder(t, b, 1, Buy, 10.0, 100)

	// Same id at the same price.
	err := b.Add(mustOrder(t, 1, Buy, 10.0, 50))
	assert.ErrorIs(t, err, ErrDuplicateID)

	// Same id at a different price and side.
	err = b.Add(mustOrder(t, 1, Sell, 12.0, 50))
	assert.ErrorIs(t, err, ErrDuplicateID)

	// The resting order is untouched by the rejected adds.
	orders, err := b.OrdersBySide(Buy)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(100), orders[0].Size())

	// Once removed, the id may be reused.
	_, ok := b.Remove(1)
	require.True(t, ok)
	assert.NoError(t, b.Add(mustOrder(t, 1, Sell, 12.0, 50)))
}

func TestBook_Validation(t *testing.T) {
	b := NewBook()

	err := b.Add(Order{})
	assert.ErrorIs(t, err, ErrInvalidOrderID)

	err = b.Add(Order{id: 1, side: Side(42), price: fpdecimal.FromFloat(1.0), size: 1})
	assert.ErrorIs(t, err, ErrInvalidSide)

	_, _, err = b.PriceAtLevel(Side(42), 1)
	assert.ErrorIs(t, err, ErrInvalidSide)

	_, _, err = b.PriceAtLevel(Buy, 0)
	assert.ErrorIs(t, err, ErrInvalidLevel)

	_, err = b.SizeAtLevel(Buy, -1)
	assert.ErrorIs(t, err, ErrInvalidLevel)

	_, err = b.OrdersBySide(Side(42))
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestBook_OrdersBySideIsSnapshot(t *testing.T) {
	b := NewBook()
	addOrder(t, b, 1, Buy, 10.0, 100)
	addOrder(t, b, 2, Buy, 11.0, 200)

	snapshot, err := b.OrdersBySide(Buy)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)

	_, ok := b.Remove(2)
	require.True(t, ok)
	_, _, err = b.UpdateSize(1, 5)
	require.NoError(t, err)

	// The handed-out sequence is unaffected by later mutation.
	assert.Equal(t, uint64(2), snapshot[0].ID())
	assert.Equal(t, int64(200), snapshot[0].Size())
	assert.Equal(t, int64(100), snapshot[1].Size())
}

func TestBook_Depth(t *testing.T) {
	b := NewBook()
	addOrder(t, b, 1, Sell, 50.0, 100)
	addOrder(t, b, 2, Sell, 50.0, 150)
	addOrder(t, b, 3, Sell, 60.0, 200)
	addOrder(t, b, 4, Sell, 70.0, 300)

	ladder, err := b.Depth(Sell, 2)
	require.NoError(t, err)
	require.Len(t, ladder, 2)
	assert.True(t, ladder[0].Price.Equal(fpdecimal.FromFloat(50.0)))
	assert.Equal(t, int64(250), ladder[0].Size)
	assert.Equal(t, 2, ladder[0].Orders)
	assert.True(t, ladder[1].Price.Equal(fpdecimal.FromFloat(60.0)))

	full, err := b.Depth(Sell, 0)
	require.NoError(t, err)
	assert.Len(t, full, 3)
}

func TestBook_EqualPricesOnBothSides(t *testing.T) {
	// The two side indices are independent; the same price may rest on both.
	b := NewBook()
	addOrder(t, b, 1, Buy, 50.0, 100)
	addOrder(t, b, 2, Sell, 50.0, 200)

	bidSize, err := b.SizeAtLevel(Buy, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bidSize)

	askSize, err := b.SizeAtLevel(Sell, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(200), askSize)
}

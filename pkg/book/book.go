package book

import (
	"fmt"
	"strings"
	"sync"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/tidwall/btree"
)

// LevelSnapshot is one rung of a depth ladder: a price, the aggregate size
// resting there and the number of orders contributing to it.
type LevelSnapshot struct {
	Price  fpdecimal.Decimal
	Size   int64
	Orders int
}

// Book is a price-time-priority order book for a single instrument. Each
// side keeps its levels in a btree ordered best-first (bids by descending
// price, asks by ascending price); a flat id index routes cancels and size
// updates to the owning level in O(1) regardless of side.
//
// The book is single-writer by design. One mutex wraps every entry point,
// mutating and reading alike, so a reader never observes a level whose
// queue and aggregate disagree.
type Book struct {
	mu        sync.Mutex
	bids      *btree.BTreeG[*PriceLevel]
	asks      *btree.BTreeG[*PriceLevel]
	levelByID map[uint64]*PriceLevel
}

// NewBook creates an empty Book.
func NewBook() *Book {
	// Bids sort highest price first so that Scan walks best-first.
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.price.GreaterThan(b.price)
	})
	// Asks sort lowest price first.
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.price.LessThan(b.price)
	})

	return &Book{
		bids:      bids,
		asks:      asks,
		levelByID: make(map[uint64]*PriceLevel),
	}
}

// Add inserts a new resting order. The level for the order's price is
// created on first use. An id that already rests anywhere in the book is
// rejected with ErrDuplicateID; the in-place path for size changes is
// UpdateSize.
func (b *Book) Add(order Order) error {
	if order.ID() == 0 {
		return ErrInvalidOrderID
	}

	side, err := b.sideIndex(order.Side())
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.levelByID[order.ID()]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateID, order.ID())
	}

	probe := &PriceLevel{price: order.Price()}
	level, ok := side.GetMut(probe)
	if !ok {
		level = NewPriceLevel(order.Side(), order.Price())
		side.Set(level)
	}

	level.Upsert(order)
	b.levelByID[order.ID()] = level
	return nil
}

// Remove detaches the order with the given id from the book and returns it.
// An unknown id is an ordinary outcome, reported as (zero, false). Emptied
// levels are deleted from their side index eagerly so level positions are
// never skewed by hollow levels.
func (b *Book) Remove(id uint64) (Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	level, ok := b.levelByID[id]
	if !ok {
		return Order{}, false
	}

	order, _ := level.Remove(id)
	delete(b.levelByID, id)

	if level.Empty() {
		side, _ := b.sideIndex(level.Side())
		side.Delete(level)
	}

	return order, true
}

// UpdateSize replaces the resting size of the order with the given id,
// keeping its time priority. The returned order is the pre-update value so
// callers can compute deltas; ok is false when the id is not resting.
// A size of zero is a valid resting state and does not remove the order.
func (b *Book) UpdateSize(id uint64, size int64) (Order, bool, error) {
	if size < 0 {
		return Order{}, false, ErrInvalidSize
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	level, ok := b.levelByID[id]
	if !ok {
		return Order{}, false, nil
	}

	prior, _ := level.Get(id)
	level.Upsert(prior.WithSize(size))
	return prior, true, nil
}

// PriceAtLevel returns the price at the Nth best level of the side, where
// level 1 is the best bid or best ask. ok is false when fewer than level
// levels rest on that side. level < 1 is a caller error.
func (b *Book) PriceAtLevel(side Side, level int) (fpdecimal.Decimal, bool, error) {
	index, err := b.sideIndex(side)
	if err != nil {
		return fpdecimal.Zero, false, err
	}
	if level < 1 {
		return fpdecimal.Zero, false, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	pl := levelAt(index, level)
	if pl == nil {
		return fpdecimal.Zero, false, nil
	}
	return pl.price, true, nil
}

// SizeAtLevel returns the aggregate size at the Nth best level of the side,
// or 0 when the level does not exist. level < 1 is a caller error.
func (b *Book) SizeAtLevel(side Side, level int) (int64, error) {
	index, err := b.sideIndex(side)
	if err != nil {
		return 0, err
	}
	if level < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	pl := levelAt(index, level)
	if pl == nil {
		return 0, nil
	}
	return pl.totalSize, nil
}

// BestPrice returns the level-1 price for the side.
func (b *Book) BestPrice(side Side) (fpdecimal.Decimal, bool, error) {
	return b.PriceAtLevel(side, 1)
}

// OrdersBySide returns every order resting on the side, best level first and
// arrival order within each level. The slice is an independent snapshot:
// later mutation of the book does not change it.
func (b *Book) OrdersBySide(side Side) ([]Order, error) {
	index, err := b.sideIndex(side)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	orders := make([]Order, 0, len(b.levelByID))
	index.Scan(func(pl *PriceLevel) bool {
		pl.Each(func(o Order) bool {
			orders = append(orders, o)
			return true
		})
		return true
	})

	return orders, nil
}

// Depth returns up to maxLevels rungs of the side's ladder, best level
// first. maxLevels <= 0 means the whole side.
func (b *Book) Depth(side Side, maxLevels int) ([]LevelSnapshot, error) {
	index, err := b.sideIndex(side)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ladder := make([]LevelSnapshot, 0, index.Len())
	index.Scan(func(pl *PriceLevel) bool {
		ladder = append(ladder, LevelSnapshot{
			Price:  pl.price,
			Size:   pl.totalSize,
			Orders: pl.Len(),
		})
		return maxLevels <= 0 || len(ladder) < maxLevels
	})

	return ladder, nil
}

// Len returns the number of orders resting in the book, both sides counted.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.levelByID)
}

// Levels returns the number of distinct price levels on the side.
func (b *Book) Levels(side Side) (int, error) {
	index, err := b.sideIndex(side)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return index.Len(), nil
}

// String implements fmt.Stringer interface
func (b *Book) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	builder := strings.Builder{}

	builder.WriteString("Ask:")
	b.asks.Scan(func(pl *PriceLevel) bool {
		builder.WriteString(fmt.Sprintf("\n%s -> size: %d orders: %d", pl.price.String(), pl.totalSize, pl.Len()))
		return true
	})
	builder.WriteString("\nBid:")
	b.bids.Scan(func(pl *PriceLevel) bool {
		builder.WriteString(fmt.Sprintf("\n%s -> size: %d orders: %d", pl.price.String(), pl.totalSize, pl.Len()))
		return true
	})
	builder.WriteString("\n")

	return builder.String()
}

// sideIndex resolves the side tag to its level index.
func (b *Book) sideIndex(side Side) (*btree.BTreeG[*PriceLevel], error) {
	switch side {
	case Buy:
		return b.bids, nil
	case Sell:
		return b.asks, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, int(side))
	}
}

// levelAt walks the index best-first and returns the Nth level, counting
// from 1, or nil when the side is shallower than that. Levels are few
// relative to orders, so the O(level) walk is deliberate.
func levelAt(index *btree.BTreeG[*PriceLevel], level int) *PriceLevel {
	depth := 0
	var found *PriceLevel
	index.Scan(func(pl *PriceLevel) bool {
		depth++
		if depth == level {
			found = pl
			return false
		}
		return true
	})
	return found
}

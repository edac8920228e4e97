package book

import (
	"github.com/nikolaydubina/fpdecimal"
)

// levelEntry is a node in a price level's arrival-order list.
type levelEntry struct {
	order Order
	prev  *levelEntry
	next  *levelEntry
}

// PriceLevel holds every order resting at one price on one side, in arrival
// order, plus a running aggregate size. Lookup, removal and replace-in-place
// by id are O(1); a replace under an existing id keeps the entry's position
// in the queue.
type PriceLevel struct {
	price     fpdecimal.Decimal
	side      Side
	head      *levelEntry
	tail      *levelEntry
	entryByID map[uint64]*levelEntry
	totalSize int64
}

// NewPriceLevel creates an empty level for the given side and price.
func NewPriceLevel(side Side, price fpdecimal.Decimal) *PriceLevel {
	return &PriceLevel{
		price:     price,
		side:      side,
		entryByID: make(map[uint64]*levelEntry),
	}
}

// Price returns the level's price
func (pl *PriceLevel) Price() fpdecimal.Decimal {
	return pl.price
}

// Side returns the level's side
func (pl *PriceLevel) Side() Side {
	return pl.side
}

// TotalSize returns the aggregate resting size at this level
func (pl *PriceLevel) TotalSize() int64 {
	return pl.totalSize
}

// Len returns the number of resting orders at this level
func (pl *PriceLevel) Len() int {
	return len(pl.entryByID)
}

// Empty reports whether no orders rest at this level
func (pl *PriceLevel) Empty() bool {
	return len(pl.entryByID) == 0
}

// Upsert appends the order to the back of the queue, or, if the id is
// already present, replaces the value in place. The aggregate is adjusted
// either way and a replace never changes arrival order.
func (pl *PriceLevel) Upsert(order Order) {
	if e, ok := pl.entryByID[order.ID()]; ok {
		pl.totalSize -= e.order.Size()
		e.order = order
		pl.totalSize += order.Size()
		return
	}

	e := &levelEntry{order: order}
	if pl.tail == nil {
		pl.head = e
		pl.tail = e
	} else {
		e.prev = pl.tail
		pl.tail.next = e
		pl.tail = e
	}

	pl.entryByID[order.ID()] = e
	pl.totalSize += order.Size()
}

// Remove detaches the order with the given id and returns it. The second
// return is false when the id does not rest here.
func (pl *PriceLevel) Remove(id uint64) (Order, bool) {
	e, ok := pl.entryByID[id]
	if !ok {
		return Order{}, false
	}

	if e.prev != nil {
		e.prev.next = e.next
	} else {
		pl.head = e.next
	}

	if e.next != nil {
		e.next.prev = e.prev
	} else {
		pl.tail = e.prev
	}

	delete(pl.entryByID, id)
	pl.totalSize -= e.order.Size()
	return e.order, true
}

// Get returns the resting order with the given id without side effects.
func (pl *PriceLevel) Get(id uint64) (Order, bool) {
	e, ok := pl.entryByID[id]
	if !ok {
		return Order{}, false
	}
	return e.order, true
}

// Each walks the level in arrival order without allocating. The walk stops
// early when fn returns false.
func (pl *PriceLevel) Each(fn func(Order) bool) {
	for e := pl.head; e != nil; e = e.next {
		if !fn(e.order) {
			return
		}
	}
}

// Orders returns a snapshot of the level in arrival order. The slice does
// not alias level storage.
func (pl *PriceLevel) Orders() []Order {
	orders := make([]Order, 0, len(pl.entryByID))
	for e := pl.head; e != nil; e = e.next {
		orders = append(orders, e.order)
	}
	return orders
}

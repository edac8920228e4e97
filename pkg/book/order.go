package book

import (
	"encoding/json"
	"fmt"

	"github.com/nikolaydubina/fpdecimal"
)

// Side represents buy or sell side of the order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// valid reports whether s is one of the two recognized sides.
func (s Side) valid() bool {
	return s == Buy || s == Sell
}

// ParseSide converts a boundary side tag ("B"/"BUY" or "S"/"SELL") to a Side.
// Any other tag is a caller error, never a silent default.
func ParseSide(tag string) (Side, error) {
	switch tag {
	case "B", "BUY":
		return Buy, nil
	case "S", "SELL":
		return Sell, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, tag)
	}
}

// Order is an immutable resting order. A size change produces a new value
// via WithSize; identity and book position belong to the ID.
type Order struct {
	id    uint64
	side  Side
	price fpdecimal.Decimal
	size  int64
}

// NewOrder creates an Order, validating the boundary contract: id must be
// positive, side must be a recognized tag, size must be non-negative and
// price must not be negative.
func NewOrder(id uint64, side Side, price fpdecimal.Decimal, size int64) (Order, error) {
	if id == 0 {
		return Order{}, ErrInvalidOrderID
	}

	if !side.valid() {
		return Order{}, ErrInvalidSide
	}

	if price.LessThan(fpdecimal.Zero) {
		return Order{}, ErrInvalidPrice
	}

	if size < 0 {
		return Order{}, ErrInvalidSize
	}

	return Order{
		id:    id,
		side:  side,
		price: price,
		size:  size,
	}, nil
}

// ID returns the caller-assigned order id
func (o Order) ID() uint64 {
	return o.id
}

// Side returns side of the Order
func (o Order) Side() Side {
	return o.side
}

// Price returns Price field copy
func (o Order) Price() fpdecimal.Decimal {
	return o.price
}

// Size returns Size field copy
func (o Order) Size() int64 {
	return o.size
}

// WithSize returns a copy of the order carrying the new size. ID, side and
// price are unchanged, so the copy keeps the original's book position.
func (o Order) WithSize(size int64) Order {
	o.size = size
	return o
}

// MarshalJSON implements custom JSON marshaling for Order
func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    uint64 `json:"id"`
		Side  string `json:"side"`
		Price string `json:"price"`
		Size  int64  `json:"size"`
	}{
		ID:    o.id,
		Side:  o.side.String(),
		Price: o.price.String(),
		Size:  o.size,
	})
}

// String implements fmt.Stringer interface
func (o Order) String() string {
	j, _ := o.MarshalJSON()
	return string(j)
}

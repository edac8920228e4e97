package book

import "errors"

// Errors
var (
	ErrInvalidSide    = errors.New("invalid side")
	ErrInvalidLevel   = errors.New("invalid level")
	ErrInvalidSize    = errors.New("invalid size")
	ErrInvalidPrice   = errors.New("invalid price")
	ErrInvalidOrderID = errors.New("invalid order id")
	ErrDuplicateID    = errors.New("order id already resting")
)

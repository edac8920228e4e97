package feed

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikolaydubina/fpdecimal"

	"github.com/erain9/depthbook/pkg/book"
)

// Action identifies what a command does to a book.
type Action string

// Command actions
const (
	ActionAdd    Action = "add"
	ActionCancel Action = "cancel"
	ActionResize Action = "resize"
)

// Decode errors
var (
	ErrBadCommand = errors.New("malformed command")
)

// Command is the inbound wire format for one book operation. Side travels
// as a boundary tag ("B"/"S") and price as a decimal string; both are
// parsed and validated here, before anything reaches a book.
type Command struct {
	Book    string `json:"book"`
	Action  Action `json:"action"`
	OrderID uint64 `json:"order_id"`
	Side    string `json:"side,omitempty"`
	Price   string `json:"price,omitempty"`
	Size    int64  `json:"size,omitempty"`
}

// Decode parses and validates a raw command payload.
func Decode(data []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCommand, err)
	}

	if cmd.Book == "" {
		return nil, fmt.Errorf("%w: missing book", ErrBadCommand)
	}
	if cmd.OrderID == 0 {
		return nil, fmt.Errorf("%w: missing order id", ErrBadCommand)
	}

	switch cmd.Action {
	case ActionAdd:
		if _, err := cmd.Order(); err != nil {
			return nil, err
		}
	case ActionResize:
		if cmd.Size < 0 {
			return nil, fmt.Errorf("%w: negative size", ErrBadCommand)
		}
	case ActionCancel:
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrBadCommand, cmd.Action)
	}

	return &cmd, nil
}

// Order builds the book order an add command describes.
func (c *Command) Order() (book.Order, error) {
	side, err := book.ParseSide(c.Side)
	if err != nil {
		return book.Order{}, err
	}

	price, err := fpdecimal.FromString(c.Price)
	if err != nil {
		return book.Order{}, fmt.Errorf("%w: bad price %q", ErrBadCommand, c.Price)
	}

	return book.NewOrder(c.OrderID, side, price, c.Size)
}

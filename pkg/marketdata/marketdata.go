package marketdata

import "context"

// Publisher defines an interface for publishing depth updates.
// This keeps the server package decoupled from specific transports
// like Kafka in the queue package or Redis.
type Publisher interface {
	PublishDepth(ctx context.Context, depth *DepthMessage) error
	Close() error
}

// DepthMessage is the depth snapshot published after a book mutation.
// Prices and sizes travel as strings so consumers are not tied to the
// book's decimal representation.
type DepthMessage struct {
	Book      string       `json:"book"`
	Sequence  uint64       `json:"sequence"`
	Timestamp int64        `json:"timestamp"`
	Bids      []DepthLevel `json:"bids"`
	Asks      []DepthLevel `json:"asks"`
}

// DepthLevel is one rung of a published ladder.
type DepthLevel struct {
	Price  string `json:"price"`
	Size   int64  `json:"size"`
	Orders int    `json:"orders"`
}

package feeder

import (
	"context"

	"github.com/erain9/depthbook/pkg/feed"
)

// PriceFetcher defines the interface for fetching current market prices
type PriceFetcher interface {
	// FetchPrice returns the current market price for the configured symbol
	FetchPrice(ctx context.Context) (float64, error)
	// Close releases any resources held by the price fetcher
	Close() error
}

// CommandSender defines the interface for publishing order commands
type CommandSender interface {
	Send(ctx context.Context, cmd *feed.Command) error
	Close() error
}

// QuoteStrategy defines the interface for quote generation strategies
type QuoteStrategy interface {
	// Quotes calculates the add commands to be placed around the current price
	Quotes(ctx context.Context, currentPrice float64) ([]*feed.Command, error)
}

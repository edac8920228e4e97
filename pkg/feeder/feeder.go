package feeder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/erain9/depthbook/pkg/feed"
)

// Feeder periodically re-quotes a book: it fetches a reference price,
// cancels the previous round of quotes and places a fresh ladder.
type Feeder struct {
	cfg          *Config
	logger       *slog.Logger
	sender       CommandSender
	priceFetcher PriceFetcher
	strategy     QuoteStrategy
	activeOrders sync.Map // map[uint64]bool - tracks resting quote ids
	stopCh       chan struct{}
	wg           sync.WaitGroup
}

// NewFeeder creates a new feeder service
func NewFeeder(cfg *Config, logger *slog.Logger, sender CommandSender, priceFetcher PriceFetcher, strategy QuoteStrategy) *Feeder {
	return &Feeder{
		cfg:          cfg,
		logger:       logger.With("component", "Feeder"),
		sender:       sender,
		priceFetcher: priceFetcher,
		strategy:     strategy,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the quoting process
func (f *Feeder) Start(ctx context.Context) error {
	f.logger.Info("Starting feeder service",
		"book", f.cfg.Book,
		"update_interval", f.cfg.UpdateInterval)

	f.wg.Add(1)
	go f.run(ctx)

	return nil
}

// Stop gracefully shuts down the feeder
func (f *Feeder) Stop(ctx context.Context) error {
	f.logger.Info("Stopping feeder service")

	close(f.stopCh)

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		f.logger.Info("Feeder stopped successfully")
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for feeder to stop: %w", ctx.Err())
	}

	// Pull the remaining quotes so the book is left clean.
	if err := f.cancelAllOrders(ctx); err != nil {
		f.logger.Error("Failed to cancel all orders during shutdown", "error", err)
		return fmt.Errorf("failed to cancel orders during shutdown: %w", err)
	}

	return nil
}

// run is the main quoting loop
func (f *Feeder) run(ctx context.Context) {
	defer f.wg.Done()

	ticker := time.NewTicker(f.cfg.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("Context cancelled, stopping feeder loop")
			return
		case <-f.stopCh:
			f.logger.Info("Stop signal received, stopping feeder loop")
			return
		case <-ticker.C:
			if err := f.updateQuotes(ctx); err != nil {
				f.logger.Error("Failed to update quotes", "error", err)
				// Continue running despite errors
			}
		}
	}
}

// updateQuotes performs a single re-quote iteration
func (f *Feeder) updateQuotes(ctx context.Context) error {
	price, err := f.priceFetcher.FetchPrice(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch price: %w", err)
	}

	commands, err := f.strategy.Quotes(ctx, price)
	if err != nil {
		return fmt.Errorf("failed to calculate quotes: %w", err)
	}

	if err := f.cancelAllOrders(ctx); err != nil {
		return fmt.Errorf("failed to cancel existing quotes: %w", err)
	}

	for _, cmd := range commands {
		if err := f.sender.Send(ctx, cmd); err != nil {
			f.logger.Error("Failed to place quote",
				"order_id", cmd.OrderID,
				"side", cmd.Side,
				"price", cmd.Price,
				"error", err)
			continue
		}

		f.activeOrders.Store(cmd.OrderID, true)

		f.logger.Debug("Successfully placed quote",
			"order_id", cmd.OrderID,
			"side", cmd.Side,
			"price", cmd.Price)
	}

	return nil
}

// cancelAllOrders sends a cancel for every tracked quote
func (f *Feeder) cancelAllOrders(ctx context.Context) error {
	var lastErr error
	f.activeOrders.Range(func(key, _ interface{}) bool {
		orderID := key.(uint64)
		cmd := &feed.Command{
			Book:    f.cfg.Book,
			Action:  feed.ActionCancel,
			OrderID: orderID,
		}

		if err := f.sender.Send(ctx, cmd); err != nil {
			f.logger.Error("Failed to cancel quote",
				"order_id", orderID,
				"error", err)
			lastErr = err
			// Continue canceling other quotes even if one fails
			return true
		}

		f.activeOrders.Delete(orderID)
		f.logger.Debug("Successfully cancelled quote", "order_id", orderID)
		return true
	})

	return lastErr
}

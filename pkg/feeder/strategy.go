package feeder

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/erain9/depthbook/pkg/feed"
)

// LayeredSymmetricQuoting places symmetric bid/ask pairs on multiple price
// levels around the reference price.
type LayeredSymmetricQuoting struct {
	cfg    *Config
	logger *slog.Logger
	nextID atomic.Uint64
}

// NewLayeredSymmetricQuoting creates a new LayeredSymmetricQuoting strategy
func NewLayeredSymmetricQuoting(cfg *Config, logger *slog.Logger) *LayeredSymmetricQuoting {
	s := &LayeredSymmetricQuoting{
		cfg:    cfg,
		logger: logger.With("component", "LayeredSymmetricQuoting"),
	}
	// Seed ids from the clock so restarts do not collide with orders still
	// resting from the previous run.
	s.nextID.Store(uint64(time.Now().UnixNano()))
	return s
}

// Quotes implements QuoteStrategy
func (s *LayeredSymmetricQuoting) Quotes(ctx context.Context, currentPrice float64) ([]*feed.Command, error) {
	baseHalfSpread := currentPrice * (s.cfg.BaseSpreadPercent / 2 / 100)
	priceStep := currentPrice * (s.cfg.PriceStepPercent / 100)

	commands := make([]*feed.Command, 0, s.cfg.NumLevels*2)

	for i := 1; i <= s.cfg.NumLevels; i++ {
		bidPrice := currentPrice - baseHalfSpread - float64(i-1)*priceStep
		askPrice := currentPrice + baseHalfSpread + float64(i-1)*priceStep

		// 8 decimal places, crypto tick precision
		bidPriceStr := strconv.FormatFloat(math.Round(bidPrice*1e8)/1e8, 'f', 8, 64)
		askPriceStr := strconv.FormatFloat(math.Round(askPrice*1e8)/1e8, 'f', 8, 64)

		commands = append(commands, &feed.Command{
			Book:    s.cfg.Book,
			Action:  feed.ActionAdd,
			OrderID: s.nextID.Add(1),
			Side:    "B",
			Price:   bidPriceStr,
			Size:    s.cfg.OrderSize,
		})
		commands = append(commands, &feed.Command{
			Book:    s.cfg.Book,
			Action:  feed.ActionAdd,
			OrderID: s.nextID.Add(1),
			Side:    "S",
			Price:   askPriceStr,
			Size:    s.cfg.OrderSize,
		})

		s.logger.Debug("Calculated quote pair",
			"level", i,
			"bid_price", bidPriceStr,
			"ask_price", askPriceStr,
			"size", s.cfg.OrderSize)
	}

	return commands, nil
}

package server

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/erain9/depthbook/pkg/book"
	"github.com/erain9/depthbook/pkg/feed"
	"github.com/erain9/depthbook/pkg/logging"
	"github.com/erain9/depthbook/pkg/marketdata"
	"github.com/erain9/depthbook/pkg/otel"
)

// DepthLevels is how many price levels each published snapshot carries
// per side.
const DepthLevels = 10

// BookService applies feed commands to books and publishes depth
// snapshots after every successful mutation.
type BookService struct {
	manager   *BookManager
	publisher marketdata.Publisher
	metrics   *otel.BookMetrics
	sequence  atomic.Uint64
}

// NewBookService creates a service backed by the given manager. Both
// publisher and metrics may be nil; the service then applies commands
// without publishing or recording.
func NewBookService(manager *BookManager, publisher marketdata.Publisher, metrics *otel.BookMetrics) *BookService {
	return &BookService{
		manager:   manager,
		publisher: publisher,
		metrics:   metrics,
	}
}

// Apply routes one decoded command to its book. Commands the book
// rejects come back as errors; absent-order cancels and resizes are
// no-ops and succeed without publishing.
func (s *BookService) Apply(ctx context.Context, cmd *feed.Command) error {
	logger := logging.FromContext(ctx).With().
		Str("book", cmd.Book).
		Str("action", string(cmd.Action)).
		Uint64("order_id", cmd.OrderID).
		Logger()

	b := s.manager.GetOrCreateBook(ctx, cmd.Book)

	start := time.Now()
	mutated, restingDelta, err := s.apply(b, cmd)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordRejected(ctx, cmd.Book, string(cmd.Action))
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordApply(ctx, cmd.Book, string(cmd.Action), time.Since(start))
		if restingDelta != 0 {
			s.metrics.AddRestingOrders(ctx, cmd.Book, restingDelta)
		}
	}

	if !mutated {
		logger.Debug().Msg("Command was a no-op")
		return nil
	}

	logger.Debug().Msg("Applied command")
	return s.publishDepth(ctx, cmd.Book, b)
}

func (s *BookService) apply(b *book.Book, cmd *feed.Command) (mutated bool, restingDelta int64, err error) {
	switch cmd.Action {
	case feed.ActionAdd:
		order, err := cmd.Order()
		if err != nil {
			return false, 0, err
		}
		if err := b.Add(order); err != nil {
			return false, 0, err
		}
		return true, 1, nil

	case feed.ActionCancel:
		_, removed := b.Remove(cmd.OrderID)
		if removed {
			return true, -1, nil
		}
		return false, 0, nil

	case feed.ActionResize:
		_, found, err := b.UpdateSize(cmd.OrderID, cmd.Size)
		if err != nil {
			return false, 0, err
		}
		return found, 0, nil

	default:
		return false, 0, feed.ErrBadCommand
	}
}

// publishDepth snapshots the top of both sides and hands the message to
// the publisher.
func (s *BookService) publishDepth(ctx context.Context, name string, b *book.Book) error {
	if s.publisher == nil {
		return nil
	}

	msg, err := s.Snapshot(name, b)
	if err != nil {
		return err
	}

	if err := s.publisher.PublishDepth(ctx, msg); err != nil {
		logger := logging.FromContext(ctx)
		logger.Error().Err(err).
			Str("book", name).
			Msg("Failed to publish depth")
		return err
	}
	return nil
}

// Snapshot builds a depth message for the top levels of both sides.
func (s *BookService) Snapshot(name string, b *book.Book) (*marketdata.DepthMessage, error) {
	bids, err := b.Depth(book.Buy, DepthLevels)
	if err != nil {
		return nil, err
	}
	asks, err := b.Depth(book.Sell, DepthLevels)
	if err != nil {
		return nil, err
	}

	return &marketdata.DepthMessage{
		Book:      name,
		Sequence:  s.sequence.Add(1),
		Timestamp: time.Now().UnixNano(),
		Bids:      toDepthLevels(bids),
		Asks:      toDepthLevels(asks),
	}, nil
}

func toDepthLevels(levels []book.LevelSnapshot) []marketdata.DepthLevel {
	out := make([]marketdata.DepthLevel, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, marketdata.DepthLevel{
			Price:  lvl.Price.String(),
			Size:   lvl.Size,
			Orders: lvl.Orders,
		})
	}
	return out
}

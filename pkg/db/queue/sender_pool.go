package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/erain9/depthbook/pkg/marketdata"
)

var (
	senderPool   chan marketdata.Publisher
	poolInitOnce sync.Once
	maxPoolSize  = 32
)

// initSenderPool initializes the sender pool
func initSenderPool() {
	poolInitOnce.Do(func() {
		senderPool = make(chan marketdata.Publisher, maxPoolSize)
		for i := 0; i < maxPoolSize; i++ {
			sender, err := NewQueuePublisher()
			if err != nil {
				log.Warn().Err(err).Msg("Error creating depth sender")
				continue
			}
			senderPool <- sender
		}
	})
}

// GetSender gets a sender from the pool
func GetSender() marketdata.Publisher {
	initSenderPool()

	select {
	case sender := <-senderPool:
		return sender
	default:
		log.Warn().Msg("Depth sender pool is empty")
		return nil
	}
}

// ReturnSender returns a sender to the pool
func ReturnSender(sender marketdata.Publisher) {
	if sender == nil {
		return
	}

	select {
	case senderPool <- sender:
	default:
		log.Warn().Msg("Depth sender pool is full")
		_ = sender.Close()
	}
}

// PublishDepth sends a depth snapshot using a pooled sender.
func PublishDepth(ctx context.Context, depth *marketdata.DepthMessage) error {
	sender := GetSender()
	if sender == nil {
		return fmt.Errorf("failed to get depth sender from pool")
	}
	defer ReturnSender(sender)

	if err := sender.PublishDepth(ctx, depth); err != nil {
		// Do not return a failed sender to the pool.
		_ = sender.Close()
		return err
	}

	return nil
}

// PooledPublisher adapts the sender pool to the marketdata.Publisher
// interface so callers can treat Kafka like any other depth transport.
type PooledPublisher struct{}

// NewPooledPublisher returns a publisher backed by the shared pool.
func NewPooledPublisher() *PooledPublisher {
	return &PooledPublisher{}
}

// PublishDepth sends the snapshot through a pooled sender.
func (p *PooledPublisher) PublishDepth(ctx context.Context, depth *marketdata.DepthMessage) error {
	return PublishDepth(ctx, depth)
}

// Close is a no-op; the pool outlives individual callers.
func (p *PooledPublisher) Close() error {
	return nil
}

// Ensure PooledPublisher implements Publisher
var _ marketdata.Publisher = (*PooledPublisher)(nil)

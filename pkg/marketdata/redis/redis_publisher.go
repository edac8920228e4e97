package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/erain9/depthbook/pkg/marketdata"
)

// RedisPublisher implements marketdata.Publisher on top of Redis. Each
// snapshot replaces the book's latest-depth key and is fanned out over
// pub/sub for live consumers.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher creates a publisher using the given client. prefix
// namespaces the keys of one deployment.
func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "depthbook"
	}
	return &RedisPublisher{
		client: client,
		prefix: prefix,
	}
}

// DepthKey returns the key holding the latest depth snapshot for a book.
func (p *RedisPublisher) DepthKey(book string) string {
	return fmt.Sprintf("%s:depth:%s", p.prefix, book)
}

// DepthChannel returns the pub/sub channel carrying a book's updates.
func (p *RedisPublisher) DepthChannel(book string) string {
	return fmt.Sprintf("%s:depth-updates:%s", p.prefix, book)
}

// PublishDepth stores the snapshot and notifies subscribers.
func (p *RedisPublisher) PublishDepth(ctx context.Context, depth *marketdata.DepthMessage) error {
	payload, err := json.Marshal(depth)
	if err != nil {
		return fmt.Errorf("failed to marshal depth message: %w", err)
	}

	if err := p.client.Set(ctx, p.DepthKey(depth.Book), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store depth snapshot: %w", err)
	}

	if err := p.client.Publish(ctx, p.DepthChannel(depth.Book), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish depth update: %w", err)
	}

	return nil
}

// FetchDepth reads the latest stored snapshot for a book. The bool is
// false when no snapshot has been published yet.
func (p *RedisPublisher) FetchDepth(ctx context.Context, book string) (*marketdata.DepthMessage, bool, error) {
	payload, err := p.client.Get(ctx, p.DepthKey(book)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch depth snapshot: %w", err)
	}

	var depth marketdata.DepthMessage
	if err := json.Unmarshal(payload, &depth); err != nil {
		return nil, false, fmt.Errorf("failed to decode depth snapshot: %w", err)
	}

	return &depth, true, nil
}

// Close releases the underlying client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Ensure RedisPublisher implements Publisher
var _ marketdata.Publisher = (*RedisPublisher)(nil)

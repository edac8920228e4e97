package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/erain9/depthbook/pkg/logging"
)

// Handler applies a decoded command to its destination book.
type Handler interface {
	Apply(ctx context.Context, cmd *Command) error
}

// Consumer reads order commands off Kafka and feeds them to a Handler.
// One consumer is one logical writer: commands are applied in partition
// order, which gives each book the single-writer discipline it expects.
type Consumer struct {
	reader  *kafka.Reader
	handler Handler
	logger  zerolog.Logger
}

// NewConsumer creates a consumer for the configured topic.
func NewConsumer(cfg *Config, handler Handler, logger zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})

	return &Consumer{
		reader:  reader,
		handler: handler,
		logger:  logger.With().Str("topic", cfg.Topic).Logger(),
	}
}

// Run consumes until the context is canceled. Malformed payloads and
// rejected commands are logged and skipped; they never stop the feed.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info().Msg("Starting order feed consumer")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info().Msg("Order feed consumer stopped")
				return nil
			}
			return err
		}

		cmd, err := Decode(msg.Value)
		if err != nil {
			c.logger.Warn().Err(err).
				Int64("offset", msg.Offset).
				Msg("Skipping malformed command")
			continue
		}

		// Tag downstream logs with the message's position in the feed.
		msgCtx := logging.WithRequestID(ctx, fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset))

		if err := c.handler.Apply(msgCtx, cmd); err != nil {
			c.logger.Warn().Err(err).
				Str("book", cmd.Book).
				Str("action", string(cmd.Action)).
				Uint64("order_id", cmd.OrderID).
				Msg("Command rejected")
		}
	}
}

// Close shuts down the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

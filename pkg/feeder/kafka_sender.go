package feeder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/erain9/depthbook/pkg/feed"
)

// KafkaCommandSender publishes order commands to the feed topic. Messages
// are keyed by book name so all commands for one book land on one
// partition and keep their order.
type KafkaCommandSender struct {
	writer *kafka.Writer
}

// NewKafkaCommandSender creates a new Kafka command sender
func NewKafkaCommandSender(brokerAddr, topic string) (*KafkaCommandSender, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerAddr),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &KafkaCommandSender{writer: writer}, nil
}

// Send publishes one command
func (k *KafkaCommandSender) Send(ctx context.Context, cmd *feed.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(cmd.Book),
		Value: data,
		Time:  time.Now(),
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send command to Kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka writer
func (k *KafkaCommandSender) Close() error {
	return k.writer.Close()
}

// Ensure KafkaCommandSender implements CommandSender
var _ CommandSender = (*KafkaCommandSender)(nil)

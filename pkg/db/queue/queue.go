package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/IBM/sarama"

	"github.com/erain9/depthbook/pkg/marketdata"
)

var (
	configMu   sync.RWMutex
	brokerList = "localhost:9092"
	topic      = "depthbook-depth"
)

// SetBrokerList overrides the Kafka broker address used by new senders.
func SetBrokerList(brokers string) {
	configMu.Lock()
	defer configMu.Unlock()
	brokerList = brokers
}

// SetTopic overrides the Kafka topic used by new senders.
func SetTopic(t string) {
	configMu.Lock()
	defer configMu.Unlock()
	topic = t
}

func currentConfig() (string, string) {
	configMu.RLock()
	defer configMu.RUnlock()
	return brokerList, topic
}

// QueuePublisher implements the marketdata.Publisher interface for
// publishing depth snapshots to Kafka through a sarama sync producer.
type QueuePublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewQueuePublisher creates a publisher with its own producer connection.
func NewQueuePublisher() (*QueuePublisher, error) {
	brokers, t := currentConfig()

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer([]string{brokers}, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &QueuePublisher{
		producer: producer,
		topic:    t,
	}, nil
}

// PublishDepth sends the depth snapshot to the Kafka queue. Messages are
// keyed by book name so one book's updates stay ordered within a partition.
func (q *QueuePublisher) PublishDepth(_ context.Context, depth *marketdata.DepthMessage) error {
	payload, err := json.Marshal(depth)
	if err != nil {
		return fmt.Errorf("failed to marshal depth message: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: q.topic,
		Key:   sarama.StringEncoder(depth.Book),
		Value: sarama.ByteEncoder(payload),
	}

	if _, _, err := q.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close shuts down the underlying producer.
func (q *QueuePublisher) Close() error {
	return q.producer.Close()
}

// Ensure QueuePublisher implements Publisher
var _ marketdata.Publisher = (*QueuePublisher)(nil)

package producer

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// ProduceResult holds the result of an asynchronous production
type ProduceResult struct {
	Error error
}

// Producer defines the interface for publishing placement events
type Producer interface {
	// PublishAsync sends a message to Kafka asynchronously. Returns a
	// channel that receives the result when the write completes.
	PublishAsync(ctx context.Context, key, value []byte) <-chan ProduceResult

	// Close gracefully shuts down the producer
	Close() error
}

// KafkaProducer implements the Producer interface using kafka-go
type KafkaProducer struct {
	writer *kafka.Writer
}

// Config holds Kafka producer configuration
type Config struct {
	Brokers []string
	Topic   string
}

// NewKafkaProducer creates a new KafkaProducer instance. Messages are
// keyed by canvas shard label and balanced by key hash, so events for one
// quadrant land on one Kafka partition in placement order.
func NewKafkaProducer(cfg Config) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Async:        true,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaProducer{
		writer: writer,
	}
}

// PublishAsync sends a message to Kafka asynchronously. The per-message
// result is surfaced through the returned channel so the caller can wrap
// publication in its own retry policy.
func (p *KafkaProducer) PublishAsync(ctx context.Context, key, value []byte) <-chan ProduceResult {
	resultChan := make(chan ProduceResult, 1)

	msg := kafka.Message{
		Key:   key,
		Value: value,
	}

	go func() {
		err := p.writer.WriteMessages(ctx, msg)
		resultChan <- ProduceResult{Error: err}
		close(resultChan)
	}()

	return resultChan
}

// Close gracefully shuts down the producer
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

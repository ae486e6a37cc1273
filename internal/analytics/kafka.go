// Package analytics publishes search events beyond the primary database.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/cloo-solutions/pmstd/internal/service"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes search events as JSON to a Kafka topic.
type KafkaPublisher struct {
	writer MessageWriter
	log    *zap.Logger
}

// NewKafkaPublisher creates a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}
	if log == nil {
		log = zap.NewNop()
	}
	return NewKafkaPublisherWithWriter(w, log.With(zap.String("topic", topic)))
}

func NewKafkaPublisherWithWriter(w MessageWriter, log *zap.Logger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaPublisher{writer: w, log: log}
}

// RecordSearch publishes event keyed by its search kind.
func (p *KafkaPublisher) RecordSearch(ctx context.Context, event service.SearchEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling search event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.Kind),
		Value: value,
		Time:  event.CreatedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing search event: %w", err)
	}
	p.log.Debug("search event published", zap.String("search_id", event.ID), zap.Int("value_size", len(value)))
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

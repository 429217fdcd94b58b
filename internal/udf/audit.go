package udf

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/rzpsarthak13/indexserve/internal/logging"
)

// KafkaAuditor publishes call records to a Kafka topic so call activity can
// be consumed outside the host machine. It implements AuditSink.
type KafkaAuditor struct {
	writer *kafka.Writer
	log    *logging.Logger

	mu     sync.RWMutex
	closed bool
}

// NewKafkaAuditor creates a producer for the audit topic.
func NewKafkaAuditor(brokers []string, topic string, lg *logging.Logger) (*KafkaAuditor, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	if lg == nil {
		lg = logging.Discard()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
	}

	lg.Infof("KAFKA", "audit producer ready, topic=%s brokers=%v", topic, brokers)
	return &KafkaAuditor{writer: writer, log: lg}, nil
}

// Publish sends one call record, JSON-encoded, keyed by function name.
func (a *KafkaAuditor) Publish(ctx context.Context, rec CallRecord) error {
	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return fmt.Errorf("kafka auditor is closed")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode call record: %w", err)
	}
	if err := a.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.Function),
		Value: data,
	}); err != nil {
		return fmt.Errorf("failed to publish call record: %w", err)
	}
	return nil
}

// Close shuts down the producer.
func (a *KafkaAuditor) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.writer.Close()
}

package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer we use; fakes in tests.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaOutbound publishes saved orders, keyed by order id.
type KafkaOutbound struct {
	writer messageWriter
	topic  string
}

func NewKafkaOutbound(brokers []string, topic string) *KafkaOutbound {
	return &KafkaOutbound{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func newKafkaOutboundWith(w messageWriter, topic string) *KafkaOutbound {
	return &KafkaOutbound{writer: w, topic: topic}
}

func (k *KafkaOutbound) PublishFinalized(ctx context.Context, rec *Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.ID),
		Value: b,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("order.finalized")},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka write %s: %w", k.topic, err)
	}

	log.Printf("[kafka] published order id=%s topic=%s", rec.ID, k.topic)
	return nil
}

func (k *KafkaOutbound) Close() error { return k.writer.Close() }

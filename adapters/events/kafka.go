package events

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
)

// KafkaPublisher writes change events to one topic, keyed by entity and id so
// events of a record stay ordered within a partition. Every event is flushed
// on its own; callers bound the wait with their context.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchSize:              1,
			BatchTimeout:           5 * time.Millisecond,
			WriteTimeout:           time.Second,
			MaxAttempts:            2,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Entity + ":" + event.Record.ID()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(event.Action)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

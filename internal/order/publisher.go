package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// PlacedEvent is published after an order is committed. The notifier
// consumes it and re-reads the full order from the database, so the payload
// stays small and never drifts from the persisted record.
type PlacedEvent struct {
	OrderID string `json:"order_id"`
	UserID  int64  `json:"user_id"`
}

type Publisher interface {
	PublishPlaced(ctx context.Context, event PlacedEvent) error
	Close() error
}

const PlacedTopic = "order-placed"

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  PlacedTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishPlaced(ctx context.Context, event PlacedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal placed event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID), // order_id for ordering
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write placed event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

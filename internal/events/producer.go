package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TypeOrderCreated       = "order_created"
	TypeOrderStatusChanged = "order_status_changed"
	TypeBalanceToppedUp    = "balance_topped_up"
	TypeVIPSubscribed      = "vip_subscribed"
	TypeVIPCancelled       = "vip_cancelled"
)

// Envelope wraps every published event.
type Envelope struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Producer publishes domain events to one topic. A producer built
// without brokers is a no-op, so callers never have to nil-check.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 {
		return &Producer{}
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           50 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish is best-effort: business operations log the returned error
// as a warning and carry on.
func (p *Producer) Publish(ctx context.Context, eventType, key string, payload any) error {
	if p == nil || p.writer == nil {
		return nil
	}

	env := Envelope{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", eventType, err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, kafka.Message{Key: []byte(key), Value: data}); err != nil {
		return fmt.Errorf("events: publish %s: %w", eventType, err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

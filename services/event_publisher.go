package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kendall-kelly/bistro-orders-api/models"
)

// Order event types
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published after an order change has been committed
type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        uint               `json:"orderId"`
	UserID         uint               `json:"userId"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previousStatus,omitempty"`
	TotalPrice     models.Money       `json:"totalPrice"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

// EventPublisher delivers order events to downstream consumers (kitchen display, notifications)
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
	Close() error
}

// NewOrderEvent builds an event describing order as it is now
func NewOrderEvent(eventType string, order *models.Order, previous models.OrderStatus) OrderEvent {
	return OrderEvent{
		Type:           eventType,
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalPrice:     order.TotalPrice,
		OccurredAt:     time.Now().UTC(),
	}
}

// KafkaPublisher writes order events to a Kafka topic keyed by order id,
// so all events of one order land on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// publishBatchTimeout bounds how long a synchronous write waits for more messages
// before flushing; it sits on the request path of order writes.
const publishBatchTimeout = 10 * time.Millisecond

// NewKafkaPublisher creates a publisher for the given brokers and topic
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: publishBatchTimeout,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// PublishOrderEvent encodes the event as JSON and writes it
func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.OrderID), 10)),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: failed to write event: %w", err)
	}
	return nil
}

// Close flushes pending writes and releases the connection
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher discards events; used when no brokers are configured
type NoopPublisher struct{}

// PublishOrderEvent does nothing
func (NoopPublisher) PublishOrderEvent(context.Context, OrderEvent) error { return nil }

// Close does nothing
func (NoopPublisher) Close() error { return nil }

// NewEventPublisher returns a Kafka publisher when brokers are configured, otherwise a no-op one
func NewEventPublisher(brokers []string, topic string) EventPublisher {
	if len(brokers) == 0 {
		return NoopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}

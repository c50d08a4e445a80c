package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/venturemagnate/paper-trading/internal/models"
)

// Producer publishes order events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishOrderExecuted publishes an event for a filled buy or sell order.
// Callers treat publish failures as non-fatal; the order has already
// committed by the time this runs.
func (p *Producer) PublishOrderExecuted(ctx context.Context, userID int, result *models.OrderResult) error {
	event := models.OrderEvent{
		EventType:  "ORDER_EXECUTED",
		UserID:     userID,
		Symbol:     result.Symbol,
		Side:       result.Side,
		OrderType:  result.OrderType,
		Quantity:   result.Quantity,
		Price:      result.Price,
		TotalValue: result.TotalValue,
		Timestamp:  time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(result.Symbol),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

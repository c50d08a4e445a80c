package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/venturemagnate/paper-trading/internal/models"
)

// PriceSampleStore is the subset of the database used by the tick consumer
type PriceSampleStore interface {
	InsertPriceSample(ctx context.Context, symbol string, price decimal.Decimal) error
}

// TickConsumer ingests externally produced price ticks into the market_data
// cache, which warms the prices used by market orders and valuation.
type TickConsumer struct {
	reader *kafka.Reader
	store  PriceSampleStore
	logger *zap.Logger
}

// NewTickConsumer creates a Kafka consumer for the price-ticks topic
func NewTickConsumer(brokers []string, topic, groupID string, store PriceSampleStore, logger *zap.Logger) *TickConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})

	return &TickConsumer{
		reader: reader,
		store:  store,
		logger: logger,
	}
}

// Start consumes messages until the context is cancelled. Malformed
// messages are logged and skipped; a bad tick must not stall the stream.
func (c *TickConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting price tick consumer", zap.String("topic", c.reader.Config().Topic))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("price tick consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return c.reader.Close()
				}
				c.logger.Warn("error reading message", zap.Error(err))
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Warn("error processing tick",
					zap.Int64("offset", msg.Offset), zap.Error(err))
			}
		}
	}
}

func (c *TickConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var tick models.PriceTick
	if err := json.Unmarshal(msg.Value, &tick); err != nil {
		return fmt.Errorf("failed to unmarshal price tick: %w", err)
	}

	symbol := strings.ToUpper(strings.TrimSpace(tick.Symbol))
	if symbol == "" {
		return fmt.Errorf("price tick missing symbol")
	}

	price, err := decimal.NewFromString(tick.Price)
	if err != nil {
		return fmt.Errorf("invalid tick price %q: %w", tick.Price, err)
	}
	if !price.IsPositive() {
		return nil
	}

	if err := c.store.InsertPriceSample(ctx, symbol, price); err != nil {
		return fmt.Errorf("failed to store price tick: %w", err)
	}

	c.logger.Debug("cached price tick",
		zap.String("symbol", symbol), zap.String("price", price.String()))
	return nil
}

// Close closes the Kafka consumer
func (c *TickConsumer) Close() error {
	return c.reader.Close()
}

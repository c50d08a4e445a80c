package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEvent is published to Kafka after every executed order.
type OrderEvent struct {
	EventType  string          `json:"event_type"`
	UserID     int             `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Side       string          `json:"side"`
	OrderType  string          `json:"order_type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalValue decimal.Decimal `json:"total_value"`
	Timestamp  time.Time       `json:"timestamp"`
}

// PriceTick is an externally produced quote consumed from the ticks topic
// and appended to market_data.
type PriceTick struct {
	Symbol    string    `json:"symbol"`
	Price     string    `json:"price"`
	Timestamp time.Time `json:"ts"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price source constants
const (
	SourceStock  = "stock"
	SourceCrypto = "crypto"
	SourceForex  = "forex"
)

// PriceSample is one cached quote in the market_data time series. Samples are
// append-only; the latest row by timestamp is the symbol's current price.
type PriceSample struct {
	ID        int             `json:"id"`
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"ts"`
}

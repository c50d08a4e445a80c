package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade side constants
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Order type constants
const (
	OrderTypeMarket = "market"
	OrderTypeLimit  = "limit"
)

// Transaction is an append-only record of an executed order. Rows are never
// mutated or deleted.
type Transaction struct {
	ID         int             `json:"transaction_id"`
	UserID     int             `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Side       string          `json:"side"`
	OrderType  string          `json:"order_type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalValue decimal.Decimal `json:"total_value"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// TransactionFilter narrows and pages a transaction listing. Zero values
// mean "no filter"; Page and Limit are normalized by the store.
type TransactionFilter struct {
	Symbol    string
	Side      string
	OrderType string
	Start     *time.Time
	End       *time.Time
	Page      int
	Limit     int
	Ascending bool
}

// TransactionPage is one page of ledger rows plus pagination metadata.
type TransactionPage struct {
	Total        int            `json:"total"`
	Page         int            `json:"page"`
	PerPage      int            `json:"per_page"`
	HasMore      bool           `json:"has_more"`
	Transactions []*Transaction `json:"data"`
}

// OrderRequest is a buy or sell order as submitted by a user. Price is only
// meaningful for limit orders; market orders execute at the latest cached
// price for the symbol.
type OrderRequest struct {
	Symbol    string
	Side      string
	OrderType string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
}

// OrderResult echoes an executed order along with the updated cash balance
// and holding state. Holding is nil when a sell closed the position.
type OrderResult struct {
	Symbol      string
	Side        string
	OrderType   string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	TotalValue  decimal.Decimal
	PortfolioID int
	CashBalance decimal.Decimal
	Holding     *Holding
}

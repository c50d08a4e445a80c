package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is a per-user cash ledger. TotalBalance is cash, not equity.
type Portfolio struct {
	ID              int             `json:"portfolio_id"`
	UserID          int             `json:"user_id"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	TotalProfitLoss decimal.Decimal `json:"total_profit_loss"`
	LastUpdated     time.Time       `json:"last_updated"`
}

// Holding is a per-(user, symbol) position with a weighted-average cost basis.
// A holding is deleted outright once its quantity reaches zero.
type Holding struct {
	ID           int             `json:"holding_id"`
	UserID       int             `json:"user_id"`
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// HoldingValuation is a holding joined with its latest cached price.
type HoldingValuation struct {
	HoldingID       int             `json:"holding_id"`
	Symbol          string          `json:"symbol"`
	Quantity        decimal.Decimal `json:"quantity"`
	AveragePrice    decimal.Decimal `json:"average_price"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	MarketValue     decimal.Decimal `json:"market_value"`
	UnrealizedPL    decimal.Decimal `json:"unrealized_pl"`
	UnrealizedPLPct decimal.Decimal `json:"unrealized_pl_pct"`
}

// PortfolioTotals is the aggregated header of a portfolio summary.
type PortfolioTotals struct {
	PortfolioID     int             `json:"portfolio_id"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
	Equity          decimal.Decimal `json:"equity"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	TotalProfitLoss decimal.Decimal `json:"total_profit_loss"`
	LastUpdated     time.Time       `json:"last_updated"`
}

// PortfolioSummary is the full valuation view returned by GET /portfolio/summary.
type PortfolioSummary struct {
	Portfolio          PortfolioTotals     `json:"portfolio"`
	Holdings           []*HoldingValuation `json:"holdings"`
	RecentTransactions []*Transaction      `json:"recent_transactions"`
}

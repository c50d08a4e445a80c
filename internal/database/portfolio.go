package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/venturemagnate/paper-trading/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// GetPortfolioByUserID retrieves a user's portfolio. The schema allows
// multiple rows per user; the lowest-id row is the ledger.
func (db *DB) GetPortfolioByUserID(ctx context.Context, userID int) (*models.Portfolio, error) {
	query := `
		SELECT id, user_id, total_balance, total_invested, total_profit_loss, last_updated
		FROM portfolios
		WHERE user_id = $1
		ORDER BY id ASC
		LIMIT 1
	`
	var p models.Portfolio
	err := db.conn.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.TotalBalance, &p.TotalInvested, &p.TotalProfitLoss, &p.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return &p, nil
}

// GetPortfolioSummary values every holding at its latest cached price and
// aggregates equity and unrealized P&L. Symbols with no usable cached price
// are valued at their own average cost, so their P&L reads as zero rather
// than distorting the totals.
func (db *DB) GetPortfolioSummary(ctx context.Context, userID int) (*models.PortfolioSummary, error) {
	portfolio, err := db.GetPortfolioByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings, err := db.ListHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	cash := portfolio.TotalBalance
	equity := decimal.Zero
	valuations := make([]*models.HoldingValuation, 0, len(holdings))

	for _, h := range holdings {
		currentPrice, err := db.GetLatestPrice(ctx, h.Symbol)
		if err != nil {
			return nil, err
		}
		if !currentPrice.IsPositive() {
			currentPrice = h.AveragePrice
		}

		marketValue := h.Quantity.Mul(currentPrice)
		costBasis := h.Quantity.Mul(h.AveragePrice)
		unrealizedPL := marketValue.Sub(costBasis)
		unrealizedPLPct := decimal.Zero
		if costBasis.IsPositive() {
			unrealizedPLPct = unrealizedPL.Div(costBasis).Mul(oneHundred)
		}

		equity = equity.Add(marketValue)
		valuations = append(valuations, &models.HoldingValuation{
			HoldingID:       h.ID,
			Symbol:          h.Symbol,
			Quantity:        h.Quantity,
			AveragePrice:    h.AveragePrice.Round(6),
			CurrentPrice:    currentPrice.Round(6),
			MarketValue:     marketValue.Round(2),
			UnrealizedPL:    unrealizedPL.Round(2),
			UnrealizedPLPct: unrealizedPLPct.Round(2),
		})
	}

	recent, err := db.GetRecentTransactions(ctx, userID, 20)
	if err != nil {
		return nil, err
	}

	return &models.PortfolioSummary{
		Portfolio: models.PortfolioTotals{
			PortfolioID:     portfolio.ID,
			TotalBalance:    cash.Round(2),
			Equity:          equity.Round(2),
			TotalValue:      cash.Add(equity).Round(2),
			TotalInvested:   portfolio.TotalInvested.Round(2),
			TotalProfitLoss: portfolio.TotalProfitLoss.Round(2),
			LastUpdated:     portfolio.LastUpdated,
		},
		Holdings:           valuations,
		RecentTransactions: recent,
	}, nil
}

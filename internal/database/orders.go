package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/venturemagnate/paper-trading/internal/models"
)

// ExecuteOrder runs a buy or sell for a user inside a single database
// transaction. The portfolio row and the holding row are locked FOR UPDATE
// for the duration, so two concurrent orders for the same user serialize on
// the cash balance instead of racing on stale reads.
//
// Market orders (and limit orders submitted without a price) execute at the
// latest market_data sample for the symbol; limit orders execute verbatim at
// the caller's price. A resolved price at or below zero fails the order with
// ErrPriceUnavailable.
func (db *DB) ExecuteOrder(ctx context.Context, userID int, req *models.OrderRequest) (*models.OrderResult, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" || !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: invalid symbol or quantity", ErrInvalidOrder)
	}

	orderType := strings.ToLower(strings.TrimSpace(req.OrderType))
	if orderType == "" {
		orderType = models.OrderTypeMarket
	}
	if orderType != models.OrderTypeMarket && orderType != models.OrderTypeLimit {
		return nil, fmt.Errorf("%w: unknown order type %q", ErrInvalidOrder, req.OrderType)
	}
	if orderType == models.OrderTypeLimit && !req.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price required for limit orders", ErrInvalidOrder)
	}

	tx, err := db.conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lowest-id portfolio row is the user's ledger. Locked first so every
	// order for a user serializes in the same place.
	var portfolioID int
	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		SELECT id, total_balance
		FROM portfolios
		WHERE user_id = $1
		ORDER BY id ASC
		LIMIT 1
		FOR UPDATE
	`, userID).Scan(&portfolioID, &balance)
	if err == sql.ErrNoRows {
		return nil, ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	price := req.Price
	if !price.IsPositive() {
		err = tx.QueryRowContext(ctx, `
			SELECT price FROM market_data WHERE symbol = $1 ORDER BY ts DESC LIMIT 1
		`, symbol).Scan(&price)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to resolve market price: %w", err)
		}
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w for %s", ErrPriceUnavailable, symbol)
	}

	totalValue := req.Quantity.Mul(price)
	now := time.Now()

	result := &models.OrderResult{
		Symbol:      symbol,
		Side:        req.Side,
		OrderType:   orderType,
		Quantity:    req.Quantity,
		Price:       price.Round(6),
		TotalValue:  totalValue.Round(2),
		PortfolioID: portfolioID,
	}

	switch req.Side {
	case models.SideBuy:
		if totalValue.GreaterThan(balance) {
			return nil, ErrInsufficientFunds
		}
		holding, err := upsertHoldingForBuy(ctx, tx, userID, symbol, req.Quantity, price, now)
		if err != nil {
			return nil, err
		}
		result.Holding = holding
		balance = balance.Sub(totalValue)
	case models.SideSell:
		holding, err := reduceHoldingForSell(ctx, tx, userID, symbol, req.Quantity, now)
		if err != nil {
			return nil, err
		}
		result.Holding = holding
		balance = balance.Add(totalValue)
	default:
		return nil, fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, req.Side)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE portfolios SET total_balance = $1, last_updated = $2 WHERE id = $3
	`, balance, now, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (user_id, symbol, side, order_type, quantity, price, total_value, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, userID, symbol, req.Side, orderType, req.Quantity, price, totalValue, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	result.CashBalance = balance.Round(2)
	return result, nil
}

// upsertHoldingForBuy creates the position on first buy, or folds the new
// lot into the quantity-weighted average on subsequent buys.
func upsertHoldingForBuy(ctx context.Context, tx *sql.Tx, userID int, symbol string, quantity, price decimal.Decimal, now time.Time) (*models.Holding, error) {
	var h models.Holding
	err := tx.QueryRowContext(ctx, `
		SELECT id, quantity, average_price
		FROM holdings
		WHERE user_id = $1 AND symbol = $2
		FOR UPDATE
	`, userID, symbol).Scan(&h.ID, &h.Quantity, &h.AveragePrice)

	switch {
	case err == sql.ErrNoRows:
		h = models.Holding{UserID: userID, Symbol: symbol, Quantity: quantity, AveragePrice: price}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO holdings (user_id, symbol, quantity, average_price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
			RETURNING id
		`, userID, symbol, quantity, price, now).Scan(&h.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create holding: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to get holding: %w", err)
	default:
		newQty := h.Quantity.Add(quantity)
		newAvg := h.Quantity.Mul(h.AveragePrice).Add(quantity.Mul(price)).Div(newQty)
		_, err = tx.ExecContext(ctx, `
			UPDATE holdings SET quantity = $1, average_price = $2, updated_at = $3 WHERE id = $4
		`, newQty, newAvg, now, h.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to update holding: %w", err)
		}
		h.UserID = userID
		h.Symbol = symbol
		h.Quantity = newQty
		h.AveragePrice = newAvg
	}

	h.AveragePrice = h.AveragePrice.Round(6)
	return &h, nil
}

// reduceHoldingForSell decrements the position, deleting the row entirely
// when nothing is left. The average price is untouched by sells. Returns
// nil when the position was closed.
func reduceHoldingForSell(ctx context.Context, tx *sql.Tx, userID int, symbol string, quantity decimal.Decimal, now time.Time) (*models.Holding, error) {
	var h models.Holding
	err := tx.QueryRowContext(ctx, `
		SELECT id, quantity, average_price
		FROM holdings
		WHERE user_id = $1 AND symbol = $2
		FOR UPDATE
	`, userID, symbol).Scan(&h.ID, &h.Quantity, &h.AveragePrice)
	if err == sql.ErrNoRows {
		return nil, ErrHoldingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}

	if h.Quantity.LessThan(quantity) {
		return nil, ErrInsufficientHoldings
	}

	newQty := h.Quantity.Sub(quantity)
	if !newQty.IsPositive() {
		if _, err := tx.ExecContext(ctx, `DELETE FROM holdings WHERE id = $1`, h.ID); err != nil {
			return nil, fmt.Errorf("failed to delete holding: %w", err)
		}
		return nil, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE holdings SET quantity = $1, updated_at = $2 WHERE id = $3
	`, newQty, now, h.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update holding: %w", err)
	}

	h.UserID = userID
	h.Symbol = symbol
	h.Quantity = newQty
	h.AveragePrice = h.AveragePrice.Round(6)
	return &h, nil
}

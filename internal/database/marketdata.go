package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/venturemagnate/paper-trading/internal/models"
)

// InsertPriceSample appends a quote to the market_data time series. Prices
// at or below zero are not cached.
func (db *DB) InsertPriceSample(ctx context.Context, symbol string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return nil
	}

	query := `INSERT INTO market_data (symbol, price, ts) VALUES ($1, $2, $3)`
	if _, err := db.conn.ExecContext(ctx, query, symbol, price, time.Now()); err != nil {
		return fmt.Errorf("failed to insert price sample: %w", err)
	}
	return nil
}

// GetLatestPrice returns the most recent cached price for a symbol, or zero
// when the symbol has never been quoted.
func (db *DB) GetLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	query := `
		SELECT price
		FROM market_data
		WHERE symbol = $1
		ORDER BY ts DESC
		LIMIT 1
	`
	var price decimal.Decimal
	err := db.conn.QueryRowContext(ctx, query, symbol).Scan(&price)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get latest price: %w", err)
	}
	return price, nil
}

// GetPriceHistory returns cached samples for a symbol, newest first
func (db *DB) GetPriceHistory(ctx context.Context, symbol string, limit int) ([]*models.PriceSample, error) {
	query := `
		SELECT id, symbol, price, ts
		FROM market_data
		WHERE symbol = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := db.conn.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}
	defer rows.Close()

	var samples []*models.PriceSample
	for rows.Next() {
		var s models.PriceSample
		if err := rows.Scan(&s.ID, &s.Symbol, &s.Price, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan price sample: %w", err)
		}
		samples = append(samples, &s)
	}
	return samples, rows.Err()
}

// DeleteSamplesOlderThan prunes samples before the cutoff, returning the
// number of rows removed. Nothing in the request path calls this; it exists
// for operators because the series otherwise grows unbounded.
func (db *DB) DeleteSamplesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM market_data WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old price samples: %w", err)
	}
	return result.RowsAffected()
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/venturemagnate/paper-trading/internal/models"
)

// GetHolding retrieves a user's position in a symbol
func (db *DB) GetHolding(ctx context.Context, userID int, symbol string) (*models.Holding, error) {
	query := `
		SELECT id, user_id, symbol, quantity, average_price, created_at, updated_at
		FROM holdings
		WHERE user_id = $1 AND symbol = $2
	`
	var h models.Holding
	err := db.conn.QueryRowContext(ctx, query, userID, symbol).Scan(
		&h.ID, &h.UserID, &h.Symbol, &h.Quantity, &h.AveragePrice, &h.CreatedAt, &h.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrHoldingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return &h, nil
}

// ListHoldings retrieves all of a user's positions ordered by symbol
func (db *DB) ListHoldings(ctx context.Context, userID int) ([]*models.Holding, error) {
	query := `
		SELECT id, user_id, symbol, quantity, average_price, created_at, updated_at
		FROM holdings
		WHERE user_id = $1
		ORDER BY symbol ASC
	`
	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*models.Holding
	for rows.Next() {
		var h models.Holding
		err := rows.Scan(&h.ID, &h.UserID, &h.Symbol, &h.Quantity, &h.AveragePrice, &h.CreatedAt, &h.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, &h)
	}
	return holdings, rows.Err()
}

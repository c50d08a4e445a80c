package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/venturemagnate/paper-trading/internal/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// GetRecentTransactions returns a user's newest ledger rows
func (db *DB) GetRecentTransactions(ctx context.Context, userID, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, symbol, side, order_type, quantity, price, total_value, executed_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY executed_at DESC, id DESC
		LIMIT $2
	`
	return db.scanTransactions(db.conn.QueryContext(ctx, query, userID, limit))
}

// ListTransactions returns one page of a user's ledger, filtered by the
// optional symbol, side, order type and date-range criteria.
func (db *DB) ListTransactions(ctx context.Context, userID int, filter *models.TransactionFilter) (*models.TransactionPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := (page - 1) * limit

	conds := []string{"user_id = $1"}
	args := []interface{}{userID}

	addCond := func(expr string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}

	if filter.Symbol != "" {
		addCond("symbol = $%d", strings.ToUpper(filter.Symbol))
	}
	if filter.Side == models.SideBuy || filter.Side == models.SideSell {
		addCond("side = $%d", filter.Side)
	}
	if filter.OrderType == models.OrderTypeMarket || filter.OrderType == models.OrderTypeLimit {
		addCond("order_type = $%d", filter.OrderType)
	}
	if filter.Start != nil {
		addCond("executed_at >= $%d", *filter.Start)
	}
	if filter.End != nil {
		addCond("executed_at <= $%d", *filter.End)
	}

	where := "WHERE " + strings.Join(conds, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM transactions " + where
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	dir := "DESC"
	if filter.Ascending {
		dir = "ASC"
	}
	query := `
		SELECT id, user_id, symbol, side, order_type, quantity, price, total_value, executed_at
		FROM transactions ` + where + `
		ORDER BY executed_at ` + dir + `, id ` + dir + `
		LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	transactions, err := db.scanTransactions(db.conn.QueryContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	return &models.TransactionPage{
		Total:        total,
		Page:         page,
		PerPage:      limit,
		HasMore:      offset+limit < total,
		Transactions: transactions,
	}, nil
}

func (db *DB) scanTransactions(rows *sql.Rows, err error) ([]*models.Transaction, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Symbol, &t.Side, &t.OrderType,
			&t.Quantity, &t.Price, &t.TotalValue, &t.ExecutedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}

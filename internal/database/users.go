package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/venturemagnate/paper-trading/internal/models"
)

// CreateUser registers a new account and seeds its portfolio with the
// starting cash balance. Both rows are created in one transaction so a
// user can never exist without a portfolio.
func (db *DB) CreateUser(ctx context.Context, u *models.User, startingBalance decimal.Decimal) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (full_name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.FullName, u.Email, u.PasswordHash, now).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO portfolios (user_id, total_balance, total_invested, total_profit_loss, last_updated)
		VALUES ($1, $2, 0, 0, $3)
	`, u.ID, startingBalance, now)
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.CreatedAt = now
	return nil
}

// GetUserByEmail retrieves a user by email address
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, full_name, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	var u models.User
	err := db.conn.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, full_name, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	var u models.User
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

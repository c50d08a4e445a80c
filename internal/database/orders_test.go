package database

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturemagnate/paper-trading/internal/models"
)

func marketBuy(symbol string, qty float64) *models.OrderRequest {
	return &models.OrderRequest{
		Symbol:    symbol,
		Side:      models.SideBuy,
		OrderType: models.OrderTypeMarket,
		Quantity:  decimal.NewFromFloat(qty),
	}
}

func marketSell(symbol string, qty float64) *models.OrderRequest {
	return &models.OrderRequest{
		Symbol:    symbol,
		Side:      models.SideSell,
		OrderType: models.OrderTypeMarket,
		Quantity:  decimal.NewFromFloat(qty),
	}
}

func limitOrder(symbol, side string, qty, price float64) *models.OrderRequest {
	return &models.OrderRequest{
		Symbol:    symbol,
		Side:      side,
		OrderType: models.OrderTypeLimit,
		Quantity:  decimal.NewFromFloat(qty),
		Price:     decimal.NewFromFloat(price),
	}
}

func TestExecuteOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	ctx := context.Background()

	t.Run("buy debits cash, creates holding and records the trade", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "buyer@example.com", decimal.NewFromFloat(10000.00))
		require.NoError(t, testDB.InsertPriceSample(ctx, "AAPL", decimal.NewFromFloat(227.00)))

		result, err := testDB.ExecuteOrder(ctx, userID, marketBuy("AAPL", 10))
		require.NoError(t, err)

		assert.True(t, decimal.NewFromFloat(7730.00).Equal(result.CashBalance), "cash = %s", result.CashBalance)
		assert.True(t, decimal.NewFromFloat(2270.00).Equal(result.TotalValue))
		require.NotNil(t, result.Holding)
		assert.True(t, decimal.NewFromFloat(10).Equal(result.Holding.Quantity))
		assert.True(t, decimal.NewFromFloat(227.00).Equal(result.Holding.AveragePrice))

		transactions, err := testDB.GetRecentTransactions(ctx, userID, 10)
		require.NoError(t, err)
		require.Len(t, transactions, 1)
		assert.Equal(t, models.SideBuy, transactions[0].Side)
		assert.True(t, decimal.NewFromFloat(2270.00).Equal(transactions[0].TotalValue))
	})

	t.Run("sell credits proceeds and leaves the average untouched", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "seller@example.com", decimal.NewFromFloat(10000.00))
		require.NoError(t, testDB.InsertPriceSample(ctx, "AAPL", decimal.NewFromFloat(227.00)))

		_, err := testDB.ExecuteOrder(ctx, userID, marketBuy("AAPL", 10))
		require.NoError(t, err)

		result, err := testDB.ExecuteOrder(ctx, userID, limitOrder("AAPL", models.SideSell, 4, 230.00))
		require.NoError(t, err)

		assert.True(t, decimal.NewFromFloat(8650.00).Equal(result.CashBalance), "cash = %s", result.CashBalance)
		require.NotNil(t, result.Holding)
		assert.True(t, decimal.NewFromFloat(6).Equal(result.Holding.Quantity))
		assert.True(t, decimal.NewFromFloat(227.00).Equal(result.Holding.AveragePrice))
	})

	t.Run("selling the full position deletes the holding row", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "closer@example.com", decimal.NewFromFloat(10000.00))
		require.NoError(t, testDB.InsertPriceSample(ctx, "AAPL", decimal.NewFromFloat(227.00)))

		_, err := testDB.ExecuteOrder(ctx, userID, marketBuy("AAPL", 10))
		require.NoError(t, err)
		_, err = testDB.ExecuteOrder(ctx, userID, limitOrder("AAPL", models.SideSell, 4, 230.00))
		require.NoError(t, err)

		result, err := testDB.ExecuteOrder(ctx, userID, limitOrder("AAPL", models.SideSell, 6, 230.00))
		require.NoError(t, err)

		assert.True(t, decimal.NewFromFloat(10030.00).Equal(result.CashBalance), "cash = %s", result.CashBalance)
		assert.Nil(t, result.Holding)

		_, err = testDB.GetHolding(ctx, userID, "AAPL")
		require.ErrorIs(t, err, ErrHoldingNotFound)
	})

	t.Run("repeat buys blend into a quantity-weighted average", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "averager@example.com", decimal.NewFromFloat(10000.00))

		_, err := testDB.ExecuteOrder(ctx, userID, limitOrder("MSFT", models.SideBuy, 10, 100.00))
		require.NoError(t, err)
		result, err := testDB.ExecuteOrder(ctx, userID, limitOrder("MSFT", models.SideBuy, 30, 200.00))
		require.NoError(t, err)

		// (10*100 + 30*200) / 40 = 175
		require.NotNil(t, result.Holding)
		assert.True(t, decimal.NewFromFloat(40).Equal(result.Holding.Quantity))
		assert.True(t, decimal.NewFromFloat(175.00).Equal(result.Holding.AveragePrice),
			"average = %s", result.Holding.AveragePrice)
	})

	t.Run("insufficient funds leaves all ledger state unchanged", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "broke@example.com", decimal.NewFromFloat(100.00))

		_, err := testDB.ExecuteOrder(ctx, userID, limitOrder("AAPL", models.SideBuy, 10, 227.00))
		require.ErrorIs(t, err, ErrInsufficientFunds)

		portfolio, err := testDB.GetPortfolioByUserID(ctx, userID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromFloat(100.00).Equal(portfolio.TotalBalance))

		holdings, err := testDB.ListHoldings(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, holdings)

		transactions, err := testDB.GetRecentTransactions(ctx, userID, 10)
		require.NoError(t, err)
		assert.Empty(t, transactions)
	})

	t.Run("overselling fails and leaves all ledger state unchanged", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "oversell@example.com", decimal.NewFromFloat(10000.00))

		_, err := testDB.ExecuteOrder(ctx, userID, limitOrder("AAPL", models.SideBuy, 5, 200.00))
		require.NoError(t, err)

		_, err = testDB.ExecuteOrder(ctx, userID, limitOrder("AAPL", models.SideSell, 6, 200.00))
		require.ErrorIs(t, err, ErrInsufficientHoldings)

		portfolio, err := testDB.GetPortfolioByUserID(ctx, userID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromFloat(9000.00).Equal(portfolio.TotalBalance))

		holding, err := testDB.GetHolding(ctx, userID, "AAPL")
		require.NoError(t, err)
		assert.True(t, decimal.NewFromFloat(5).Equal(holding.Quantity))
	})

	t.Run("selling a symbol never held fails with ErrHoldingNotFound", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "nothing@example.com", decimal.NewFromFloat(10000.00))

		_, err := testDB.ExecuteOrder(ctx, userID, limitOrder("TSLA", models.SideSell, 1, 100.00))
		require.ErrorIs(t, err, ErrHoldingNotFound)
	})

	t.Run("market order without a cached price fails with ErrPriceUnavailable", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "nocache@example.com", decimal.NewFromFloat(10000.00))

		_, err := testDB.ExecuteOrder(ctx, userID, marketBuy("NVDA", 1))
		require.ErrorIs(t, err, ErrPriceUnavailable)
	})

	t.Run("market order executes at the most recent cached price", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "latest@example.com", decimal.NewFromFloat(10000.00))

		require.NoError(t, testDB.InsertPriceSample(ctx, "NVDA", decimal.NewFromFloat(400.00)))
		require.NoError(t, testDB.InsertPriceSample(ctx, "NVDA", decimal.NewFromFloat(450.00)))

		result, err := testDB.ExecuteOrder(ctx, userID, marketBuy("NVDA", 2))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromFloat(450.00).Equal(result.Price))
	})

	t.Run("limit order without a price is rejected", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "nolimit@example.com", decimal.NewFromFloat(10000.00))

		req := &models.OrderRequest{
			Symbol:    "AAPL",
			Side:      models.SideBuy,
			OrderType: models.OrderTypeLimit,
			Quantity:  decimal.NewFromFloat(1),
		}
		_, err := testDB.ExecuteOrder(ctx, userID, req)
		require.ErrorIs(t, err, ErrInvalidOrder)
	})

	t.Run("zero quantity and empty symbol are rejected", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "invalid@example.com", decimal.NewFromFloat(10000.00))

		_, err := testDB.ExecuteOrder(ctx, userID, limitOrder("", models.SideBuy, 1, 100.00))
		require.ErrorIs(t, err, ErrInvalidOrder)

		_, err = testDB.ExecuteOrder(ctx, userID, limitOrder("AAPL", models.SideBuy, 0, 100.00))
		require.ErrorIs(t, err, ErrInvalidOrder)
	})

	t.Run("order for a user without a portfolio fails with ErrPortfolioNotFound", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.ExecuteOrder(ctx, 12345, limitOrder("AAPL", models.SideBuy, 1, 100.00))
		require.ErrorIs(t, err, ErrPortfolioNotFound)
	})

	t.Run("symbols are normalized to uppercase", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "case@example.com", decimal.NewFromFloat(10000.00))

		result, err := testDB.ExecuteOrder(ctx, userID, limitOrder("aapl", models.SideBuy, 1, 100.00))
		require.NoError(t, err)
		assert.Equal(t, "AAPL", result.Symbol)

		holding, err := testDB.GetHolding(ctx, userID, "AAPL")
		require.NoError(t, err)
		assert.Equal(t, "AAPL", holding.Symbol)
	})
}

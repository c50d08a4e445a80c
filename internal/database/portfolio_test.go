package database

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturemagnate/paper-trading/internal/models"
)

func TestGetPortfolioSummary(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	ctx := context.Background()

	t.Run("values holdings at the latest cached price", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "summary@example.com", decimal.NewFromFloat(10000.00))

		_, err := testDB.ExecuteOrder(ctx, userID, limitOrder("AAPL", models.SideBuy, 10, 200.00))
		require.NoError(t, err)
		require.NoError(t, testDB.InsertPriceSample(ctx, "AAPL", decimal.NewFromFloat(220.00)))

		summary, err := testDB.GetPortfolioSummary(ctx, userID)
		require.NoError(t, err)

		require.Len(t, summary.Holdings, 1)
		h := summary.Holdings[0]
		assert.True(t, decimal.NewFromFloat(220.00).Equal(h.CurrentPrice))
		assert.True(t, decimal.NewFromFloat(2200.00).Equal(h.MarketValue))
		assert.True(t, decimal.NewFromFloat(200.00).Equal(h.UnrealizedPL))
		assert.True(t, decimal.NewFromFloat(10.00).Equal(h.UnrealizedPLPct))

		// cash 8000 + equity 2200
		assert.True(t, decimal.NewFromFloat(8000.00).Equal(summary.Portfolio.TotalBalance))
		assert.True(t, decimal.NewFromFloat(2200.00).Equal(summary.Portfolio.Equity))
		assert.True(t, decimal.NewFromFloat(10200.00).Equal(summary.Portfolio.TotalValue))
	})

	t.Run("falls back to average cost when no price is cached", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "fallback@example.com", decimal.NewFromFloat(10000.00))

		_, err := testDB.ExecuteOrder(ctx, userID, limitOrder("OBSCURE", models.SideBuy, 4, 50.00))
		require.NoError(t, err)

		summary, err := testDB.GetPortfolioSummary(ctx, userID)
		require.NoError(t, err)

		require.Len(t, summary.Holdings, 1)
		h := summary.Holdings[0]
		assert.True(t, decimal.NewFromFloat(50.00).Equal(h.CurrentPrice))
		assert.True(t, h.UnrealizedPL.IsZero())
		assert.True(t, h.UnrealizedPLPct.IsZero())
	})

	t.Run("includes the most recent transactions newest first", func(t *testing.T) {
		testDB.TruncateAll(t)
		userID := createTestUser(t, testDB.DB, "recent@example.com", decimal.NewFromFloat(100000.00))

		_, err := testDB.ExecuteOrder(ctx, userID, limitOrder("AAPL", models.SideBuy, 1, 100.00))
		require.NoError(t, err)
		_, err = testDB.ExecuteOrder(ctx, userID, limitOrder("MSFT", models.SideBuy, 1, 300.00))
		require.NoError(t, err)

		summary, err := testDB.GetPortfolioSummary(ctx, userID)
		require.NoError(t, err)
		require.Len(t, summary.RecentTransactions, 2)
		assert.Equal(t, "MSFT", summary.RecentTransactions[0].Symbol)
	})

	t.Run("missing portfolio yields ErrPortfolioNotFound", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.GetPortfolioSummary(ctx, 4242)
		require.ErrorIs(t, err, ErrPortfolioNotFound)
	})
}

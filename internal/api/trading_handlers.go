package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/venturemagnate/paper-trading/internal/auth"
	"github.com/venturemagnate/paper-trading/internal/models"
)

type orderInput struct {
	Symbol    string  `json:"symbol"`
	Quantity  float64 `json:"quantity"`
	OrderType string  `json:"order_type"`
	Price     float64 `json:"price"`
}

// Buy handles POST /trading/buy
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	h.executeOrder(w, r, models.SideBuy)
}

// Sell handles POST /trading/sell
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	h.executeOrder(w, r, models.SideSell)
}

func (h *Handler) executeOrder(w http.ResponseWriter, r *http.Request, side string) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input orderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req := &models.OrderRequest{
		Symbol:    input.Symbol,
		Side:      side,
		OrderType: input.OrderType,
		Quantity:  decimal.NewFromFloat(input.Quantity),
		Price:     decimal.NewFromFloat(input.Price),
	}

	result, err := h.db.ExecuteOrder(r.Context(), userID, req)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishOrderExecuted(r.Context(), userID, result); err != nil {
			h.logger.Warn("failed to publish order event",
				zap.String("symbol", result.Symbol), zap.Error(err))
		}
	}

	order := map[string]interface{}{
		"symbol":     result.Symbol,
		"trade_type": result.Side,
		"order_type": result.OrderType,
		"quantity":   result.Quantity,
		"price":      result.Price,
	}

	message := "Buy executed"
	if side == models.SideBuy {
		order["cost"] = result.TotalValue
	} else {
		message = "Sell executed"
		order["proceeds"] = result.TotalValue
	}

	var holding interface{}
	if result.Holding != nil {
		holding = map[string]interface{}{
			"holding_id":    result.Holding.ID,
			"symbol":        result.Holding.Symbol,
			"quantity":      result.Holding.Quantity,
			"average_price": result.Holding.AveragePrice,
		}
	} else {
		holding = map[string]interface{}{
			"symbol":        result.Symbol,
			"quantity_left": decimal.Zero,
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
		"order":   order,
		"portfolio": map[string]interface{}{
			"portfolio_id":  result.PortfolioID,
			"total_balance": result.CashBalance,
		},
		"holding": holding,
	})
}

// ListTransactions handles GET /trading/transactions with optional symbol,
// side, order type, date range, ordering and pagination parameters.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	filter := &models.TransactionFilter{
		Symbol:    strings.ToUpper(strings.TrimSpace(q.Get("symbol"))),
		Side:      strings.ToUpper(strings.TrimSpace(q.Get("side"))),
		OrderType: strings.ToLower(strings.TrimSpace(q.Get("order_type"))),
		Ascending: strings.EqualFold(q.Get("order"), "asc"),
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	if start, ok := parseDate(q.Get("start")); ok {
		filter.Start = &start
	}
	if end, ok := parseDate(q.Get("end")); ok {
		filter.End = &end
	}

	page, err := h.db.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"meta": map[string]interface{}{
			"total":    page.Total,
			"page":     page.Page,
			"per_page": page.PerPage,
			"has_more": page.HasMore,
		},
		"data": page.Transactions,
	})
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/venturemagnate/paper-trading/internal/auth"
	"github.com/venturemagnate/paper-trading/internal/cache"
	"github.com/venturemagnate/paper-trading/internal/database"
	"github.com/venturemagnate/paper-trading/internal/kafka"
	"github.com/venturemagnate/paper-trading/internal/prices"
)

// Handler holds dependencies for HTTP handlers. Producer may be nil when
// Kafka is not configured.
type Handler struct {
	db              *database.DB
	resolver        *prices.Resolver
	cache           *cache.Prices
	producer        *kafka.Producer
	sessions        *auth.Sessions
	logger          *zap.Logger
	startingBalance decimal.Decimal
}

// NewHandler creates a new Handler
func NewHandler(db *database.DB, resolver *prices.Resolver, priceCache *cache.Prices,
	producer *kafka.Producer, sessions *auth.Sessions, logger *zap.Logger,
	startingBalance decimal.Decimal) *Handler {
	return &Handler{
		db:              db,
		resolver:        resolver,
		cache:           priceCache,
		producer:        producer,
		sessions:        sessions,
		logger:          logger,
		startingBalance: startingBalance,
	}
}

type priceRow struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Source string          `json:"source"`
	TS     int64           `json:"ts"`
	Debug  []string        `json:"_debug,omitempty"`
}

// GetPrices handles GET /prices?symbols=A,B,C (or ?symbol=A). Each symbol is
// resolved from the Redis hot cache first, then the provider chain; resolved
// prices are written back to both caches. Cache failures never fail the
// request.
func (h *Handler) GetPrices(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				symbols = append(symbols, s)
			}
		}
	} else if s := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol"))); s != "" {
		symbols = []string{s}
	}
	if len(symbols) == 0 {
		symbols = []string{"AAPL"}
	}

	debug := r.URL.Query().Get("debug") == "1"
	ctx := r.Context()

	result := make([]priceRow, 0, len(symbols))
	for _, symbol := range symbols {
		if cached, ok := h.cache.Get(ctx, symbol); ok {
			row := priceRow{Symbol: symbol, Price: cached, Source: prices.Classify(symbol), TS: time.Now().Unix()}
			result = append(result, row)
			continue
		}

		quote := h.resolver.Resolve(ctx, symbol)
		if quote.Price.IsPositive() {
			h.cache.Set(ctx, symbol, quote.Price)
			if err := h.db.InsertPriceSample(ctx, symbol, quote.Price); err != nil {
				h.logger.Warn("failed to cache price", zap.String("symbol", symbol), zap.Error(err))
			}
		}

		row := priceRow{Symbol: symbol, Price: quote.Price, Source: quote.Source, TS: quote.Timestamp.Unix()}
		if debug {
			row.Debug = quote.Diagnostics
		}
		result = append(result, row)
	}

	respondJSON(w, http.StatusOK, result)
}

// PortfolioSummary handles GET /portfolio/summary
func (h *Handler) PortfolioSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summary, err := h.db.GetPortfolioSummary(r.Context(), userID)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	response := map[string]interface{}{
		"success":             true,
		"portfolio":           summary.Portfolio,
		"holdings":            summary.Holdings,
		"recent_transactions": summary.RecentTransactions,
	}
	if user, err := h.db.GetUserByID(r.Context(), userID); err == nil {
		response["user"] = map[string]interface{}{
			"user_id":   user.ID,
			"full_name": user.FullName,
			"email":     user.Email,
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

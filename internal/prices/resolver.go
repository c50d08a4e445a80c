// Package prices resolves quotes for stock, crypto and forex symbols by
// walking an ordered chain of external providers, falling back to the next
// provider on any failure. The chain itself has no side effects; callers
// decide whether to cache a resolved price.
package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/venturemagnate/paper-trading/internal/models"
)

const (
	connectTimeout = 5 * time.Second
	totalTimeout   = 10 * time.Second
)

var forexPairRe = regexp.MustCompile(`^[A-Z]{6}$`)

// Quote is a resolved price. Price is zero when every provider in the chain
// failed; Diagnostics then explains each failure in order.
type Quote struct {
	Symbol      string          `json:"symbol"`
	Price       decimal.Decimal `json:"price"`
	Source      string          `json:"source"`
	Timestamp   time.Time       `json:"ts"`
	Diagnostics []string        `json:"-"`
}

// Resolver queries external market-data APIs. Providers whose API key is
// unconfigured are skipped entirely.
type Resolver struct {
	client          *http.Client
	finnhubKey      string
	alphaVantageKey string

	// Base URLs are overridable in tests.
	finnhubURL     string
	alphaURL       string
	binanceURL     string
	coingeckoURL   string
	frankfurterURL string
}

// NewResolver creates a Resolver with bounded connect and total timeouts so
// one slow provider cannot stall the caller.
func NewResolver(finnhubKey, alphaVantageKey string) *Resolver {
	dialer := &net.Dialer{Timeout: connectTimeout}
	return &Resolver{
		client: &http.Client{
			Timeout:   totalTimeout,
			Transport: &http.Transport{DialContext: dialer.DialContext},
		},
		finnhubKey:      finnhubKey,
		alphaVantageKey: alphaVantageKey,
		finnhubURL:      "https://finnhub.io/api/v1",
		alphaURL:        "https://www.alphavantage.co",
		binanceURL:      "https://api.binance.com",
		coingeckoURL:    "https://api.coingecko.com",
		frankfurterURL:  "https://api.frankfurter.app",
	}
}

// Classify routes a symbol to its asset class: anything ending in USDT is a
// crypto pair, exactly six uppercase letters is a forex pair, everything
// else is a stock ticker.
func Classify(symbol string) string {
	switch {
	case strings.HasSuffix(symbol, "USDT"):
		return models.SourceCrypto
	case forexPairRe.MatchString(symbol):
		return models.SourceForex
	default:
		return models.SourceStock
	}
}

// Resolve walks the provider chain for the symbol's asset class.
func (r *Resolver) Resolve(ctx context.Context, symbol string) Quote {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	source := Classify(symbol)

	var price decimal.Decimal
	var why []string

	switch source {
	case models.SourceCrypto:
		price = r.cryptoPrice(ctx, symbol, &why)
	case models.SourceForex:
		price = r.forexPrice(ctx, symbol, &why)
	default:
		price = r.stockPrice(ctx, symbol, &why)
	}

	return Quote{
		Symbol:      symbol,
		Price:       price,
		Source:      source,
		Timestamp:   time.Now(),
		Diagnostics: why,
	}
}

// getJSON fetches a URL and decodes its JSON body. Non-2xx statuses and
// unparsable bodies are errors; both count as a provider failure.
func (r *Resolver) getJSON(ctx context.Context, rawURL string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "VentureMagnate/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode body: %w", err)
	}
	return resp.StatusCode, nil
}

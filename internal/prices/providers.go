package prices

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// coinGeckoIDs maps known Binance trading pairs to CoinGecko coin ids.
// Pairs outside this map skip the CoinGecko step of the crypto chain.
var coinGeckoIDs = map[string]string{
	"BTCUSDT": "bitcoin",
	"ETHUSDT": "ethereum",
	"SOLUSDT": "solana",
	"BNBUSDT": "binancecoin",
	"ADAUSDT": "cardano",
	"XRPUSDT": "ripple",
}

// stockPrice tries Finnhub's quote endpoint, then Alpha Vantage's global
// quote. Providers without a configured key are skipped.
func (r *Resolver) stockPrice(ctx context.Context, symbol string, why *[]string) decimal.Decimal {
	if r.finnhubKey != "" {
		var payload struct {
			Current *float64 `json:"c"`
		}
		endpoint := fmt.Sprintf("%s/quote?symbol=%s&token=%s",
			r.finnhubURL, url.QueryEscape(symbol), url.QueryEscape(r.finnhubKey))
		status, err := r.getJSON(ctx, endpoint, &payload)
		if err == nil && payload.Current != nil {
			return decimal.NewFromFloat(*payload.Current)
		}
		*why = append(*why, fmt.Sprintf("finnhub quote failed (http=%d err=%v)", status, err))
	}

	if r.alphaVantageKey != "" {
		var payload struct {
			Note        string `json:"Note"`
			GlobalQuote struct {
				Price string `json:"05. price"`
			} `json:"Global Quote"`
		}
		endpoint := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
			r.alphaURL, url.QueryEscape(symbol), url.QueryEscape(r.alphaVantageKey))
		status, err := r.getJSON(ctx, endpoint, &payload)
		if payload.Note != "" {
			*why = append(*why, "alpha vantage rate-limited")
		}
		if err == nil && payload.GlobalQuote.Price != "" {
			if price, perr := decimal.NewFromString(payload.GlobalQuote.Price); perr == nil {
				return price
			}
		}
		*why = append(*why, fmt.Sprintf("alpha vantage failed (http=%d err=%v)", status, err))
	}

	return decimal.Zero
}

// cryptoPrice tries Binance's ticker price with the literal pair, then
// CoinGecko via the fixed pair-to-coin-id map, then Finnhub's one-minute
// candles for the most recent close.
func (r *Resolver) cryptoPrice(ctx context.Context, symbol string, why *[]string) decimal.Decimal {
	var ticker struct {
		Price string `json:"price"`
	}
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", r.binanceURL, url.QueryEscape(symbol))
	status, err := r.getJSON(ctx, endpoint, &ticker)
	if err == nil && ticker.Price != "" {
		if price, perr := decimal.NewFromString(ticker.Price); perr == nil {
			return price
		}
	}
	*why = append(*why, fmt.Sprintf("binance failed (http=%d err=%v)", status, err))

	if id, ok := coinGeckoIDs[symbol]; ok {
		var payload map[string]struct {
			USD *float64 `json:"usd"`
		}
		endpoint := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd", r.coingeckoURL, url.QueryEscape(id))
		status, err := r.getJSON(ctx, endpoint, &payload)
		if err == nil {
			if entry, ok := payload[id]; ok && entry.USD != nil {
				return decimal.NewFromFloat(*entry.USD)
			}
		}
		*why = append(*why, fmt.Sprintf("coingecko failed (http=%d err=%v)", status, err))
	} else {
		*why = append(*why, fmt.Sprintf("no coingecko mapping for %s", symbol))
	}

	if r.finnhubKey != "" {
		var candles struct {
			Status string    `json:"s"`
			Closes []float64 `json:"c"`
		}
		to := time.Now().Unix()
		from := to - 5*60
		endpoint := fmt.Sprintf("%s/crypto/candle?symbol=%s&resolution=1&from=%d&to=%d&token=%s",
			r.finnhubURL, url.QueryEscape("BINANCE:"+symbol), from, to, url.QueryEscape(r.finnhubKey))
		status, err := r.getJSON(ctx, endpoint, &candles)
		if err == nil && candles.Status == "ok" && len(candles.Closes) > 0 {
			return decimal.NewFromFloat(candles.Closes[len(candles.Closes)-1])
		}
		*why = append(*why, fmt.Sprintf("finnhub candle failed (http=%d err=%v)", status, err))
	}

	return decimal.Zero
}

// forexPrice splits a 6-letter pair into base and quote currencies and
// tries Frankfurter's latest rate, then Finnhub's forex rates. Malformed
// pairs fail immediately with no provider attempted.
func (r *Resolver) forexPrice(ctx context.Context, pair string, why *[]string) decimal.Decimal {
	if !forexPairRe.MatchString(pair) {
		*why = append(*why, "bad fx pair")
		return decimal.Zero
	}

	base, quote := pair[:3], pair[3:]

	var latest struct {
		Rates map[string]float64 `json:"rates"`
	}
	endpoint := fmt.Sprintf("%s/latest?from=%s&to=%s", r.frankfurterURL, base, quote)
	status, err := r.getJSON(ctx, endpoint, &latest)
	if err == nil {
		if rate, ok := latest.Rates[quote]; ok {
			return decimal.NewFromFloat(rate)
		}
	}
	*why = append(*why, fmt.Sprintf("frankfurter failed (http=%d err=%v)", status, err))

	if r.finnhubKey != "" {
		var rates struct {
			Quote map[string]float64 `json:"quote"`
		}
		endpoint := fmt.Sprintf("%s/forex/rates?base=%s&token=%s",
			r.finnhubURL, url.QueryEscape(base), url.QueryEscape(r.finnhubKey))
		status, err := r.getJSON(ctx, endpoint, &rates)
		if err == nil {
			if rate, ok := rates.Quote[quote]; ok {
				return decimal.NewFromFloat(rate)
			}
		}
		*why = append(*why, fmt.Sprintf("finnhub forex failed (http=%d err=%v)", status, err))
	}

	return decimal.Zero
}

// Package cache is a best-effort Redis layer in front of the price provider
// chain. Every failure is swallowed: a broken or absent Redis must never
// affect price lookups.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const priceTTL = 5 * time.Minute

// Prices caches the latest resolved price per symbol with a short TTL.
// A Prices with a nil client is valid and behaves as an always-miss cache.
type Prices struct {
	client *redis.Client
}

// NewPrices connects to Redis, or returns a disabled cache when addr is empty
func NewPrices(addr, password string) *Prices {
	if addr == "" {
		return &Prices{}
	}
	return &Prices{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})}
}

func priceKey(symbol string) string {
	return "price:" + symbol
}

// Get returns the cached price for a symbol, if any
func (p *Prices) Get(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	if p.client == nil {
		return decimal.Zero, false
	}
	val, err := p.client.Get(ctx, priceKey(symbol)).Result()
	if err != nil {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(val)
	if err != nil || !price.IsPositive() {
		return decimal.Zero, false
	}
	return price, true
}

// Set stores a resolved price. Non-positive prices and Redis errors are ignored.
func (p *Prices) Set(ctx context.Context, symbol string, price decimal.Decimal) {
	if p.client == nil || !price.IsPositive() {
		return
	}
	p.client.Set(ctx, priceKey(symbol), price.String(), priceTTL)
}

// Close releases the Redis connection
func (p *Prices) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

package price

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sandwichcheck/config"
	"sandwichcheck/logger"
	"sandwichcheck/utils"

	"github.com/spf13/viper"
)

// Quoter returns the SOL/USD price. A fixed price from config wins; otherwise CoinGecko is
// asked at most once per TTL. When the lookup fails the last good price is reused, and
// Fallback is used when there has never been one.
type Quoter struct {
	URL      string
	Fixed    float64
	Fallback float64
	TTL      time.Duration
	Now      func() time.Time
	Logger   *slog.Logger

	mu       sync.Mutex
	cached   float64
	cachedAt time.Time
}

func NewQuoter() *Quoter {
	q := &Quoter{
		URL:      viper.GetString("price.url"),
		Fixed:    viper.GetFloat64("price.sol-usd"),
		Fallback: config.FALLBACK_SOL_PRICE_USD,
		TTL:      config.PRICE_CACHE_INTERVAL,
		Now:      time.Now,
	}
	if q.URL == "" {
		q.URL = config.DefaultPriceURL
	}
	if q.Fixed <= 0 {
		q.Fixed = viper.GetFloat64("SOL_PRICE_USD")
	}
	return q
}

func (q *Quoter) log() *slog.Logger {
	if q.Logger != nil {
		return q.Logger
	}
	return logger.SolLogger
}

func (q *Quoter) now() time.Time {
	if q.Now != nil {
		return q.Now()
	}
	return time.Now()
}

func (q *Quoter) SolPriceUSD(ctx context.Context) float64 {
	if q.Fixed > 0 {
		return q.Fixed
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cached > 0 && q.now().Sub(q.cachedAt) < q.TTL {
		return q.cached
	}

	p, err := q.fetch(ctx)
	if err != nil {
		if q.cached > 0 {
			q.log().Warn("Price lookup failed, reusing last price", "price", q.cached, "err", err)
			return q.cached
		}
		q.log().Warn("Price lookup failed, using fallback", "price", q.Fallback, "err", err)
		return q.Fallback
	}

	q.cached, q.cachedAt = p, q.now()
	q.log().Debug("SOL price updated", "price", p)
	return p
}

type simplePrice map[string]map[string]float64

func (q *Quoter) fetch(ctx context.Context) (float64, error) {
	params := map[string]string{
		"ids":           "solana",
		"vs_currencies": "usd",
	}
	var result simplePrice
	if err := utils.GetUrlResponse(ctx, q.URL, params, &result, q.log()); err != nil {
		return 0, err
	}
	p := result["solana"]["usd"]
	if p <= 0 {
		return 0, fmt.Errorf("no solana/usd price in response")
	}
	return p, nil
}

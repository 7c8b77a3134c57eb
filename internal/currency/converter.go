package currency

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTTL is how long fetched rates stay fresh.
const DefaultTTL = time.Hour

// Converter converts amounts between supported currencies through the home
// currency, refreshing its rate cache lazily once the cache is older than the TTL.
type Converter struct {
	mu        sync.Mutex
	source    RateSource
	ttl       time.Duration
	now       func() time.Time
	rates     map[Code]Rate
	fetchedAt time.Time
}

// Option configures a Converter.
type Option func(*Converter)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Converter) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

// NewConverter creates a converter backed by source. No rates are fetched
// until the first cross-currency conversion.
func NewConverter(source RateSource, opts ...Option) *Converter {
	c := &Converter{
		source: source,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert converts amount from one currency to another. Foreign amounts are
// sold into the home currency and then bought into the target currency, so a
// conversion between two foreign currencies pays both spreads.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to Code) (decimal.Decimal, error) {
	if !from.Valid() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, from)
	}
	if !to.Valid() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, to)
	}
	if from == to {
		return amount, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.refresh(ctx); err != nil {
		return decimal.Zero, err
	}

	if from != Home {
		rate, ok := c.rates[from]
		if !ok || rate.Sell.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: no sell rate for %s", ErrRateUnavailable, from)
		}
		amount = amount.Mul(rate.Sell)
	}
	if to != Home {
		rate, ok := c.rates[to]
		if !ok || rate.Buy.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: no buy rate for %s", ErrRateUnavailable, to)
		}
		amount = amount.Div(rate.Buy)
	}
	return amount, nil
}

// Rates returns a copy of the cached rates, refreshing them first if stale.
func (c *Converter) Rates(ctx context.Context) (map[Code]Rate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	out := make(map[Code]Rate, len(c.rates))
	for code, rate := range c.rates {
		out[code] = rate
	}
	return out, nil
}

// refresh must be called with mu held.
func (c *Converter) refresh(ctx context.Context) error {
	if c.rates != nil && c.now().Sub(c.fetchedAt) <= c.ttl {
		return nil
	}

	rates, err := c.source.FetchRates(ctx)
	if err != nil {
		if c.rates != nil {
			log.Printf("rate refresh failed, serving rates fetched at %s: %v", c.fetchedAt.Format(time.RFC3339), err)
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}

	c.rates = rates
	c.fetchedAt = c.now()
	return nil
}

package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RatesCacheKey is the redis key holding the shared rate table.
const RatesCacheKey = "currency:rates"

// RedisCachedSource shares one upstream fetch per TTL window between every
// process pointed at the same redis.
type RedisCachedSource struct {
	client   *redis.Client
	upstream RateSource
	ttl      time.Duration
}

// NewRedisCachedSource wraps upstream with a redis-backed rate table.
func NewRedisCachedSource(client *redis.Client, upstream RateSource, ttl time.Duration) *RedisCachedSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCachedSource{client: client, upstream: upstream, ttl: ttl}
}

// FetchRates implements RateSource. Redis errors fall through to the upstream.
func (s *RedisCachedSource) FetchRates(ctx context.Context) (map[Code]Rate, error) {
	raw, err := s.client.Get(ctx, RatesCacheKey).Bytes()
	switch {
	case err == nil:
		var rates map[Code]Rate
		uerr := json.Unmarshal(raw, &rates)
		if uerr == nil {
			return rates, nil
		}
		log.Printf("discarding malformed cached rates: %v", uerr)
	case !errors.Is(err, redis.Nil):
		log.Printf("failed to read cached rates: %v", err)
	}

	rates, err := s.upstream.FetchRates(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(rates)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rates: %w", err)
	}
	if err := s.client.Set(ctx, RatesCacheKey, body, s.ttl).Err(); err != nil {
		log.Printf("failed to cache rates: %v", err)
	}
	return rates, nil
}

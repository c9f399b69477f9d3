// Package ticketcache remembers which user uuid a console ticket was linked
// to, so /auth/token can skip the user store.
package ticketcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"gangland/pkg/platform/sentinel"
)

var lookupDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "gangland_ticket_cache_lookup_duration_ms",
	Help:    "Latency of ticket cache lookups in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const ticketKeyPrefix = "ticket:"

// RedisCache stores ticket → uuid with a TTL.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Put links ticket to uuid. A non-positive ttl keeps the key forever.
func (c *RedisCache) Put(ctx context.Context, ticket, uuid string, ttl time.Duration) error {
	if ticket == "" {
		return nil
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, ticketKeyPrefix+ticket, uuid, ttl).Err(); err != nil {
		return fmt.Errorf("cache ticket: %w", err)
	}
	return nil
}

// Get returns sentinel.ErrNotFound when the ticket is unknown or expired.
func (c *RedisCache) Get(ctx context.Context, ticket string) (string, error) {
	start := time.Now()
	defer func() {
		lookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if ticket == "" {
		return "", sentinel.ErrNotFound
	}
	uuid, err := c.client.Get(ctx, ticketKeyPrefix+ticket).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup ticket: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return uuid, nil
}

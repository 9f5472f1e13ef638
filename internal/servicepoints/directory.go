// Package servicepoints proxies the carrier's pickup-point lookup with an
// optional redis read-through cache. The lookup is read-only and consumed
// by checkout before any fulfillment state exists, so a stale entry is
// harmless within its TTL.
package servicepoints

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"reloved/internal/shipping"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 10 * time.Minute

type carrierLookup interface {
	ServicePoints(ctx context.Context, country, postalCode string) ([]shipping.ServicePoint, error)
}

type Directory struct {
	carrier carrierLookup
	cache   *redis.Client // nil disables caching
}

func NewDirectory(carrier carrierLookup, cache *redis.Client) *Directory {
	return &Directory{carrier: carrier, cache: cache}
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Lookup returns pickup points for country + postal code, from cache when
// possible. Cache failures fall through to the carrier, never to the
// caller.
func (d *Directory) Lookup(ctx context.Context, country, postalCode string) ([]shipping.ServicePoint, error) {
	key := fmt.Sprintf("service_points:%s:%s", country, postalCode)

	if d.cache != nil {
		// redis.Nil and transport errors both fall through to the carrier
		if val, err := d.cache.Get(ctx, key).Result(); err == nil {
			var points []shipping.ServicePoint
			if jerr := json.Unmarshal([]byte(val), &points); jerr == nil {
				return points, nil
			}
		}
	}

	points, err := d.carrier.ServicePoints(ctx, country, postalCode)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		if b, jerr := json.Marshal(points); jerr == nil {
			_ = d.cache.Set(ctx, key, b, cacheTTL).Err()
		}
	}
	return points, nil
}

// Package cache holds a redis-backed cache of paginated contact listings.
//
// Listing responses are cached per (owner, filters, page, limit) with a short
// TTL; every contact mutation invalidates all of that owner's keys. The cache
// is an optimization only: the service runs identically without it, just
// hitting the database on every listing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// listingTTL bounds staleness if an invalidation is ever missed.
const listingTTL = 5 * time.Minute

// Key identifies one cached listing variant for an owner.
type Key struct {
	Filters map[string]string
	Page    int
	Limit   int
}

// ListingCache wraps a redis client for contact-listing caching.
type ListingCache struct {
	client *redis.Client
}

// New connects to redis at addr and verifies the connection.
func New(ctx context.Context, addr, password string) (*ListingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: pinging redis at %s: %w", addr, err)
	}

	return &ListingCache{client: client}, nil
}

// Close releases the underlying redis connection pool.
func (c *ListingCache) Close() error {
	return c.client.Close()
}

// buildKey renders a cache key under the owner's prefix. All keys for one
// owner share the "contacts:user:<id>:" prefix so InvalidateUser can match
// them with a single pattern.
func buildKey(userID string, key Key) string {
	k := fmt.Sprintf("contacts:user:%s", userID)
	// Fixed field order keeps the key deterministic across requests.
	for _, f := range []string{"first_name", "last_name", "phone_number", "address"} {
		if v := key.Filters[f]; v != "" {
			k += fmt.Sprintf(":%s=%s", f, v)
		}
	}
	k += fmt.Sprintf(":page:%d:limit:%d", key.Page, key.Limit)
	return k
}

// Get unmarshals a cached listing into dest. The boolean reports whether the
// key was present; a miss is not an error.
func (c *ListingCache) Get(ctx context.Context, userID string, key Key, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, buildKey(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: getting listing: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false, fmt.Errorf("cache: decoding listing: %w", err)
	}
	return true, nil
}

// Set stores a listing result under the owner's key with the standard TTL.
func (c *ListingCache) Set(ctx context.Context, userID string, key Key, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encoding listing: %w", err)
	}

	if err := c.client.Set(ctx, buildKey(userID, key), payload, listingTTL).Err(); err != nil {
		return fmt.Errorf("cache: storing listing: %w", err)
	}
	return nil
}

// InvalidateUser removes every cached listing for the owner. Called after any
// contact mutation so the next listing reflects it.
func (c *ListingCache) InvalidateUser(ctx context.Context, userID string) error {
	pattern := fmt.Sprintf("contacts:user:%s:*", userID)

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			// Keep deleting the remaining keys; the TTL bounds any leftovers.
			continue
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache: scanning keys for user %s: %w", userID, err)
	}

	return nil
}

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps catalog read models in Redis so terminals polling the product
// grid do not hammer Postgres.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func productsKey(storeID string) string   { return fmt.Sprintf("pos:catalog:%s:products", storeID) }
func categoriesKey(storeID string) string { return fmt.Sprintf("pos:catalog:%s:categories", storeID) }
func discountsKey(storeID string) string  { return fmt.Sprintf("pos:catalog:%s:discounts", storeID) }

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate drops all cached catalog payloads for a store. Called when the
// external catalog system signals a change.
func (c *Cache) Invalidate(ctx context.Context, storeID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, productsKey(storeID), categoriesKey(storeID), discountsKey(storeID)).Err()
}

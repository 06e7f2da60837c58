package cache

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

// Cache is a small JSON read-through cache over Redis, used for the menu and
// category listings that every client hits on open. A nil Cache is valid and
// behaves as a miss, so the app runs without Redis configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to REDIS_ADDR. It returns nil when the address is unset or the
// server is unreachable; callers treat nil as cache-disabled.
func New() *Cache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set, menu cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Println("redis unreachable, menu cache disabled:", err)
		return nil
	}
	return &Cache{client: client, ttl: defaultTTL}
}

// NewWithClient wires an existing client, mainly for tests.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Get unmarshals the cached value into dest and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Println("cache get failed:", err)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Println("cache decode failed:", err)
		return false
	}
	return true
}

// Set stores the value as JSON with the cache TTL. Failures are logged and
// ignored; the cache is never load-bearing.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Println("cache encode failed:", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Println("cache set failed:", err)
	}
}

// Invalidate drops the given keys after a write to the underlying collection.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Println("cache invalidate failed:", err)
	}
}

package introspect

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tokengate/tokengate/internal/gate"
)

// Cache stores active introspection results for reuse within their TTL.
// Keys are SHA-256 digests of the presented token, never the token itself.
type Cache interface {
	// Get retrieves a cached result. Returns false on miss or expiry.
	Get(ctx context.Context, key string) (*gate.AccessToken, bool)

	// Set stores a result for at most ttl.
	Set(ctx context.Context, key string, token *gate.AccessToken, ttl time.Duration)
}

// cacheKey digests a token for use as a cache key.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// memoryEntry is a cached result with its expiry instant.
type memoryEntry struct {
	token     *gate.AccessToken
	expiresAt time.Time
}

// MemoryCache is a process-local Cache. Expired entries are dropped lazily on
// read. Safe for concurrent use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an in-memory introspection cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (*gate.AccessToken, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.token, true
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, token *gate.AccessToken, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{token: token, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// RedisCache is a Redis-backed Cache for multi-instance deployments. Results
// are stored as JSON with Redis-side expiry.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCache creates a Redis-backed introspection cache. keyPrefix
// namespaces the keys, e.g. "tokengate:introspect:".
func NewRedisCache(client *redis.Client, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = "tokengate:introspect:"
	}
	return &RedisCache{client: client, keyPrefix: keyPrefix}
}

// Get implements Cache. Redis errors degrade to a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*gate.AccessToken, bool) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var token gate.AccessToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, false
	}
	return &token, true
}

// Set implements Cache. Redis errors are ignored: the cache is advisory and
// the next request simply introspects again.
func (c *RedisCache) Set(ctx context.Context, key string, token *gate.AccessToken, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(token)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.keyPrefix+key, data, ttl)
}

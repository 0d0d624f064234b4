package sentiment

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores model verdicts keyed by normalized message text so repeated
// messages are not re-sent to the model collaborator. The cache is injected
// into and owned by the Scorer; there is no global state.
type Cache interface {
	Get(ctx context.Context, key string) (ModelVerdict, bool)
	Set(ctx context.Context, key string, v ModelVerdict)
}

// LRUCache is a bounded in-memory cache with least-recently-used eviction.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type lruEntry struct {
	key     string
	verdict ModelVerdict
}

// NewLRUCache creates an LRU cache holding at most capacity entries.
func NewLRUCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached verdict and marks the entry most recently used.
func (c *LRUCache) Get(_ context.Context, key string) (ModelVerdict, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return ModelVerdict{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*lruEntry).verdict, true
}

// Set stores a verdict, evicting the least recently used entry when full.
func (c *LRUCache) Set(_ context.Context, key string, v ModelVerdict) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*lruEntry).verdict = v
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*lruEntry).key)
		}
	}

	c.entries[key] = c.order.PushFront(&lruEntry{key: key, verdict: v})
}

// Len returns the current number of cached entries.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// RedisCache stores verdicts in Redis so multiple engine processes can share
// one model-output cache. Entries carry a TTL instead of LRU eviction.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

const redisKeyPrefix = "conversa:sentiment:"

// NewRedisCache creates a Redis-backed cache. A zero TTL means entries expire
// after 24 hours.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Get fetches a cached verdict. Redis errors are treated as cache misses so
// a degraded cache never fails scoring.
func (c *RedisCache) Get(ctx context.Context, key string) (ModelVerdict, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		return ModelVerdict{}, false
	}

	var v ModelVerdict
	if err := json.Unmarshal(data, &v); err != nil {
		return ModelVerdict{}, false
	}
	return v, true
}

// Set stores a verdict with the configured TTL. Errors are ignored; the cache
// is an optimization, not a source of truth.
func (c *RedisCache) Set(ctx context.Context, key string, v ModelVerdict) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl)
}

// nopCache disables caching.
type nopCache struct{}

func (nopCache) Get(context.Context, string) (ModelVerdict, bool) { return ModelVerdict{}, false }
func (nopCache) Set(context.Context, string, ModelVerdict)        {}

// NewNopCache returns a cache that stores nothing.
func NewNopCache() Cache {
	return nopCache{}
}

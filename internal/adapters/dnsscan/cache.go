package dnsscan

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result is one domain's resolution outcome, cached across scans
type Result struct {
	Exists       bool `json:"exists"`
	HasMX        bool `json:"has_mx"`
	AddressCount int  `json:"address_count"`
}

// Cache stores resolution results keyed by domain
type Cache interface {
	Get(ctx context.Context, domain string) (Result, bool)
	Set(ctx context.Context, domain string, res Result)
}

// LRUCache is a size-bounded in-memory cache. Entries past capacity are
// evicted least-recently-used first.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type lruEntry struct {
	domain string
	res    Result
}

// NewLRUCache creates a cache holding at most capacity entries
func NewLRUCache(capacity int) *LRUCache {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

func (c *LRUCache) Get(_ context.Context, domain string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[domain]
	if !ok {
		return Result{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*lruEntry).res, true
}

func (c *LRUCache) Set(_ context.Context, domain string, res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[domain]; ok {
		elem.Value.(*lruEntry).res = res
		c.order.MoveToFront(elem)
		return
	}
	c.entries[domain] = c.order.PushFront(&lruEntry{domain: domain, res: res})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*lruEntry).domain)
	}
}

// Len reports the current entry count
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// RedisCache shares resolution results across instances with a TTL.
// Redis errors are treated as cache misses; the scan proceeds either way.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) key(domain string) string {
	return "dnsscan:" + domain
}

func (c *RedisCache) Get(ctx context.Context, domain string) (Result, bool) {
	raw, err := c.client.Get(ctx, c.key(domain)).Bytes()
	if err != nil {
		return Result{}, false
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return Result{}, false
	}
	return res, true
}

func (c *RedisCache) Set(ctx context.Context, domain string, res Result) {
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(domain), raw, c.ttl)
}

// TieredCache checks an in-memory cache before falling through to a shared
// backend, writing back to both
type TieredCache struct {
	local  Cache
	shared Cache
}

func NewTieredCache(local, shared Cache) *TieredCache {
	return &TieredCache{local: local, shared: shared}
}

func (c *TieredCache) Get(ctx context.Context, domain string) (Result, bool) {
	if res, ok := c.local.Get(ctx, domain); ok {
		return res, true
	}
	res, ok := c.shared.Get(ctx, domain)
	if ok {
		c.local.Set(ctx, domain, res)
	}
	return res, ok
}

func (c *TieredCache) Set(ctx context.Context, domain string, res Result) {
	c.local.Set(ctx, domain, res)
	c.shared.Set(ctx, domain, res)
}

// Package cache is a small TTL cache for profile-visible aggregates. Sync
// and watch-status mutations invalidate by glob pattern, so a content
// refresh drops every profile's cached view in one call.
package cache

import (
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultSize = 1024

type Cache struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, []byte]
}

func New(ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, []byte](defaultSize, nil, ttl),
	}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(key)
}

func (c *Cache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, value)
}

// Invalidate removes every key matching the glob pattern, e.g.
// "profile:*:shows". A bad pattern is logged and ignored; the cache is an
// optimization and must never fail a request.
func (c *Cache) Invalidate(pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.lru.Keys() {
		ok, err := path.Match(pattern, key)
		if err != nil {
			slog.Warn("Invalid cache pattern", "pattern", pattern, "error", err)
			return
		}
		if ok {
			c.lru.Remove(key)
		}
	}
}

package rest

import (
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// defaultCacheMaxSize bounds the number of cached GET responses.
const defaultCacheMaxSize = 256

// responseCache holds decoded-ready response bodies for idempotent GETs.
// Entries expire after a per-call TTL; eviction is best-effort.
type responseCache struct {
	entries sync.Map
	maxSize int

	mu    sync.Mutex
	count int
}

// cacheEntry is a cached response body with expiry.
type cacheEntry struct {
	body      []byte
	expiresAt time.Time
	createdAt time.Time
}

func newResponseCache(maxSize int) *responseCache {
	if maxSize <= 0 {
		maxSize = defaultCacheMaxSize
	}
	return &responseCache{maxSize: maxSize}
}

// cacheKey builds a key from the request method, path, and encoded query.
func cacheKey(method, path, query string) string {
	h := xxhash.New()
	_, _ = h.WriteString(method)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(path)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(query)
	return strconv.FormatUint(h.Sum64(), 16)
}

// get returns the cached body for key if present and unexpired.
func (c *responseCache) get(key string) ([]byte, bool) {
	val, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(key)
		c.mu.Lock()
		c.count--
		c.mu.Unlock()
		return nil, false
	}
	return entry.body, true
}

// put stores a response body under key for the given TTL.
func (c *responseCache) put(key string, body []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count >= c.maxSize {
		now := time.Now()
		evicted := 0
		c.entries.Range(func(k, v any) bool {
			if now.After(v.(*cacheEntry).expiresAt) {
				c.entries.Delete(k)
				evicted++
			}
			return evicted < 32
		})
		c.count -= evicted

		// Still over limit: evict the oldest entry.
		if c.count >= c.maxSize {
			var oldest time.Time
			var oldestKey any
			c.entries.Range(func(k, v any) bool {
				entry := v.(*cacheEntry)
				if oldest.IsZero() || entry.createdAt.Before(oldest) {
					oldest = entry.createdAt
					oldestKey = k
				}
				return true
			})
			if oldestKey != nil {
				c.entries.Delete(oldestKey)
				c.count--
			}
		}
	}

	now := time.Now()
	c.entries.Store(key, &cacheEntry{
		body:      body,
		expiresAt: now.Add(ttl),
		createdAt: now,
	})
	c.count++
}

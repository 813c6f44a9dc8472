package twitterbot

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores raw GET response bodies keyed by request URL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, body []byte)
}

// MemoryCache is an in-process LRU cache with per-entry expiry.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCache creates a cache holding at most size entries for ttl each.
// A zero ttl keeps entries until they are evicted by size.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 256
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get returns the cached body for key.
func (m *MemoryCache) Get(key string) ([]byte, bool) {
	return m.lru.Get(key)
}

// Set stores body under key.
func (m *MemoryCache) Set(key string, body []byte) {
	m.lru.Add(key, body)
}

// Len returns the number of live entries.
func (m *MemoryCache) Len() int {
	return m.lru.Len()
}

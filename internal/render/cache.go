// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache memoizes formatted output keyed by formatter name and content hash.
// Historical turns are re-rendered on every frame of the dashboard; the
// cache makes that a map lookup. Safe for concurrent use.
type Cache struct {
	store *cache.Cache
}

// NewCache creates a cache whose entries expire ttl after insertion.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{store: cache.New(ttl, 2*ttl)}
}

// Render sanitizes raw, formats it with f and caches the result. Errors
// are not cached.
func (c *Cache) Render(f Formatter, raw string) (string, error) {
	key := cacheKey(f, raw)
	if v, ok := c.store.Get(key); ok {
		return v.(string), nil
	}

	out, err := Render(f, raw)
	if err != nil {
		return "", err
	}
	c.store.SetDefault(key, out)
	return out, nil
}

// Len returns the number of cached entries, including expired ones not yet
// cleaned up.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// Flush drops every entry. Called when the theme or width changes.
func (c *Cache) Flush() {
	c.store.Flush()
}

func cacheKey(f Formatter, raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return f.Name() + ":" + hex.EncodeToString(sum[:])
}

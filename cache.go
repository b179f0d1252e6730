// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// CacheKey builds the cache key for base name and a validated context.
//
// Format is "base|dim1:value1|dim2:value2" with dimensions sorted
// lexicographically, so insertion order never changes the key.
func CacheKey(baseName string, variants VariantContext) string {
	dims := make([]string, 0, len(variants))
	size := len(baseName)
	for dim, value := range variants {
		dims = append(dims, dim)
		size += len(dim) + len(value) + 2
	}
	sort.Strings(dims)

	var b strings.Builder
	b.Grow(size)
	b.WriteString(baseName)
	for _, dim := range dims {
		b.WriteByte('|')
		b.WriteString(dim)
		b.WriteByte(':')
		b.WriteString(variants[dim])
	}

	return b.String()
}

// Cache memoizes resolutions and loaded content by normalized key.
//
// Every lookup validates the raw context first, so contexts that differ only
// in order or in disallowed pairs share one entry. Safe for concurrent use.
type Cache struct {
	// results stores resolutions by key.
	results map[string]Resolution
	// contents stores loaded bytes and their locator by key.
	contents map[string]contentEntry
	allowed  AllowedVariants
	// epoch advances on every invalidation.
	epoch uint64

	hits   atomic.Int64
	misses atomic.Int64
	// mu guards results and contents.
	mu sync.RWMutex
}

// NewCache creates an empty cache validating contexts with allowed.
func NewCache(allowed AllowedVariants) *Cache {
	return &Cache{
		allowed:  allowed,
		results:  make(map[string]Resolution),
		contents: make(map[string]contentEntry),
	}
}

// contentEntry is loaded content tagged with the file it was read from.
type contentEntry struct {
	locator string
	data    []byte
}

// Key validates raw and returns the cache key for baseName.
func (c *Cache) Key(baseName string, raw VariantContext) string {
	return CacheKey(baseName, c.allowed.Validate(raw))
}

// Get returns the cached resolution for baseName and raw context.
func (c *Cache) Get(baseName string, raw VariantContext) (Resolution, bool) {
	return c.getKey(c.Key(baseName, raw))
}

// Put stores res for baseName and raw context, replacing any previous entry.
func (c *Cache) Put(baseName string, raw VariantContext, res Resolution) {
	c.putKey(c.Key(baseName, raw), res, c.Epoch())
}

// GetContent returns cached content for baseName and raw context.
//
// A hit requires the entry to have been read from locator.
func (c *Cache) GetContent(baseName string, raw VariantContext, locator string) ([]byte, bool) {
	return c.getContentKey(c.Key(baseName, raw), locator)
}

// PutContent stores a copy of data read from locator for baseName and raw context.
func (c *Cache) PutContent(baseName string, raw VariantContext, locator string, data []byte) {
	c.putContentKey(c.Key(baseName, raw), locator, data, c.Epoch())
}

// Invalidate drops every entry whose key starts with prefix and returns the count.
//
// Empty prefix clears the cache.
func (c *Cache) Invalidate(prefix string) int {
	return c.drop(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// InvalidateBase drops every entry for exactly baseName and returns the count.
//
// Unlike Invalidate(baseName) it keeps entries of longer base names sharing the prefix.
func (c *Cache) InvalidateBase(baseName string) int {
	return c.drop(func(key string) bool {
		return key == baseName || strings.HasPrefix(key, baseName+"|")
	})
}

// Len returns the number of cached resolutions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.results)
}

// Keys returns cached resolution keys sorted lexicographically.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.results))
	for key := range c.results {
		keys = append(keys, key)
	}
	c.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Hits returns the number of resolution lookups served from cache.
func (c *Cache) Hits() int64 {
	return c.hits.Load()
}

// Misses returns the number of resolution lookups not found in cache.
func (c *Cache) Misses() int64 {
	return c.misses.Load()
}

// Epoch returns the invalidation counter.
//
// Writers capture it before computing a value; a store tagged with an older
// epoch is discarded because an invalidation happened in between.
func (c *Cache) Epoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.epoch
}

// getKey returns a resolution by precomputed key.
func (c *Cache) getKey(key string) (Resolution, bool) {
	c.mu.RLock()
	res, ok := c.results[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return Resolution{}, false
	}

	c.hits.Add(1)
	return cloneResolution(res), true
}

// putKey stores a resolution by precomputed key unless the cache was
// invalidated after epoch. It reports whether the entry was stored.
func (c *Cache) putKey(key string, res Resolution, epoch uint64) bool {
	res = cloneResolution(res)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return false
	}

	c.results[key] = res
	return true
}

// getContentKey returns a copy of content cached by key and read from locator.
func (c *Cache) getContentKey(key string, locator string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.contents[key]
	c.mu.RUnlock()

	if !ok || entry.locator != locator {
		return nil, false
	}

	return append([]byte(nil), entry.data...), true
}

// putContentKey stores a copy of data read from locator unless the cache was
// invalidated after epoch.
func (c *Cache) putContentKey(key string, locator string, data []byte, epoch uint64) bool {
	data = append([]byte(nil), data...)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return false
	}

	c.contents[key] = contentEntry{locator: locator, data: data}
	return true
}

// drop removes resolutions and contents whose key matches.
func (c *Cache) drop(match func(string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	n := 0
	for key := range c.results {
		if match(key) {
			delete(c.results, key)
			n++
		}
	}

	for key := range c.contents {
		if match(key) {
			delete(c.contents, key)
		}
	}

	return n
}

// cloneResolution copies the context map so cached values stay immutable.
func cloneResolution(res Resolution) Resolution {
	if res.Variants != nil {
		res.Variants = res.Variants.Clone()
	}

	if res.Candidate.Variants != nil {
		res.Candidate.Variants = res.Candidate.Variants.Clone()
	}

	return res
}

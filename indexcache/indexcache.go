// Package indexcache bounds the cost of repeatedly building a suffix-array
// index for the same old buffer within one process. It is purely a
// performance optimization: nothing in bsdiff's correctness depends on a
// cache hit, and a cold cache produces byte-identical patches to a warm
// one.
package indexcache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/binarydelta/bsdiff/suffixarray"
)

// Fingerprint is a non-cryptographic 64-bit digest of an old buffer, used
// only to key the in-process cache. It carries no integrity guarantee:
// two different buffers may collide, in which case a cache hit would hand
// back the wrong index. Cache lifetime is a single process, so this risk
// is accepted rather than paid for with a cryptographic hash on every
// Diff call.
type Fingerprint uint64

// Fingerprint64 computes the cache key for buf.
func Fingerprint64(buf []byte) Fingerprint {
	return Fingerprint(xxhash.Sum64(buf))
}

// Cache holds built suffix-array indices keyed by Fingerprint, evicting
// the least recently used entry once it holds more than its configured
// size. A Cache is safe for concurrent use.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[Fingerprint, *suffixarray.Index]
}

// New returns a Cache holding at most size entries. A size <= 0 returns a
// Cache that never stores anything (Get always misses, Put is a no-op),
// which callers use to disable caching without special-casing call sites.
func New(size int) *Cache {
	if size <= 0 {
		return &Cache{}
	}
	c, err := lru.New[Fingerprint, *suffixarray.Index](size)
	if err != nil {
		// Only returned for size <= 0, already excluded above.
		return &Cache{}
	}
	return &Cache{lru: c}
}

// Get returns the cached index for key, if present.
func (c *Cache) Get(key Fingerprint) (*suffixarray.Index, bool) {
	if c.lru == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(key)
}

// Put stores ix under key, possibly evicting the least recently used
// entry.
func (c *Cache) Put(key Fingerprint, ix *suffixarray.Index) {
	if c.lru == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, ix)
}

package promptpick

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ResultCache caches compositions keyed by document hash, key lines, seed and
// engine settings. Entries expire after TTL and the least recently used entry
// is evicted at capacity. Callers always receive their own copy.
type ResultCache struct {
	lru       *expirable.LRU[string, *Composition]
	config    ResultCacheConfig
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// ResultCacheConfig configures the result cache behavior.
type ResultCacheConfig struct {
	// TTL is how long compositions are cached. Default: 10 minutes.
	TTL time.Duration

	// MaxEntries is the maximum number of cached compositions. Default: 512.
	MaxEntries int
}

// ResultCacheStats tracks cache performance metrics.
type ResultCacheStats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	EntryCount int
}

// DefaultResultCacheConfig returns the default result cache configuration.
func DefaultResultCacheConfig() ResultCacheConfig {
	return ResultCacheConfig{
		TTL:        DefaultResultCacheTTL,
		MaxEntries: DefaultResultCacheMaxEntries,
	}
}

// NewResultCache creates a new result cache.
func NewResultCache(config ResultCacheConfig) *ResultCache {
	if config.TTL <= 0 {
		config.TTL = DefaultResultCacheTTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultResultCacheMaxEntries
	}

	c := &ResultCache{config: config}
	c.lru = expirable.NewLRU[string, *Composition](config.MaxEntries, func(string, *Composition) {
		c.evictions.Add(1)
	}, config.TTL)
	return c
}

// Get returns a copy of the cached composition for key.
func (c *ResultCache) Get(key string) (*Composition, bool) {
	comp, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return comp.Clone(), true
}

// Set stores a copy of comp under key.
func (c *ResultCache) Set(key string, comp *Composition) {
	if comp == nil {
		return
	}
	c.lru.Add(key, comp.Clone())
}

// Invalidate removes one entry
func (c *ResultCache) Invalidate(key string) {
	c.lru.Remove(key)
}

// Clear removes all entries from the cache.
func (c *ResultCache) Clear() {
	c.lru.Purge()
}

// Stats returns current cache statistics.
func (c *ResultCache) Stats() ResultCacheStats {
	return ResultCacheStats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Evictions:  c.evictions.Load(),
		EntryCount: c.lru.Len(),
	}
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (c *ResultCache) HitRate() float64 {
	hits := c.hits.Load()
	total := hits + c.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// cacheKey fingerprints everything that influences a composition.
func (e *Engine) cacheKey(doc *Document, lines []string, seed uint64) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(strconv.Itoa(len(s))))
		h.Write([]byte{':'})
		h.Write([]byte(s))
	}
	write(doc.hash)
	write(string(doc.format))
	write(strconv.FormatUint(seed, 10))
	write(strconv.Itoa(e.config.maxDepth))
	write(e.config.lineSeparator)
	write(strings.Join(e.config.directiveKinds, ","))
	write(strconv.Itoa(len(lines)))
	for _, l := range lines {
		write(l)
	}
	return hex.EncodeToString(h.Sum(nil))
}

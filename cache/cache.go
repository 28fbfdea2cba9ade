// api/cache/cache.go

// Package cache provides the bounded in-process TTL cache the read paths
// sit behind. Entries expire by age, are evicted oldest-first under size
// pressure, and can be dropped in bulk by key pattern. Instances are built
// explicitly and owned by the composition root; there are no package-level
// singletons here.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	logger "github.com/gurukul-labs/gurukul/api/logging"
)

type entry struct {
	value       any
	createdAt   time.Time
	accessCount uint64
	size        int64
}

// Config holds the tuning knobs for one cache instance.
type Config struct {
	TTL           time.Duration
	MaxEntries    int
	SweepInterval time.Duration
}

// Cache is a TTL'd key-value store guarded by a single RWMutex. An entry is
// readable only while younger than the TTL; expired entries are logically
// absent even before the sweeper removes them.
type Cache struct {
	name          string
	ttl           time.Duration
	maxSize       int
	sweepInterval time.Duration

	mu          sync.RWMutex
	entries     map[string]*entry
	memoryBytes int64

	hits   uint64
	misses uint64

	stopCh    chan struct{}
	closeOnce sync.Once
}

// Stats is a read-only snapshot of one cache instance.
type Stats struct {
	Name            string  `json:"name"`
	Size            int     `json:"size"`
	MaxSize         int     `json:"max_size"`
	HitCount        uint64  `json:"hit_count"`
	MissCount       uint64  `json:"miss_count"`
	HitRate         float64 `json:"hit_rate"`
	TTL             string  `json:"ttl"`
	EstimatedMemory int64   `json:"estimated_memory_bytes"`
}

// EntryInfo is one row of the admin entry listing.
type EntryInfo struct {
	Key         string `json:"key"`
	Age         string `json:"age"`
	AccessCount uint64 `json:"access_count"`
}

// New builds a cache and starts its sweeper goroutine. Out-of-range config
// values fall back to safe defaults. Callers own the instance and must
// Close it on shutdown.
func New(name string, cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	c := &Cache{
		name:          name,
		ttl:           cfg.TTL,
		maxSize:       cfg.MaxEntries,
		sweepInterval: cfg.SweepInterval,
		entries:       make(map[string]*entry),
		stopCh:        make(chan struct{}),
	}
	go c.sweep()

	logger.Info("Cache initialized",
		zap.String("cache", name),
		zap.Duration("ttl", cfg.TTL),
		zap.Int("maxEntries", cfg.MaxEntries),
		zap.Duration("sweepInterval", cfg.SweepInterval))
	return c
}

// Name returns the cache's name.
func (c *Cache) Name() string {
	return c.name
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the live entry under key, or runs producer on a miss and
// stores its result. Producer errors propagate verbatim and nothing is
// stored for them, so the next Get retries. The producer runs outside the
// lock; concurrent misses on the same key may race to produce, and the
// last writer wins.
func (c *Cache) Get(ctx context.Context, key string, producer func(context.Context) (any, error)) (any, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && !c.expired(e, time.Now()) {
		atomic.AddUint64(&c.hits, 1)
		atomic.AddUint64(&e.accessCount, 1)
		logger.Debug("Cache hit", zap.String("cache", c.name), zap.String("key", key))
		return e.value, nil
	}

	atomic.AddUint64(&c.misses, 1)
	logger.Debug("Cache miss", zap.String("cache", c.name), zap.String("key", key))

	value, err := producer(ctx)
	if err != nil {
		return nil, err
	}

	c.Set(key, value)
	return value, nil
}

// Set stores value under key with a fresh timestamp, replacing any previous
// entry. At capacity the entry with the oldest createdAt goes first, so the
// entry count never exceeds the configured maximum.
func (c *Cache) Set(key string, value any) {
	size := entrySize(key, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.memoryBytes -= old.size
	} else {
		for len(c.entries) >= c.maxSize {
			c.evictOldestLocked()
		}
	}

	c.entries[key] = &entry{value: value, createdAt: time.Now(), size: size}
	c.memoryBytes += size
}

// Delete removes one entry and reports whether it existed.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.memoryBytes -= e.size
	delete(c.entries, key)
	return true
}

// InvalidatePattern deletes every key matching the regular expression and
// returns how many went. Matching nothing is success, not an error.
func (c *Cache) InvalidatePattern(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("invalid invalidation pattern %q: %w", pattern, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if re.MatchString(k) {
			c.memoryBytes -= e.size
			delete(c.entries, k)
			removed++
		}
	}

	if removed > 0 {
		logger.Debug("Invalidated cache entries by pattern",
			zap.String("cache", c.name),
			zap.String("pattern", pattern),
			zap.Int("removed", removed))
	}
	return removed, nil
}

// Clear drops every entry and resets the hit and miss counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.memoryBytes = 0
	atomic.StoreUint64(&c.hits, 0)
	atomic.StoreUint64(&c.misses, 0)
}

// Stats returns a snapshot of the cache's counters. HitRate is zero when no
// request has been served yet.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	size := len(c.entries)
	memory := c.memoryBytes
	c.mu.RUnlock()

	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Name:            c.name,
		Size:            size,
		MaxSize:         c.maxSize,
		HitCount:        hits,
		MissCount:       misses,
		HitRate:         hitRate,
		TTL:             c.ttl.String(),
		EstimatedMemory: memory,
	}
}

// Entries lists the live entries sorted by key, for the admin endpoints.
func (c *Cache) Entries() []EntryInfo {
	now := time.Now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]EntryInfo, 0, len(c.entries))
	for k, e := range c.entries {
		if c.expired(e, now) {
			continue
		}
		infos = append(infos, EntryInfo{
			Key:         k,
			Age:         now.Sub(e.createdAt).Round(time.Millisecond).String(),
			AccessCount: atomic.LoadUint64(&e.accessCount),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// Close stops the sweeper and drops all entries. Safe to call twice.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCh)
		c.mu.Lock()
		c.entries = make(map[string]*entry)
		c.memoryBytes = 0
		c.mu.Unlock()
	})
}

func (c *Cache) expired(e *entry, now time.Time) bool {
	return now.Sub(e.createdAt) >= c.ttl
}

// sweep removes expired entries on a fixed cadence so write-once keys
// cannot pin memory until the next read touches them. Racing a concurrent
// Get is harmless: the sweeper only removes what is already logically
// expired.
func (c *Cache) sweep() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Cache) removeExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if c.expired(e, now) {
			c.memoryBytes -= e.size
			delete(c.entries, k)
			removed++
		}
	}

	if removed > 0 {
		logger.Debug("Swept expired cache entries",
			zap.String("cache", c.name),
			zap.Int("removed", removed))
	}
}

// evictOldestLocked removes the entry with the globally oldest createdAt.
// Ties go to whichever the map yields first.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	found := false

	for k, e := range c.entries {
		if !found || e.createdAt.Before(oldestAt) {
			found = true
			oldestKey = k
			oldestAt = e.createdAt
		}
	}
	if !found {
		return
	}

	c.memoryBytes -= c.entries[oldestKey].size
	delete(c.entries, oldestKey)
	logger.Debug("Evicted oldest cache entry",
		zap.String("cache", c.name),
		zap.String("key", oldestKey))
}

// entrySize approximates an entry's footprint as key length plus JSON
// length of the value at store time. Observability only; values that do
// not marshal count just their key.
func entrySize(key string, value any) int64 {
	size := int64(len(key))
	if data, err := json.Marshal(value); err == nil {
		size += int64(len(data))
	}
	return size
}

package cache

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"observatory/app/interfaces"
	"observatory/app/values"
)

// Cache is a size-bounded LRU memo for pipeline stage outputs and loaded row sets.
// Stage entries share row maps with their input, so only slice overhead is
// charged against the size limit for them.
type Cache struct {
	storage         map[string]*Entry
	baseDataStorage map[string]*BaseDataEntry
	maxSize         int64
	currentSize     int64
	lru             *lruList
	mutex           sync.Mutex
	logger          Logger

	hits         int64
	misses       int64
	baseDataHits int64
}

// NewCache creates a new cache. A non-positive maxSize selects DefaultCacheMaxSize.
func NewCache(maxSize int64) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheMaxSize
	}

	return &Cache{
		storage:         make(map[string]*Entry),
		baseDataStorage: make(map[string]*BaseDataEntry),
		maxSize:         maxSize,
		lru:             newLRUList(),
	}
}

// SetLogger sets the logger for the cache
func (c *Cache) SetLogger(logger Logger) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.logger = logger
}

func (c *Cache) debugf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Log("debug", fmt.Sprintf(format, args...))
	}
}

// Get retrieves a stage entry and marks it as recently used
func (c *Cache) Get(key string) (*Entry, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.storage[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		c.debugf("[CACHE_MISS] Key: %s", key)
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	c.debugf("[CACHE_HIT] Key: %s, Rows: %d, Size: %d bytes", key, len(entry.Result.Rows), entry.Size)

	entry.AccessTime = time.Now().Unix()
	c.lru.Touch(key)
	return entry, true
}

// Store adds or replaces a stage entry.
// Entries larger than the whole cache are skipped.
func (c *Cache) Store(key string, result *interfaces.StageResult) {
	if result == nil {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	size := sharedRowsSize(key, len(result.Rows))
	c.removeLocked(key)

	if !c.evictToMakeSpace(size) {
		c.debugf("[CACHE_SKIP] Entry too large: %s (%d bytes > %d limit)", key, size, c.maxSize)
		return
	}

	now := time.Now()
	c.storage[key] = &Entry{
		Result:     *result,
		Size:       size,
		AccessTime: now.Unix(),
		CreateTime: now,
	}
	c.currentSize += size
	c.lru.Touch(key)
	c.debugf("[CACHE_STORE] Key: %s, Rows: %d, Size: %d bytes, Cache: %d/%d bytes",
		key, len(result.Rows), size, c.currentSize, c.maxSize)
}

// GetBaseData returns a cached row set for filePath when the file has not
// been modified since it was cached.
func (c *Cache) GetBaseData(key string, filePath string) (*BaseDataEntry, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.baseDataStorage[key]
	if !exists {
		return nil, false
	}

	if info, err := os.Stat(filePath); err != nil || !info.ModTime().Equal(entry.ModTime) {
		c.debugf("[CACHE_BASE_STALE] File changed or missing, dropping: %s", key)
		delete(c.baseDataStorage, key)
		c.currentSize -= entry.Size
		c.lru.Remove(key)
		return nil, false
	}

	atomic.AddInt64(&c.baseDataHits, 1)
	entry.AccessTime = time.Now().Unix()
	c.lru.Touch(key)
	return entry, true
}

// StoreBaseData caches the rows loaded from filePath
func (c *Cache) StoreBaseData(key string, filePath string, cols []string, rows []interfaces.Row) {
	info, err := os.Stat(filePath)
	if err != nil {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	size := baseDataSize(cols, rows)
	c.removeLocked(key)
	if !c.evictToMakeSpace(size) {
		c.debugf("[CACHE_SKIP] Base data too large: %s (%d bytes)", key, size)
		return
	}

	now := time.Now()
	c.baseDataStorage[key] = &BaseDataEntry{
		Rows:       rows,
		Columns:    cols,
		ModTime:    info.ModTime(),
		Size:       size,
		AccessTime: now.Unix(),
		CreateTime: now,
	}
	c.currentSize += size
	c.lru.Touch(key)
}

// Remove removes an entry
func (c *Cache) Remove(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.removeLocked(key)
}

func (c *Cache) removeLocked(key string) {
	if entry, exists := c.storage[key]; exists {
		delete(c.storage, key)
		c.currentSize -= entry.Size
		c.lru.Remove(key)
	}
	if entry, exists := c.baseDataStorage[key]; exists {
		delete(c.baseDataStorage, key)
		c.currentSize -= entry.Size
		c.lru.Remove(key)
	}
}

// Clear removes all entries
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.storage = make(map[string]*Entry)
	c.baseDataStorage = make(map[string]*BaseDataEntry)
	c.currentSize = 0
	c.lru = newLRUList()
}

// Size returns the current cache size in bytes
func (c *Cache) Size() int64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.currentSize
}

// MaxSize returns the maximum cache size
func (c *Cache) MaxSize() int64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.maxSize
}

// EntryCount returns the number of cached stage entries
func (c *Cache) EntryCount() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.storage)
}

// evictToMakeSpace removes least recently used entries until neededSize fits
func (c *Cache) evictToMakeSpace(neededSize int64) bool {
	if neededSize > c.maxSize {
		return false
	}

	for c.currentSize+neededSize > c.maxSize {
		oldestKey, ok := c.lru.RemoveOldest()
		if !ok {
			return c.currentSize+neededSize <= c.maxSize
		}
		var evicted int64
		if entry, exists := c.storage[oldestKey]; exists {
			delete(c.storage, oldestKey)
			evicted = entry.Size
		} else if entry, exists := c.baseDataStorage[oldestKey]; exists {
			delete(c.baseDataStorage, oldestKey)
			evicted = entry.Size
		}
		c.currentSize -= evicted
		if c.logger != nil {
			c.logger.Log("debug", fmt.Sprintf("[CACHE_EVICT] Evicted entry: %s, Size: %d bytes, Remaining Cache: %d/%d bytes",
				oldestKey, evicted, c.currentSize, c.maxSize))
		} else {
			log.Printf("[CACHE_EVICT] Evicted entry: %s (%d bytes)", oldestKey, evicted)
		}
	}

	return true
}

// UpdateMaxSize updates the maximum cache size and evicts if necessary
func (c *Cache) UpdateMaxSize(newMaxSize int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if newMaxSize <= 0 {
		newMaxSize = DefaultCacheMaxSize
	}

	oldMaxSize := c.maxSize
	c.maxSize = newMaxSize
	if c.logger != nil {
		c.logger.Log("info", fmt.Sprintf("[CACHE_RESIZE] Cache size updated from %d to %d bytes", oldMaxSize, newMaxSize))
	}
	c.evictToMakeSpace(0)
}

// InvalidateRowSet removes every stage entry derived from the row set with the given fingerprint
func (c *Cache) InvalidateRowSet(fingerprint string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	prefix := RowSetPrefix(fingerprint)
	var keysToRemove []string
	for key := range c.storage {
		if IsCacheKeyPrefix(prefix, key) {
			keysToRemove = append(keysToRemove, key)
		}
	}
	for _, key := range keysToRemove {
		c.removeLocked(key)
	}
	return len(keysToRemove)
}

// GetCacheStats returns cache statistics
func (c *Cache) GetCacheStats() Stats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stats := Stats{
		TotalEntries: len(c.storage),
		BaseEntries:  len(c.baseDataStorage),
		TotalSize:    c.currentSize,
		MaxSize:      c.maxSize,
		UsagePercent: float64(c.currentSize) / float64(c.maxSize) * 100,
		Hits:         atomic.LoadInt64(&c.hits),
		Misses:       atomic.LoadInt64(&c.misses),
		BaseDataHits: atomic.LoadInt64(&c.baseDataHits),
		StageStats:   make(map[string]StageStats),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}

	for key, entry := range c.storage {
		name := LastStageName(key)
		if name == "" {
			continue
		}
		s := stats.StageStats[name]
		s.EntryCount++
		s.TotalSize += entry.Size
		stats.StageStats[name] = s
	}
	return stats
}

// RowSetPrefix returns the key prefix shared by every entry derived from a row set
func RowSetPrefix(fingerprint string) string {
	return "rows:" + fingerprint
}

// IsCacheKeyPrefix checks if prefixKey is a stage prefix of fullKey
func IsCacheKeyPrefix(prefixKey, fullKey string) bool {
	if !strings.HasPrefix(fullKey, prefixKey) {
		return false
	}
	remainder := strings.TrimPrefix(fullKey, prefixKey)
	return remainder == "" || strings.HasPrefix(remainder, "|")
}

// LastStageName extracts the name of the last stage from a key such as
// `rows:abc|quick:"all"|sort:"latency_ms:desc"`. Separators inside quoted
// stage keys are skipped.
func LastStageName(key string) string {
	i := lastSeparator(key)
	if i < 0 {
		return ""
	}
	part := key[i+1:]
	if j := strings.Index(part, ":"); j >= 0 {
		return part[:j]
	}
	return part
}

// lastSeparator returns the index of the last "|" outside a quoted string
func lastSeparator(key string) int {
	last := -1
	quoted, escaped := false, false
	for i := 0; i < len(key); i++ {
		switch c := key[i]; {
		case escaped:
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case !quoted && c == '|':
			last = i
		}
	}
	return last
}

func sharedRowsSize(key string, rowCount int) int64 {
	return int64(len(key)) + int64(rowCount)*8 + entryOverhead
}

func baseDataSize(cols []string, rows []interfaces.Row) int64 {
	size := int64(entryOverhead)
	for _, c := range cols {
		size += int64(len(c))
	}
	for _, r := range rows {
		size += 48
		for k, v := range r {
			size += int64(len(k)) + 16
			if s, ok := v.(string); ok {
				size += int64(len(s))
			} else if !values.IsNil(v) {
				size += 8
			}
		}
	}
	return size
}

package cache

import (
	"time"

	"observatory/app/interfaces"
)

// Logger interface for cache logging
type Logger = interfaces.Logger

// Entry is one memoized stage output
type Entry struct {
	Result     interfaces.StageResult
	Size       int64
	AccessTime int64
	CreateTime time.Time
}

// BaseDataEntry is a row set loaded from a file, reused while the file is unchanged
type BaseDataEntry struct {
	Rows       []interfaces.Row
	Columns    []string
	ModTime    time.Time
	Size       int64
	AccessTime int64
	CreateTime time.Time
}

// Stats contains cache statistics
type Stats struct {
	TotalEntries int                   `json:"totalEntries"`
	BaseEntries  int                   `json:"baseEntries"`
	TotalSize    int64                 `json:"totalSize"`
	MaxSize      int64                 `json:"maxSize"`
	UsagePercent float64               `json:"usagePercent"`
	Hits         int64                 `json:"hits"`
	Misses       int64                 `json:"misses"`
	BaseDataHits int64                 `json:"baseDataHits"`
	HitRate      float64               `json:"hitRate"`
	StageStats   map[string]StageStats `json:"stageStats"`
}

// StageStats contains statistics for the entries ending in one stage
type StageStats struct {
	EntryCount int   `json:"entryCount"`
	TotalSize  int64 `json:"totalSize"`
}

// DefaultCacheMaxSize is the default cache size limit (100MB)
const DefaultCacheMaxSize = 100 * 1024 * 1024

// Per entry bookkeeping estimate in bytes
const entryOverhead = 96

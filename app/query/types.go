package query

import (
	"context"

	"observatory/app/interfaces"
)

// Type aliases to the interfaces package to avoid import cycles
type Row = interfaces.Row
type StageResult = interfaces.StageResult
type SortConfig = interfaces.SortConfig

// PipelineStage represents a single stage in the derived row pipeline
type PipelineStage interface {
	// Execute processes the input rows and returns the stage output.
	// Implementations never modify the input slice.
	Execute(ctx context.Context, input *StageResult) (*StageResult, error)

	// CanCache returns true if this stage's results can be memoized
	CanCache() bool

	// CacheKey returns a key identifying this stage's parameters
	CacheKey() string

	// Name returns the stage name used in cache keys and logs
	Name() string
}

// Result contains the rows to render plus pagination metadata
type Result struct {
	Rows          []Row `json:"rows"`
	FilteredCount int   `json:"filteredCount"`
	TotalPages    int   `json:"totalPages"`
	Page          int   `json:"page"`
	PageSize      int   `json:"pageSize"`
	Cached        bool  `json:"cached"`
}

// CacheConfig controls memoization
type CacheConfig struct {
	EnableStageCache bool  // Memoize individual stage results
	CacheSizeLimit   int64 // Cache size limit in bytes
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		EnableStageCache: true,
		CacheSizeLimit:   100 * 1024 * 1024,
	}
}

// CacheConfigFromSettings creates cache config based on user settings
func CacheConfigFromSettings(enableCache bool, sizeMB int) CacheConfig {
	return CacheConfig{
		EnableStageCache: enableCache,
		CacheSizeLimit:   int64(sizeMB) * 1024 * 1024,
	}
}

// Stage names
const (
	StageQuickFilter  = "quick"
	StageColumnFilter = "filters"
	StageSort         = "sort"
	StagePage         = "page"
)

package query

import (
	"strconv"

	"observatory/app/cache"
)

// BuildCacheKey creates a memo key from a row-set fingerprint and the stages applied to it.
// Key format: `rows:F|stage1:"key1"|stage2:"key2"|...`, so the key of a stage
// prefix is a prefix of the full key. Stage keys are quoted so a "|" inside
// one cannot end it early.
func BuildCacheKey(fingerprint string, stages []PipelineStage) string {
	key := cache.RowSetPrefix(fingerprint)
	for _, stage := range stages {
		if stage.CanCache() {
			key += "|" + stage.Name() + ":" + strconv.Quote(stage.CacheKey())
		}
	}
	return key
}

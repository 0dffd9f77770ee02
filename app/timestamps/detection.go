package timestamps

import (
	"strings"
)

// DetectTimestampKey attempts to find the most likely timestamp field among keys.
// Preference order:
// 1) Exact name: "timestamp", "created_at", "@timestamp", "time"
// 2) Contains: "timestamp", "datetime", "date", "time", "ts"
// Returns "" if no timestamp field is detected.
func DetectTimestampKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	lower := make([]string, len(keys))
	for i, k := range keys {
		lower[i] = strings.ToLower(strings.TrimSpace(k))
	}
	exacts := []string{"timestamp", "created_at", "@timestamp", "time"}
	for _, ex := range exacts {
		for i, k := range lower {
			if k == ex {
				return keys[i]
			}
		}
	}
	containsSeq := []string{"timestamp", "datetime", "date", "time", "ts"}
	for _, part := range containsSeq {
		for i, k := range lower {
			// latency style fields end in _ms and are durations, not times
			if strings.Contains(k, part) && !strings.HasSuffix(k, "_ms") {
				return keys[i]
			}
		}
	}
	return ""
}

package histogram

import (
	"fmt"
	"sync/atomic"
)

// IncrementVersion increments an atomic version counter and returns the new version string.
// The frontend drops ready events whose version is older than the one it last requested.
func IncrementVersion(tableID string, versionCounter *int64) string {
	newVersion := atomic.AddInt64(versionCounter, 1)
	return fmt.Sprintf("%s:%d", tableID, newVersion)
}

// LoadVersion loads the current version from an atomic counter
func LoadVersion(tableID string, versionCounter *int64) string {
	version := atomic.LoadInt64(versionCounter)
	return fmt.Sprintf("%s:%d", tableID, version)
}

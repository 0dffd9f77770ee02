package timestamps

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts that carry their own zone information
var zonedLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05.000 MST",
	"2006-01-02 15:04:05.000 MST",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05Z",
	time.RFC1123Z,
	time.RFC1123,
}

// Layouts interpreted in the caller supplied location
var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 3:04pm",
	"02/01/2006 3:04 pm",
}

// ParseTimestampMillis tries several common formats and returns epoch milliseconds.
// If loc is nil, timezone-less formats are interpreted as UTC.
func ParseTimestampMillis(s string, loc *time.Location) (int64, bool) {
	ss := strings.TrimSpace(s)
	if ss == "" {
		return 0, false
	}

	// Integer epoch first, it is the most common shape in exported telemetry
	if n, err := strconv.ParseInt(ss, 10, 64); err == nil {
		return EpochToMillis(float64(n)), true
	}
	if f, err := strconv.ParseFloat(ss, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return EpochToMillis(f), true
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, ss); err == nil {
			return t.UnixMilli(), true
		}
	}

	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, ss, loc); err == nil {
			return t.UnixMilli(), true
		}
	}

	return 0, false
}

// EpochToMillis converts an epoch value in seconds or milliseconds to milliseconds.
// Values above 1e12 are taken to be milliseconds already.
func EpochToMillis(n float64) int64 {
	if math.Abs(n) > 1_000_000_000_000 {
		return int64(n)
	}
	return int64(n * 1000)
}

// ToTime converts a row value to a time.
// It accepts time.Time, epoch numbers and any string ParseTimestampMillis understands.
func ToTime(v any, loc *time.Location) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case string:
		ms, ok := ParseTimestampMillis(t, loc)
		if !ok {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).UTC(), true
	case float64:
		if math.IsNaN(t) {
			return time.Time{}, false
		}
		return time.UnixMilli(EpochToMillis(t)).UTC(), true
	case float32:
		return time.UnixMilli(EpochToMillis(float64(t))).UTC(), true
	case int:
		return time.UnixMilli(EpochToMillis(float64(t))).UTC(), true
	case int64:
		return time.UnixMilli(EpochToMillis(float64(t))).UTC(), true
	case int32:
		return time.UnixMilli(EpochToMillis(float64(t))).UTC(), true
	}
	return time.Time{}, false
}

// PatternToLayout converts a display pattern such as "yyyy-MM-dd HH:mm:ss" to a Go layout
func PatternToLayout(pattern string) string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		pattern = DefaultDisplayPattern
	}
	r := strings.NewReplacer(
		"yyyy", "2006",
		"yy", "06",
		"MM", "01",
		"dd", "02",
		"HH", "15",
		"mm", "04",
		"ss", "05",
		"SSS", "000",
		"zzz", "MST",
	)
	return r.Replace(pattern)
}

// DefaultDisplayPattern is used when no display pattern is configured
const DefaultDisplayPattern = "yyyy-MM-dd HH:mm:ss"

// FormatMillis formats a millisecond timestamp for display in loc using a display pattern
func FormatMillis(ms int64, loc *time.Location, pattern string) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(PatternToLayout(pattern))
}

// GetLocationForTZ resolves a timezone name to a *time.Location. Supports "Local", "UTC", and IANA TZ names.
func GetLocationForTZ(name string) *time.Location {
	tzName := strings.TrimSpace(name)
	switch strings.ToUpper(tzName) {
	case "", "LOCAL":
		return time.Local
	case "UTC":
		return time.UTC
	default:
		if l, err := time.LoadLocation(tzName); err == nil {
			return l
		}
		return time.Local
	}
}

package timestamps

import (
	"strconv"
	"strings"
	"time"
)

// ParseFlexibleTime parses absolute times or relative phrases such as "24h",
// "7 days ago" or "now", using loc for timezone-less absolute formats.
func ParseFlexibleTime(s string, now time.Time, loc *time.Location) (int64, bool) {
	ss := strings.TrimSpace(strings.ToLower(s))
	if ss == "" {
		return 0, false
	}
	if ss == "now" {
		return now.UnixMilli(), true
	}
	if strings.Contains(ss, "-") || strings.Contains(ss, "/") {
		if ms, ok := ParseTimestampMillis(s, loc); ok {
			return ms, true
		}
	}

	ss = strings.TrimSpace(strings.TrimSuffix(ss, "ago"))
	numStr := ""
	unitStr := ""
	parts := strings.Fields(ss)
	if len(parts) >= 2 {
		numStr = parts[0]
		unitStr = parts[1]
	} else {
		for i, r := range ss {
			if r < '0' || r > '9' {
				numStr = ss[:i]
				unitStr = ss[i:]
				break
			}
		}
		if numStr == "" {
			numStr = ss
		}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	unit, ok := relativeUnit(strings.TrimSpace(unitStr))
	if !ok {
		return 0, false
	}
	return now.Add(-time.Duration(n) * unit).UnixMilli(), true
}

func relativeUnit(u string) (time.Duration, bool) {
	switch u {
	case "", "s", "sec", "secs", "second", "seconds":
		return time.Second, true
	case "m", "min", "mins", "minute", "minutes":
		return time.Minute, true
	case "h", "hr", "hrs", "hour", "hours":
		return time.Hour, true
	case "d", "day", "days":
		return 24 * time.Hour, true
	case "w", "wk", "wks", "week", "weeks":
		return 7 * 24 * time.Hour, true
	case "mo", "mon", "month", "months":
		return 30 * 24 * time.Hour, true
	}
	return 0, false
}

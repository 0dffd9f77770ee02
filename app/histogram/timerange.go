package histogram

import (
	"context"
	"time"

	"observatory/app/interfaces"
	"observatory/app/timestamps"
)

// cancelCheckInterval is how many rows are scanned between context checks
const cancelCheckInterval = 1000

// TimeRange holds the timestamp bounds of a row set
type TimeRange struct {
	MinTs      int64
	MaxTs      int64
	ValidCount int
}

// DataTimeRange scans rows for the min/max of timeField. Rows whose value
// is missing or unparseable are skipped.
func DataTimeRange(ctx context.Context, rows []interfaces.Row, timeField string, loc *time.Location) (TimeRange, error) {
	var tr TimeRange
	if timeField == "" {
		return tr, nil
	}

	for i, row := range rows {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return TimeRange{}, err
			}
		}
		t, ok := timestamps.ToTime(row[timeField], loc)
		if !ok {
			continue
		}
		ms := t.UnixMilli()
		if tr.ValidCount == 0 {
			tr.MinTs, tr.MaxTs = ms, ms
		} else {
			tr.MinTs = min(tr.MinTs, ms)
			tr.MaxTs = max(tr.MaxTs, ms)
		}
		tr.ValidCount++
	}
	return tr, nil
}

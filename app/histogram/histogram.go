// Package histogram buckets call rows by timestamp for the call-volume chart.
package histogram

import (
	"context"
	"sort"
	"time"

	"observatory/app/columns"
	"observatory/app/interfaces"
	"observatory/app/summary"
	"observatory/app/timestamps"
)

// Options controls bucket generation. Zero values select the timestamp
// column, an automatic bucket size and the data's own time range.
type Options struct {
	TimeField     string
	BucketSeconds int
	MaxBuckets    int

	// After and Before clamp the chart range in epoch milliseconds
	After  *int64
	Before *int64

	// Location interprets timestamps written without an offset
	Location *time.Location
}

// Build creates call-volume buckets from rows. Every bucket between the first
// and last timestamp is present, including empty ones, so the chart has no
// gaps. Rows without a usable timestamp are not counted.
func Build(ctx context.Context, rows []interfaces.Row, opts Options) (*Response, error) {
	if opts.TimeField == "" {
		opts.TimeField = TimeField(rows)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	tr, err := DataTimeRange(ctx, rows, opts.TimeField, opts.Location)
	if err != nil {
		return nil, err
	}
	if tr.ValidCount == 0 {
		return &Response{Buckets: []Bucket{}}, nil
	}

	rangeStart, rangeEnd := tr.MinTs, tr.MaxTs
	if opts.After != nil {
		rangeStart = *opts.After
	}
	if opts.Before != nil {
		rangeEnd = *opts.Before
	}
	if rangeEnd < rangeStart {
		return &Response{Buckets: []Bucket{}, MinTs: rangeStart, MaxTs: rangeEnd}, nil
	}

	bucketSeconds := opts.BucketSeconds
	if bucketSeconds <= 0 {
		bucketSeconds = BucketSizeForRange(rangeStart, rangeEnd, opts.MaxBuckets)
	}
	bucketMs := int64(bucketSeconds) * 1000

	type tally struct{ count, errors int }
	counts := map[int64]*tally{}
	for i, row := range rows {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		t, ok := timestamps.ToTime(row[opts.TimeField], opts.Location)
		if !ok {
			continue
		}
		ms := t.UnixMilli()
		if ms < rangeStart || ms > rangeEnd {
			continue
		}
		start := floorBucket(ms, bucketMs)
		c := counts[start]
		if c == nil {
			c = &tally{}
			counts[start] = c
		}
		c.count++
		if summary.IsError(row) {
			c.errors++
		}
	}

	first := floorBucket(rangeStart, bucketMs)
	last := floorBucket(rangeEnd, bucketMs)
	buckets := make([]Bucket, 0, (last-first)/bucketMs+1)
	for t := first; t <= last; t += bucketMs {
		b := Bucket{Start: t}
		if c := counts[t]; c != nil {
			b.Count, b.Errors = c.count, c.errors
		}
		buckets = append(buckets, b)
	}

	return &Response{
		Buckets:       buckets,
		MinTs:         rangeStart,
		MaxTs:         rangeEnd,
		BucketSeconds: bucketSeconds,
	}, nil
}

// TimeField picks the timestamp field of rows: the timestamp column when the
// first row has it, otherwise the most likely time-like key of that row.
func TimeField(rows []interfaces.Row) string {
	if len(rows) == 0 {
		return columns.KeyTimestamp
	}
	if _, ok := rows[0][columns.KeyTimestamp]; ok {
		return columns.KeyTimestamp
	}
	keys := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if k := timestamps.DetectTimestampKey(keys); k != "" {
		return k
	}
	return columns.KeyTimestamp
}

// floorBucket rounds ms down to a multiple of bucketMs, also for times
// before the epoch
func floorBucket(ms, bucketMs int64) int64 {
	b := (ms / bucketMs) * bucketMs
	if ms < 0 && b != ms {
		b -= bucketMs
	}
	return b
}

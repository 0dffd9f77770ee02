package histogram

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"observatory/app/interfaces"
)

func TestChooseBucketSizeForSpan(t *testing.T) {
	tests := []struct {
		span int64
		max  int
		want int
	}{
		{0, 100, 1},
		{100, 100, 1},
		{101, 100, 2},
		{3600, 100, 60},
		{86400, 100, 30 * 60},
		{86400, 0, 30 * 60},
		{1 << 40, 100, 12 * 30 * 24 * 60 * 60},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChooseBucketSizeForSpan(tt.span, tt.max), "span %d", tt.span)
	}
}

func TestBucketSizeForRange_EmptyRange(t *testing.T) {
	assert.Equal(t, 300, BucketSizeForRange(5000, 5000, 100))
}

func callAt(base time.Time, offset time.Duration, status string) interfaces.Row {
	return interfaces.Row{"timestamp": base.Add(offset), "status": status}
}

func TestBuild_FillsGapsAndCountsErrors(t *testing.T) {
	base := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	rows := []interfaces.Row{
		callAt(base, 0, "success"),
		callAt(base, 30*time.Second, "error"),
		callAt(base, 3*time.Minute, "success"),
		{"timestamp": nil, "status": "error"},
		{"status": "success"},
	}

	resp, err := Build(context.Background(), rows, Options{BucketSeconds: 60})
	require.NoError(t, err)

	require.Len(t, resp.Buckets, 4)
	assert.Equal(t, 60, resp.BucketSeconds)
	assert.Equal(t, base.UnixMilli(), resp.MinTs)
	assert.Equal(t, base.Add(3*time.Minute).UnixMilli(), resp.MaxTs)
	assert.Equal(t, Bucket{Start: base.UnixMilli(), Count: 2, Errors: 1}, resp.Buckets[0])
	assert.Equal(t, 0, resp.Buckets[1].Count)
	assert.Equal(t, 0, resp.Buckets[2].Count)
	assert.Equal(t, 1, resp.Buckets[3].Count)
}

func TestBuild_AutomaticBucketSize(t *testing.T) {
	base := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	rows := []interfaces.Row{
		callAt(base, 0, "success"),
		callAt(base, 24*time.Hour, "success"),
	}

	resp, err := Build(context.Background(), rows, Options{})
	require.NoError(t, err)
	assert.Equal(t, 30*60, resp.BucketSeconds)
	assert.LessOrEqual(t, len(resp.Buckets), DefaultMaxBuckets+1)

	total := 0
	for _, b := range resp.Buckets {
		total += b.Count
	}
	assert.Equal(t, 2, total)
}

func TestBuild_ClampsToRange(t *testing.T) {
	base := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	rows := []interfaces.Row{
		callAt(base, 0, "success"),
		callAt(base, time.Hour, "success"),
		callAt(base, 2*time.Hour, "success"),
	}
	after := base.Add(30 * time.Minute).UnixMilli()

	resp, err := Build(context.Background(), rows, Options{BucketSeconds: 3600, After: &after})
	require.NoError(t, err)
	assert.Equal(t, after, resp.MinTs)

	total := 0
	for _, b := range resp.Buckets {
		total += b.Count
	}
	assert.Equal(t, 2, total)
}

func TestBuild_NoTimestamps(t *testing.T) {
	resp, err := Build(context.Background(), []interfaces.Row{{"status": "success"}}, Options{})
	require.NoError(t, err)
	assert.Empty(t, resp.Buckets)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, []interfaces.Row{{"timestamp": "2025-03-04T10:00:00Z"}}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDataTimeRange_ParsesStrings(t *testing.T) {
	rows := []interfaces.Row{
		{"ts": "2025-03-04T10:00:00Z"},
		{"ts": "garbage"},
		{"ts": "2025-03-04T09:00:00Z"},
	}
	tr, err := DataTimeRange(context.Background(), rows, "ts", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.ValidCount)
	assert.Equal(t, time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC).UnixMilli(), tr.MinTs)
}

func TestVersion(t *testing.T) {
	var counter int64
	assert.Equal(t, "t1:0", LoadVersion("t1", &counter))
	assert.Equal(t, "t1:1", IncrementVersion("t1", &counter))
	assert.Equal(t, "t1:1", LoadVersion("t1", &counter))
}

func TestTimeField(t *testing.T) {
	tests := []struct {
		name string
		rows []interfaces.Row
		want string
	}{
		{"no rows", nil, "timestamp"},
		{"timestamp column", []interfaces.Row{{"timestamp": "x", "created_at": "y"}}, "timestamp"},
		{"detected", []interfaces.Row{{"created_at": "2025-03-04T10:00:00Z", "latency_ms": 5}}, "created_at"},
		{"duration is not a time", []interfaces.Row{{"latency_ms": 5}}, "timestamp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeField(tt.rows))
		})
	}
}

func TestBuild_DetectsTimeField(t *testing.T) {
	rows := []interfaces.Row{
		{"created_at": "2025-03-04T10:00:00Z"},
		{"created_at": "2025-03-04T10:01:00Z"},
	}
	resp, err := Build(context.Background(), rows, Options{BucketSeconds: 300})
	require.NoError(t, err)
	require.Len(t, resp.Buckets, 1)
	assert.Equal(t, 2, resp.Buckets[0].Count)
}

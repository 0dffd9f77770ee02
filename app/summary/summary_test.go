package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"observatory/app/interfaces"
)

func sampleRows() []interfaces.Row {
	return []interfaces.Row{
		{"status": "success", "latency_ms": 100.0, "total_cost": 0.01, "total_tokens": 100.0, "cached": true, "judge_score": 0.9},
		{"status": "success", "latency_ms": 200.0, "total_cost": 0.03, "prompt_tokens": 50.0, "completion_tokens": 25.0, "cached": false},
		{"status": "error", "latency_ms": 300.0, "total_cost": 0.02, "total_tokens": 10.0, "judge_score": 0.5},
		{"status": "success", "latency_ms": 400.0, "error_message": "rate limited"},
		{"status": "success"},
	}
}

func TestIsError(t *testing.T) {
	tests := []struct {
		name string
		row  interfaces.Row
		want bool
	}{
		{"success", interfaces.Row{"status": "success"}, false},
		{"error status", interfaces.Row{"status": "ERROR"}, true},
		{"timeout", interfaces.Row{"status": "timeout"}, true},
		{"error message", interfaces.Row{"status": "success", "error_message": "boom"}, true},
		{"blank message", interfaces.Row{"error_message": "  "}, false},
		{"empty row", interfaces.Row{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsError(tt.row))
		})
	}
}

func TestCompute(t *testing.T) {
	s := Compute(sampleRows())

	assert.Equal(t, SourceComputed, s.Source)
	assert.Equal(t, 5, s.TotalCalls)
	assert.Equal(t, 2, s.ErrorCount)
	assert.InDelta(t, 0.4, s.ErrorRate, 1e-9)
	assert.InDelta(t, 0.06, s.TotalCost, 1e-9)
	assert.InDelta(t, 0.02, s.AvgCost, 1e-9)
	assert.InDelta(t, 250, s.AvgLatencyMs, 1e-9)
	assert.InDelta(t, 250, s.P50LatencyMs, 1e-9)
	assert.InDelta(t, 385, s.P95LatencyMs, 1e-9)
	assert.InDelta(t, 0.5, s.CacheHitRate, 1e-9)
	assert.Equal(t, 2, s.JudgedCalls)
	assert.InDelta(t, 0.7, s.AvgJudgeScore, 1e-9)
	assert.InDelta(t, 185, s.TotalTokens, 1e-9)
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)
	assert.Equal(t, Summary{Source: SourceComputed}, s)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	assert.Equal(t, 10.0, Percentile(sorted, 0))
	assert.Equal(t, 40.0, Percentile(sorted, 100))
	assert.InDelta(t, 25, Percentile(sorted, 50), 1e-9)
	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 95))
}

func TestMerge(t *testing.T) {
	s := Merge(map[string]any{
		"total_calls":    int64(1000),
		"p95_latency_ms": 4200.0,
		"window":         "24h",
	}, sampleRows())

	assert.Equal(t, SourceBackend, s.Source)
	assert.Equal(t, 1000, s.TotalCalls)
	assert.Equal(t, 4200.0, s.P95LatencyMs)
	assert.InDelta(t, 0.06, s.TotalCost, 1e-9)
	assert.Equal(t, map[string]any{"window": "24h"}, s.Extra)

	assert.Equal(t, SourceComputed, Merge(nil, sampleRows()).Source)
}

func TestMerge_PreferredSpellingWins(t *testing.T) {
	backend := map[string]any{
		"count":          7,
		"total_calls":    9,
		"avg_latency":    100.0,
		"avg_latency_ms": 250.0,
	}
	for i := 0; i < 50; i++ {
		s := Merge(backend, sampleRows())
		require.Equal(t, 9, s.TotalCalls)
		require.Equal(t, 250.0, s.AvgLatencyMs)
		require.Nil(t, s.Extra)
	}

	s := Merge(map[string]any{"count": 7}, sampleRows())
	assert.Equal(t, 7, s.TotalCalls)
}

func TestCards(t *testing.T) {
	cards := Cards(Compute(sampleRows()), "total_cost")

	byKey := map[string]Card{}
	for _, c := range cards {
		byKey[c.Key] = c
	}
	require.Contains(t, byKey, "total_cost")
	assert.True(t, byKey["total_cost"].Primary)
	assert.False(t, byKey["total_calls"].Primary)
	assert.Equal(t, "5", byKey["total_calls"].Value)
	assert.Equal(t, "40.0%", byKey["error_rate"].Value)
	assert.Equal(t, "text-red", byKey["error_rate"].Class)
	assert.Equal(t, "0.70", byKey["judge_score"].Value)
	assert.Equal(t, "250ms", byKey["latency_ms"].Value)

	empty := Cards(Compute(nil), "")
	assert.Equal(t, "—", empty[len(empty)-1].Value)
}

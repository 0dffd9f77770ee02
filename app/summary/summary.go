// Package summary computes the KPI aggregates shown above story tables and on
// the overview page.
package summary

import (
	"math"
	"sort"
	"strings"

	"observatory/app/columns"
	"observatory/app/interfaces"
	"observatory/app/values"
)

// Sources of a Summary
const (
	SourceComputed = "computed"
	SourceBackend  = "backend"
)

// Summary holds the KPI aggregates of a row set. Rates are 0..1 ratios.
type Summary struct {
	TotalCalls    int     `json:"totalCalls"`
	ErrorCount    int     `json:"errorCount"`
	ErrorRate     float64 `json:"errorRate"`
	TotalCost     float64 `json:"totalCost"`
	AvgCost       float64 `json:"avgCost"`
	AvgLatencyMs  float64 `json:"avgLatencyMs"`
	P50LatencyMs  float64 `json:"p50LatencyMs"`
	P95LatencyMs  float64 `json:"p95LatencyMs"`
	CacheHitRate  float64 `json:"cacheHitRate"`
	AvgJudgeScore float64 `json:"avgJudgeScore"`
	JudgedCalls   int     `json:"judgedCalls"`
	TotalTokens   float64 `json:"totalTokens"`

	Source string `json:"source"`

	// Extra carries backend summary fields this package does not model
	Extra map[string]any `json:"extra,omitempty"`
}

var errorStatuses = map[string]bool{
	"error":   true,
	"failed":  true,
	"failure": true,
	"timeout": true,
}

// IsError reports whether a call row failed: an error-like status or a
// non-empty error message.
func IsError(row interfaces.Row) bool {
	if errorStatuses[strings.ToLower(strings.TrimSpace(values.String(row[columns.KeyStatus])))] {
		return true
	}
	return strings.TrimSpace(values.String(row["error_message"])) != ""
}

// Compute aggregates rows. Missing or non-numeric cells are left out of the
// averages they would feed, so an average covers only rows carrying the field.
func Compute(rows []interfaces.Row) Summary {
	s := Summary{TotalCalls: len(rows), Source: SourceComputed}
	if len(rows) == 0 {
		return s
	}

	var latencies []float64
	var costCount, cacheCount, cacheHits int
	var judgeTotal float64

	for _, row := range rows {
		if IsError(row) {
			s.ErrorCount++
		}
		if c, ok := values.Number(row[columns.KeyTotalCost]); ok {
			s.TotalCost += c
			costCount++
		}
		if l, ok := values.Number(row[columns.KeyLatency]); ok {
			latencies = append(latencies, l)
		}
		if t, ok := values.Number(row[columns.KeyTotalTokens]); ok {
			s.TotalTokens += t
		} else {
			p, pok := values.Number(row[columns.KeyPromptTokens])
			c, cok := values.Number(row[columns.KeyCompletionTokens])
			if pok || cok {
				s.TotalTokens += p + c
			}
		}
		if j, ok := values.Number(row[columns.KeyJudgeScore]); ok {
			judgeTotal += j
			s.JudgedCalls++
		}
		if v, present := row[columns.KeyCached]; present && !values.IsNil(v) {
			cacheCount++
			if !values.IsFalsy(v) {
				cacheHits++
			}
		}
	}

	s.ErrorRate = ratio(s.ErrorCount, len(rows))
	if costCount > 0 {
		s.AvgCost = s.TotalCost / float64(costCount)
	}
	if len(latencies) > 0 {
		sort.Float64s(latencies)
		var total float64
		for _, l := range latencies {
			total += l
		}
		s.AvgLatencyMs = total / float64(len(latencies))
		s.P50LatencyMs = Percentile(latencies, 50)
		s.P95LatencyMs = Percentile(latencies, 95)
	}
	s.CacheHitRate = ratio(cacheHits, cacheCount)
	if s.JudgedCalls > 0 {
		s.AvgJudgeScore = judgeTotal / float64(s.JudgedCalls)
	}
	return s
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Percentile returns the p-th percentile of sorted values using linear
// interpolation between closest ranks.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

type backendField struct {
	key string
	set func(s *Summary, f float64)
}

// backendFields maps backend summary keys onto Summary fields in the order
// they are applied. Where several spellings name the same figure the
// preferred one comes last and wins.
var backendFields = []backendField{
	{"count", func(s *Summary, f float64) { s.TotalCalls = int(f) }},
	{"total_calls", func(s *Summary, f float64) { s.TotalCalls = int(f) }},
	{"error_count", func(s *Summary, f float64) { s.ErrorCount = int(f) }},
	{"error_rate", func(s *Summary, f float64) { s.ErrorRate = f }},
	{"total_cost", func(s *Summary, f float64) { s.TotalCost = f }},
	{"avg_cost", func(s *Summary, f float64) { s.AvgCost = f }},
	{"avg_latency", func(s *Summary, f float64) { s.AvgLatencyMs = f }},
	{"avg_latency_ms", func(s *Summary, f float64) { s.AvgLatencyMs = f }},
	{"p50_latency_ms", func(s *Summary, f float64) { s.P50LatencyMs = f }},
	{"p95_latency_ms", func(s *Summary, f float64) { s.P95LatencyMs = f }},
	{"cache_hit_rate", func(s *Summary, f float64) { s.CacheHitRate = f }},
	{"avg_judge_score", func(s *Summary, f float64) { s.AvgJudgeScore = f }},
	{"judged_calls", func(s *Summary, f float64) { s.JudgedCalls = int(f) }},
	{"total_tokens", func(s *Summary, f float64) { s.TotalTokens = f }},
}

// Merge prefers the figures of a backend summary and fills the rest from
// rows. Unknown backend fields are kept in Extra. A nil or empty backend
// summary yields the computed one.
func Merge(backend map[string]any, rows []interfaces.Row) Summary {
	s := Compute(rows)
	if len(backend) == 0 {
		return s
	}

	s.Source = SourceBackend
	known := make(map[string]bool, len(backendFields))
	for _, field := range backendFields {
		known[field.key] = true
		v, ok := backend[field.key]
		if !ok {
			continue
		}
		if f, ok := values.Number(v); ok {
			field.set(&s, f)
		}
	}
	for k, v := range backend {
		if known[k] {
			continue
		}
		if s.Extra == nil {
			s.Extra = map[string]any{}
		}
		s.Extra[k] = v
	}
	return s
}

package summary

import (
	"observatory/app/columns"
)

// Card is one rendered KPI tile
type Card struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Class   string `json:"class,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// errorRateColors flags error rates above 1% and 5%
var errorRateColors = columns.Thresholds{
	Steps: []columns.Step{{Below: 0.01, Class: columns.ClassGood}, {Below: 0.05, Class: columns.ClassWarn}},
	Above: columns.ClassBad,
}

// Cards renders the KPI tiles in display order. The tile whose key matches
// primaryMetric is flagged; cost, latency and score tiles use the same
// formatters and colors as their table columns.
func Cards(s Summary, primaryMetric string) []Card {
	cards := []Card{
		{Key: "total_calls", Label: "Calls", Value: columns.Integer.Format(s.TotalCalls)},
		{Key: columns.KeyTotalCost, Label: "Total Cost", Value: columns.Cost.Format(s.TotalCost)},
		{Key: "avg_cost", Label: "Avg Cost", Value: columns.Cost.Format(s.AvgCost), Class: columns.CostColors.Colorize(s.AvgCost)},
		{Key: columns.KeyLatency, Label: "P50 Latency", Value: columns.Latency.Format(s.P50LatencyMs), Class: columns.LatencyColors.Colorize(s.P50LatencyMs)},
		{Key: "p95_latency_ms", Label: "P95 Latency", Value: columns.Latency.Format(s.P95LatencyMs), Class: columns.LatencyColors.Colorize(s.P95LatencyMs)},
		{Key: "error_rate", Label: "Error Rate", Value: columns.Percent.Format(s.ErrorRate), Class: errorRateColors.Colorize(s.ErrorRate)},
		{Key: columns.KeyCached, Label: "Cache Hit Rate", Value: columns.Percent.Format(s.CacheHitRate)},
		{Key: columns.KeyTotalTokens, Label: "Tokens", Value: columns.Tokens.Format(s.TotalTokens)},
	}

	judge := Card{Key: columns.KeyJudgeScore, Label: "Avg Judge Score", Value: columns.Placeholder}
	if s.JudgedCalls > 0 || s.AvgJudgeScore != 0 {
		judge.Value = columns.Score.Format(s.AvgJudgeScore)
		judge.Class = columns.ScoreColors.Colorize(s.AvgJudgeScore)
	}
	cards = append(cards, judge)

	for i := range cards {
		cards[i].Primary = cards[i].Key == primaryMetric
	}
	return cards
}

package stories

import (
	"observatory/app/interfaces"
)

// Story ids
const (
	Latency        = "latency"
	Cost           = "cost"
	Quality        = "quality"
	TokenImbalance = "token_imbalance"
	SystemPrompt   = "system_prompt"
	Cache          = "cache"
	Routing        = "routing"
	Optimization   = "optimization"
)

var all = QuickFilter{ID: AllFilterID, Label: "All", Icon: "list"}

func desc(key string) interfaces.SortConfig {
	return interfaces.SortConfig{Key: key, Direction: interfaces.SortDesc}
}

func asc(key string) interfaces.SortConfig {
	return interfaces.SortConfig{Key: key, Direction: interfaces.SortAsc}
}

// Default returns the built-in story registry
func Default() *Registry {
	r, err := NewRegistry(builtin()...)
	if err != nil {
		panic(err)
	}
	return r
}

func builtin() []Story {
	return []Story{
		{
			ID:          Latency,
			Title:       "Latency",
			Description: "Slow calls and where the time goes",
			Endpoint:    "latency",
			QuickFilters: []QuickFilter{
				all,
				{ID: "slow", Label: "Slow (>5s)", Icon: "clock", Logic: Predicate{Field: "latency_ms", Op: OpGt, Value: 5000}},
				{ID: "very_slow", Label: "Very slow (>15s)", Icon: "alert-triangle", Logic: Predicate{Field: "latency_ms", Op: OpGt, Value: 15000}},
				{ID: "fast", Label: "Fast (<1s)", Icon: "zap", Logic: Predicate{Field: "latency_ms", Op: OpLt, Value: 1000}},
				{ID: "slow_and_expensive", Label: "Slow & expensive", Icon: "flame", Logic: Compound{Filters: []Predicate{
					{Field: "latency_ms", Op: OpGt, Value: 5000},
					{Field: "total_cost", Op: OpGt, Value: 0.05},
				}}},
				{ID: "slowest", Label: "Slowest", Icon: "trending-up", Logic: Extremum{Type: Max, Field: "latency_ms"}},
			},
			DefaultColumns:   []string{"call_id", "timestamp", "operation", "model", "latency_ms", "time_to_first_token_ms", "total_tokens", "total_cost", "status"},
			DefaultSort:      desc("latency_ms"),
			FilterBarColumns: []string{"operation", "model", "provider"},
			PrimaryMetric:    "latency_ms",
		},
		{
			ID:          Cost,
			Title:       "Cost",
			Description: "Spend per call, model and operation",
			Endpoint:    "cost",
			QuickFilters: []QuickFilter{
				all,
				{ID: "expensive", Label: "Expensive (>$0.10)", Icon: "dollar-sign", Logic: Predicate{Field: "total_cost", Op: OpGt, Value: 0.10}},
				{ID: "mid", Label: "$0.01 to $0.10", Icon: "minus", Logic: Predicate{Field: "total_cost", Op: OpBetween, Value: []any{0.01, 0.10}}},
				{ID: "cheap", Label: "Cheap (<$0.01)", Icon: "feather", Logic: Predicate{Field: "total_cost", Op: OpLt, Value: 0.01}},
				{ID: "most_expensive", Label: "Most expensive", Icon: "trending-up", Logic: Extremum{Type: Max, Field: "total_cost"}},
			},
			DefaultColumns:   []string{"call_id", "timestamp", "operation", "model", "prompt_tokens", "completion_tokens", "total_cost", "cost_per_1k_tokens"},
			DefaultSort:      desc("total_cost"),
			FilterBarColumns: []string{"operation", "model", "provider"},
			PrimaryMetric:    "total_cost",
		},
		{
			ID:          Quality,
			Title:       "Quality",
			Description: "Judge scores, hallucinations and retries",
			Endpoint:    "quality",
			QuickFilters: []QuickFilter{
				all,
				{ID: "low_score", Label: "Low score (<0.5)", Icon: "thumbs-down", Logic: Predicate{Field: "judge_score", Op: OpLt, Value: 0.5}},
				{ID: "high_score", Label: "High score (≥0.8)", Icon: "thumbs-up", Logic: Predicate{Field: "judge_score", Op: OpGte, Value: 0.8}},
				{ID: "hallucinations", Label: "Hallucinations", Icon: "eye-off", Logic: Predicate{Field: "hallucination_detected", Op: OpEq, Value: true}},
				{ID: "retried", Label: "Retried", Icon: "refresh-cw", Logic: Predicate{Field: "retry_count", Op: OpGt, Value: 0}},
				{ID: "worst", Label: "Worst", Icon: "trending-down", Logic: Extremum{Type: Min, Field: "judge_score"}},
			},
			DefaultColumns:   []string{"call_id", "timestamp", "operation", "model", "judge_score", "hallucination_detected", "retry_count", "latency_ms"},
			DefaultSort:      asc("judge_score"),
			FilterBarColumns: []string{"operation", "model", "hallucination_detected"},
			PrimaryMetric:    "judge_score",
		},
		{
			ID:          TokenImbalance,
			Title:       "Token Imbalance",
			Description: "Calls that send far more tokens than they get back",
			Endpoint:    "token_imbalance",
			QuickFilters: []QuickFilter{
				all,
				{ID: "prompt_heavy", Label: "Prompt heavy (>20:1)", Icon: "arrow-up-right", Logic: Predicate{Field: "prompt_completion_ratio", Op: OpGt, Value: 20}},
				{ID: "balanced", Label: "Balanced", Icon: "scale", Logic: Predicate{Field: "prompt_completion_ratio", Op: OpBetween, Value: []any{0.5, 5}}},
				{ID: "most_imbalanced", Label: "Most imbalanced", Icon: "trending-up", Logic: Extremum{Type: Max, Field: "prompt_completion_ratio"}},
			},
			DefaultColumns:   []string{"call_id", "operation", "model", "prompt_tokens", "completion_tokens", "prompt_completion_ratio", "total_cost"},
			DefaultSort:      desc("prompt_completion_ratio"),
			FilterBarColumns: []string{"operation", "model"},
			PrimaryMetric:    "prompt_completion_ratio",
		},
		{
			ID:          SystemPrompt,
			Title:       "System Prompts",
			Description: "System prompt size and its share of every call",
			Endpoint:    "system_prompt",
			QuickFilters: []QuickFilter{
				all,
				{ID: "dominant", Label: "Dominant (>80%)", Icon: "pie-chart", Logic: Predicate{Field: "system_prompt_ratio", Op: OpGt, Value: 0.8}},
				{ID: "large", Label: "Large (>2k tokens)", Icon: "file-text", Logic: Predicate{Field: "system_prompt_tokens", Op: OpGt, Value: 2000}},
				{ID: "largest", Label: "Largest", Icon: "trending-up", Logic: Extremum{Type: Max, Field: "system_prompt_tokens"}},
			},
			DefaultColumns:   []string{"call_id", "operation", "system_prompt_hash", "system_prompt_tokens", "prompt_tokens", "system_prompt_ratio", "total_cost"},
			DefaultSort:      desc("system_prompt_tokens"),
			FilterBarColumns: []string{"operation", "system_prompt_hash"},
			PrimaryMetric:    "system_prompt_ratio",
		},
		{
			ID:          Cache,
			Title:       "Caching",
			Description: "Cache hits, misses and what they cost",
			Endpoint:    "cache",
			QuickFilters: []QuickFilter{
				all,
				{ID: "hits", Label: "Hits", Icon: "check", Logic: Predicate{Field: "cached", Op: OpEq, Value: true}},
				{ID: "misses", Label: "Misses", Icon: "x", Logic: Predicate{Field: "cached", Op: OpEq, Value: false}},
				{ID: "expensive_misses", Label: "Expensive misses", Icon: "dollar-sign", Logic: Compound{Filters: []Predicate{
					{Field: "cached", Op: OpEq, Value: false},
					{Field: "total_cost", Op: OpGt, Value: 0.05},
				}}},
				{ID: "top_savings", Label: "Top savings", Icon: "trending-up", Logic: Extremum{Type: Max, Field: "cache_savings"}},
			},
			DefaultColumns:   []string{"call_id", "timestamp", "operation", "model", "cached", "cache_hit_rate", "cache_savings", "total_cost"},
			DefaultSort:      desc("cache_savings"),
			FilterBarColumns: []string{"operation", "model", "cached"},
			PrimaryMetric:    "cache_savings",
		},
		{
			ID:          Routing,
			Title:       "Model Routing",
			Description: "Calls that could run on a cheaper model",
			Endpoint:    "routing",
			QuickFilters: []QuickFilter{
				all,
				{ID: "overpowered", Label: "Simple tasks", Icon: "chevrons-down", Logic: Predicate{Field: "complexity_score", Op: OpLt, Value: 0.3}},
				{ID: "complex", Label: "Complex tasks", Icon: "chevrons-up", Logic: Predicate{Field: "complexity_score", Op: OpGte, Value: 0.7}},
				{ID: "downgrade", Label: "Downgrade candidates", Icon: "arrow-down", Logic: Compound{Filters: []Predicate{
					{Field: "complexity_score", Op: OpLt, Value: 0.3},
					{Field: "routing_savings", Op: OpGt, Value: 0},
				}}},
				{ID: "best_savings", Label: "Best savings", Icon: "trending-up", Logic: Extremum{Type: Max, Field: "routing_savings"}},
			},
			DefaultColumns:   []string{"call_id", "operation", "model", "suggested_model", "complexity_score", "total_cost", "routing_savings"},
			DefaultSort:      desc("routing_savings"),
			FilterBarColumns: []string{"model", "suggested_model"},
			PrimaryMetric:    "routing_savings",
		},
		{
			ID:          Optimization,
			Title:       "Optimization",
			Description: "Recurring call patterns and their savings opportunities",
			Endpoint:    "optimization",
			QuickFilters: []QuickFilter{
				all,
				{ID: "caching", Label: "Caching", Icon: "database", Logic: Predicate{Field: "optimization_type", Op: OpEq, Value: "caching"}},
				{ID: "routing", Label: "Routing", Icon: "git-branch", Logic: Predicate{Field: "optimization_type", Op: OpEq, Value: "routing"}},
				{ID: "prompt", Label: "Prompt compression", Icon: "minimize-2", Logic: Predicate{Field: "optimization_type", Op: OpEq, Value: "prompt_compression"}},
				{ID: "high_impact", Label: "High impact (>$10)", Icon: "star", Logic: Predicate{Field: "estimated_savings", Op: OpGt, Value: 10}},
				{ID: "frequent", Label: "Frequent (≥100 calls)", Icon: "repeat", Logic: Predicate{Field: "call_count", Op: OpGte, Value: 100}},
			},
			DefaultColumns:   []string{"pattern", "optimization_type", "call_count", "total_cost", "estimated_savings"},
			DefaultSort:      desc("estimated_savings"),
			FilterBarColumns: []string{"optimization_type"},
			PrimaryMetric:    "estimated_savings",
		},
	}
}

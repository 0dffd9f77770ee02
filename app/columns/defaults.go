package columns

import (
	"time"

	"observatory/app/timestamps"
)

// Keys of the fields other packages aggregate over
const (
	KeyCallID           = "call_id"
	KeyTimestamp        = "timestamp"
	KeyStatus           = "status"
	KeyLatency          = "latency_ms"
	KeyPromptTokens     = "prompt_tokens"
	KeyCompletionTokens = "completion_tokens"
	KeyTotalTokens      = "total_tokens"
	KeyTotalCost        = "total_cost"
	KeyJudgeScore       = "judge_score"
	KeyCached           = "cached"
)

// Categories in the order the add-column picker shows them
const (
	CategoryIdentity     = "Identity"
	CategoryPerformance  = "Performance"
	CategoryTokens       = "Tokens"
	CategoryCost         = "Cost"
	CategoryQuality      = "Quality"
	CategorySystemPrompt = "System Prompt"
	CategoryCache        = "Cache"
	CategoryRouting      = "Routing"
	CategoryOptimization = "Optimization"
)

// Default returns the built-in registry of LLM telemetry columns, rendering
// timestamps in local time.
func Default() *Registry {
	return NewDefault(time.Local, timestamps.DefaultDisplayPattern)
}

// NewDefault returns the built-in registry rendering timestamps in loc with the
// given display pattern.
func NewDefault(loc *time.Location, pattern string) *Registry {
	r := NewRegistry()
	for _, c := range telemetryColumns(loc, pattern) {
		if err := r.Register(c); err != nil {
			// The built-in set is static; a failure here is a programming error
			panic(err)
		}
	}
	return r
}

func telemetryColumns(loc *time.Location, pattern string) []Column {
	text := FormatterFunc(Text)

	return []Column{
		// Identity
		{Key: KeyCallID, Label: "Call ID", Category: CategoryIdentity, Type: FieldTypeString, Sortable: true, Formatter: Truncate(12), ClassName: ClassMono},
		{Key: KeyTimestamp, Label: "Time", Category: CategoryIdentity, Type: FieldTypeTimestamp, Sortable: true, Formatter: Timestamp{Location: loc, Pattern: pattern}},
		{Key: "operation", Label: "Operation", Category: CategoryIdentity, Type: FieldTypeString, Sortable: true, Filterable: true, Formatter: text},
		{Key: "agent_name", Label: "Agent", Category: CategoryIdentity, Type: FieldTypeString, Sortable: true, Filterable: true, Formatter: text},
		{Key: "provider", Label: "Provider", Category: CategoryIdentity, Type: FieldTypeString, Sortable: true, Filterable: true, Formatter: text, Colorizer: ProviderColors},
		{Key: "model", Label: "Model", Category: CategoryIdentity, Type: FieldTypeString, Sortable: true, Filterable: true, Formatter: text, ClassName: ClassMono},
		{Key: KeyStatus, Label: "Status", Category: CategoryIdentity, Type: FieldTypeString, Sortable: true, Filterable: true, Formatter: text, Colorizer: StatusColors},
		{Key: "error_message", Label: "Error", Category: CategoryIdentity, Type: FieldTypeString, Formatter: Truncate(60), ClassName: ClassBad},

		// Performance
		{Key: KeyLatency, Label: "Latency", Category: CategoryPerformance, Type: FieldTypeDuration, Sortable: true, Formatter: Latency, Colorizer: LatencyColors},
		{Key: "time_to_first_token_ms", Label: "TTFT", Category: CategoryPerformance, Type: FieldTypeDuration, Sortable: true, Formatter: Latency},
		{Key: "tokens_per_second", Label: "Tokens/s", Category: CategoryPerformance, Type: FieldTypeFloat, Sortable: true, Formatter: Decimal(1)},

		// Tokens
		{Key: KeyPromptTokens, Label: "Prompt Tokens", Category: CategoryTokens, Type: FieldTypeInteger, Sortable: true, Formatter: Integer},
		{Key: KeyCompletionTokens, Label: "Completion Tokens", Category: CategoryTokens, Type: FieldTypeInteger, Sortable: true, Formatter: Integer},
		{Key: KeyTotalTokens, Label: "Total Tokens", Category: CategoryTokens, Type: FieldTypeInteger, Sortable: true, Formatter: Integer},
		{Key: "prompt_completion_ratio", Label: "Prompt:Completion", Category: CategoryTokens, Type: FieldTypeFloat, Sortable: true, Formatter: Decimal(1), Colorizer: Thresholds{
			Steps: []Step{{Below: 5, Class: ClassGood}, {Below: 20, Class: ClassWarn}},
			Above: ClassBad,
		}},

		// Cost
		{Key: KeyTotalCost, Label: "Cost", Category: CategoryCost, Type: FieldTypeCurrency, Sortable: true, Formatter: Cost, Colorizer: CostColors},
		{Key: "prompt_cost", Label: "Prompt Cost", Category: CategoryCost, Type: FieldTypeCurrency, Sortable: true, Formatter: Cost},
		{Key: "completion_cost", Label: "Completion Cost", Category: CategoryCost, Type: FieldTypeCurrency, Sortable: true, Formatter: Cost},
		{Key: "cost_per_1k_tokens", Label: "Cost / 1k Tokens", Category: CategoryCost, Type: FieldTypeCurrency, Sortable: true, Formatter: Cost},

		// Quality
		{Key: KeyJudgeScore, Label: "Judge Score", Category: CategoryQuality, Type: FieldTypeScore, Sortable: true, Formatter: Score, Colorizer: ScoreColors},
		{Key: "hallucination_detected", Label: "Hallucination", Category: CategoryQuality, Type: FieldTypeBoolean, Sortable: true, Filterable: true, Formatter: Bool("Yes", "No"), Colorizer: WarningFlagColors},
		{Key: "retry_count", Label: "Retries", Category: CategoryQuality, Type: FieldTypeInteger, Sortable: true, Filterable: true, Formatter: Integer},

		// System prompt
		{Key: "system_prompt_tokens", Label: "System Prompt Tokens", Category: CategorySystemPrompt, Type: FieldTypeInteger, Sortable: true, Formatter: Integer},
		{Key: "system_prompt_ratio", Label: "System Prompt Share", Category: CategorySystemPrompt, Type: FieldTypeScore, Sortable: true, Formatter: Percent, Colorizer: RatioColors},
		{Key: "system_prompt_hash", Label: "Prompt Hash", Category: CategorySystemPrompt, Type: FieldTypeString, Filterable: true, Formatter: Truncate(10), ClassName: ClassMono},

		// Cache
		{Key: KeyCached, Label: "Cached", Category: CategoryCache, Type: FieldTypeBoolean, Sortable: true, Filterable: true, Formatter: Bool("HIT", "MISS"), Colorizer: CacheColors},
		{Key: "cache_hit_rate", Label: "Cache Hit Rate", Category: CategoryCache, Type: FieldTypeScore, Sortable: true, Formatter: Percent, Colorizer: ScoreColors},
		{Key: "cache_savings", Label: "Cache Savings", Category: CategoryCache, Type: FieldTypeCurrency, Sortable: true, Formatter: Cost, ClassName: ClassGood},

		// Routing
		{Key: "complexity_score", Label: "Complexity", Category: CategoryRouting, Type: FieldTypeScore, Sortable: true, Formatter: Score},
		{Key: "suggested_model", Label: "Suggested Model", Category: CategoryRouting, Type: FieldTypeString, Sortable: true, Filterable: true, Formatter: text, ClassName: ClassMono},
		{Key: "routing_savings", Label: "Routing Savings", Category: CategoryRouting, Type: FieldTypeCurrency, Sortable: true, Formatter: Cost, ClassName: ClassGood},

		// Optimization
		{Key: "optimization_type", Label: "Optimization", Category: CategoryOptimization, Type: FieldTypeString, Sortable: true, Filterable: true, Formatter: text, ClassName: ClassInfo},
		{Key: "pattern", Label: "Pattern", Category: CategoryOptimization, Type: FieldTypeString, Formatter: Truncate(80)},
		{Key: "call_count", Label: "Calls", Category: CategoryOptimization, Type: FieldTypeInteger, Sortable: true, Formatter: Integer},
		{Key: "estimated_savings", Label: "Est. Savings", Category: CategoryOptimization, Type: FieldTypeCurrency, Sortable: true, Formatter: Cost, ClassName: ClassGood},
	}
}

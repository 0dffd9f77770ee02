package columns

import (
	"strings"

	"observatory/app/values"
)

// Style classes understood by the frontend stylesheet
const (
	ClassGood    = "text-green"
	ClassWarn    = "text-yellow"
	ClassBad     = "text-red"
	ClassMuted   = "text-muted"
	ClassInfo    = "text-blue"
	ClassPrimary = "text-primary"
	ClassMono    = "font-mono"
)

// Step is one band of a Thresholds colorizer
type Step struct {
	Below float64
	Class string
}

// Thresholds colors a numeric value by the first step whose Below bound it is under.
// Values above every step get Above. Missing or non-numeric values get ClassMuted.
type Thresholds struct {
	Steps []Step
	Above string
}

// Colorize implements Colorizer
func (t Thresholds) Colorize(v any) string {
	f, ok := numeric(v)
	if !ok {
		return ClassMuted
	}
	for _, s := range t.Steps {
		if f < s.Below {
			return s.Class
		}
	}
	return t.Above
}

// Lookup colors categorical values by exact, case-insensitive match
type Lookup struct {
	Classes map[string]string
	Default string
}

// Colorize implements Colorizer
func (l Lookup) Colorize(v any) string {
	if values.IsNil(v) {
		return ClassMuted
	}
	if c, ok := l.Classes[strings.ToLower(values.String(v))]; ok {
		return c
	}
	return l.Default
}

// Flag colors boolean values
type Flag struct {
	True  string
	False string
}

// Colorize implements Colorizer
func (f Flag) Colorize(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return f.True
		}
		return f.False
	case string:
		switch strings.ToLower(t) {
		case "true", "yes", "1":
			return f.True
		case "false", "no", "0":
			return f.False
		}
	}
	return ClassMuted
}

var (
	// LatencyColors flags slow calls
	LatencyColors = Thresholds{
		Steps: []Step{{Below: 1000, Class: ClassGood}, {Below: 5000, Class: ClassWarn}},
		Above: ClassBad,
	}

	// CostColors flags expensive calls
	CostColors = Thresholds{
		Steps: []Step{{Below: 0.01, Class: ClassGood}, {Below: 0.10, Class: ClassWarn}},
		Above: ClassBad,
	}

	// ScoreColors flags low quality scores, higher is better
	ScoreColors = Thresholds{
		Steps: []Step{{Below: 0.5, Class: ClassBad}, {Below: 0.8, Class: ClassWarn}},
		Above: ClassGood,
	}

	// RatioColors flags skewed token and prompt ratios
	RatioColors = Thresholds{
		Steps: []Step{{Below: 0.5, Class: ClassGood}, {Below: 0.8, Class: ClassWarn}},
		Above: ClassBad,
	}

	// StatusColors colors call outcomes
	StatusColors = Lookup{
		Classes: map[string]string{
			"success": ClassGood,
			"ok":      ClassGood,
			"error":   ClassBad,
			"failed":  ClassBad,
			"timeout": ClassWarn,
		},
		Default: ClassMuted,
	}

	// ProviderColors tags providers
	ProviderColors = Lookup{
		Classes: map[string]string{
			"openai":    "provider-openai",
			"anthropic": "provider-anthropic",
			"google":    "provider-google",
			"mistral":   "provider-mistral",
		},
		Default: ClassMuted,
	}

	// CacheColors colors cache hits
	CacheColors = Flag{True: ClassGood, False: ClassMuted}

	// WarningFlagColors colors boolean warning flags
	WarningFlagColors = Flag{True: ClassBad, False: ClassGood}
)

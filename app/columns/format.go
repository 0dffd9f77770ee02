package columns

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"observatory/app/timestamps"
	"observatory/app/values"
)

// Placeholder is rendered for missing values
const Placeholder = "—"

var (
	printerMu sync.Mutex
	printer   = message.NewPrinter(language.English)
)

// grouped formats with thousands separators
func grouped(format string, args ...any) string {
	printerMu.Lock()
	defer printerMu.Unlock()
	return printer.Sprintf(format, args...)
}

// numeric extracts a number from v, accepting numeric strings
func numeric(v any) (float64, bool) {
	if f, ok := values.Number(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		return values.ParseNumber(s)
	}
	return 0, false
}

// Text renders any value as plain text, or the placeholder when it is missing
func Text(v any) string {
	s := values.String(v)
	if s == "" {
		return Placeholder
	}
	return s
}

// numberFormatter wraps a float renderer with the shared nil and fallback handling
func numberFormatter(render func(f float64) string) Formatter {
	return FormatterFunc(func(v any) string {
		if values.IsNil(v) {
			return Placeholder
		}
		f, ok := numeric(v)
		if !ok || math.IsInf(f, 0) {
			return Text(v)
		}
		return render(f)
	})
}

// Integer renders whole numbers with thousands separators
var Integer = numberFormatter(func(f float64) string {
	return grouped("%d", int64(math.Round(f)))
})

// Decimal renders numbers with thousands separators and a fixed number of places
func Decimal(places int) Formatter {
	format := fmt.Sprintf("%%.%df", places)
	return numberFormatter(func(f float64) string {
		return grouped(format, f)
	})
}

// Latency renders a millisecond duration as "850ms" or "12.0s"
var Latency = numberFormatter(func(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.0fms", ms)
	}
	if ms < 60_000 {
		return fmt.Sprintf("%.1fs", ms/1000)
	}
	return (time.Duration(ms) * time.Millisecond).Round(time.Second).String()
})

// Cost renders a USD amount with enough precision for fractions of a cent
var Cost = numberFormatter(func(c float64) string {
	if c == 0 {
		return "$0"
	}
	if math.Abs(c) < 0.001 {
		return fmt.Sprintf("$%.5f", c)
	}
	if math.Abs(c) >= 1000 {
		return grouped("$%.2f", c)
	}
	return fmt.Sprintf("$%.4f", c)
})

// Tokens renders token counts compactly as 950, 12.5k or 1.2M
var Tokens = numberFormatter(func(f float64) string {
	n := int64(math.Round(f))
	if n >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
})

// Percent renders a 0..1 ratio as a percentage
var Percent = numberFormatter(func(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
})

// Score renders a 0..1 quality score with two decimals
var Score = numberFormatter(func(f float64) string {
	return fmt.Sprintf("%.2f", f)
})

// Bool renders booleans with the given labels.
// Values that are not booleans fall back to plain text.
func Bool(trueLabel, falseLabel string) Formatter {
	return FormatterFunc(func(v any) string {
		switch t := v.(type) {
		case nil:
			return Placeholder
		case bool:
			if t {
				return trueLabel
			}
			return falseLabel
		case string:
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "true", "yes", "1":
				return trueLabel
			case "false", "no", "0":
				return falseLabel
			}
		}
		return Text(v)
	})
}

// Truncate renders text shortened to at most n runes with an ellipsis
func Truncate(n int) Formatter {
	return FormatterFunc(func(v any) string {
		s := strings.TrimSpace(strings.ReplaceAll(values.String(v), "\n", " "))
		if s == "" {
			return Placeholder
		}
		if utf8.RuneCountInString(s) > n {
			r := []rune(s)
			return string(r[:n]) + "…"
		}
		return s
	})
}

// Timestamp renders time values in a display location using a display pattern
// such as "yyyy-MM-dd HH:mm:ss".
type Timestamp struct {
	Location *time.Location
	Pattern  string
}

// Format implements Formatter
func (f Timestamp) Format(v any) string {
	if values.IsNil(v) {
		return Placeholder
	}
	t, ok := timestamps.ToTime(v, time.UTC)
	if !ok {
		return Text(v)
	}
	return timestamps.FormatMillis(t.UnixMilli(), f.Location, f.Pattern)
}

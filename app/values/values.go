// Package values holds the value semantics shared by formatters, predicates,
// filters and the sort stage: nil detection, numeric coercion, canonical keys
// and ordering.
package values

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// IsNil reports whether v counts as a missing value.
// NaN is treated as missing so that it never wins a comparison.
func IsNil(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	}
	return false
}

// IsFalsy reports whether v is nil, false, zero, NaN or the empty string
func IsFalsy(v any) bool {
	if IsNil(v) {
		return true
	}
	switch t := v.(type) {
	case bool:
		return !t
	case string:
		return t == ""
	case time.Time:
		return t.IsZero()
	}
	if f, ok := Number(v); ok {
		return f == 0
	}
	return false
}

// Number returns v as a float64 when v holds a numeric type
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case float32:
		return float64(t), !math.IsNaN(float64(t))
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

// ParseNumber attempts to parse a string as a float64
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// String renders v as plain text without any display formatting
func String(v any) string {
	if IsNil(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	}
	if f, ok := Number(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// Key returns a canonical identity for v.
// Two values with the same key are the same filter option: 3, int64(3) and
// 3.0 share a key while "3" does not.
func Key(v any) string {
	if IsNil(v) {
		return "nil"
	}
	switch t := v.(type) {
	case string:
		return "s:" + t
	case bool:
		return "b:" + strconv.FormatBool(t)
	case time.Time:
		return "t:" + t.UTC().Format(time.RFC3339Nano)
	}
	if f, ok := Number(v); ok {
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "x:" + fmt.Sprintf("%v", v)
}

// Equal reports whether a and b are the same value by canonical key
func Equal(a, b any) bool {
	return Key(a) == Key(b)
}

// Comparator orders non-nil values: numbers numerically, booleans false
// before true, times chronologically and everything else with a locale-aware
// string collation.
// A Comparator is safe for concurrent use.
type Comparator struct {
	mu       sync.Mutex
	collator *collate.Collator
}

// NewComparator creates a comparator collating strings for the given language tag.
// An empty tag selects English.
func NewComparator(tag string) *Comparator {
	lang := language.English
	if tag != "" {
		if parsed, err := language.Parse(tag); err == nil {
			lang = parsed
		}
	}
	return &Comparator{collator: collate.New(lang)}
}

// Compare returns -1, 0 or 1. Callers handle nil values before calling Compare.
func (c *Comparator) Compare(a, b any) int {
	if af, ok := Number(a); ok {
		if bf, ok := Number(b); ok {
			return compareFloat(af, bf)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collator.CompareString(String(a), String(b))
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

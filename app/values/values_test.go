package values

import (
	"math"
	"testing"
	"time"
)

func TestIsFalsy(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{"nil", nil, true},
		{"false", false, true},
		{"true", true, false},
		{"zero float", 0.0, true},
		{"zero int", 0, true},
		{"NaN", math.NaN(), true},
		{"empty string", "", true},
		{"string", "gpt-4o", false},
		{"negative", -1.5, false},
		{"zero time", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFalsy(tt.value); got != tt.expected {
				t.Errorf("IsFalsy(%v) = %v, expected %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestKey_NumericKindsShareIdentity(t *testing.T) {
	if Key(3) != Key(3.0) || Key(int64(3)) != Key(float32(3)) {
		t.Errorf("expected numeric kinds to share a key, got %q %q %q %q", Key(3), Key(3.0), Key(int64(3)), Key(float32(3)))
	}
	if Key("3") == Key(3) {
		t.Errorf("expected string and number keys to differ")
	}
	if Key(nil) != Key(math.NaN()) {
		t.Errorf("expected NaN to be keyed as nil")
	}
}

func TestComparator_Compare(t *testing.T) {
	c := NewComparator("")
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		a, b     any
		expected int
	}{
		{"numbers", 2.0, 10.0, -1},
		{"mixed numeric kinds", int64(10), 2.5, 1},
		{"equal numbers", 5, 5.0, 0},
		{"booleans", false, true, -1},
		{"times", t0.Add(time.Hour), t0, 1},
		{"strings collate", "apple", "Banana", -1},
		{"strings are not numbers", "10", "9", -1},
		{"equal strings", "gpt-4o", "gpt-4o", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Compare(tt.a, tt.b); got != tt.expected {
				t.Errorf("Compare(%v, %v) = %d, expected %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestString(t *testing.T) {
	if got := String(12000.0); got != "12000" {
		t.Errorf("expected 12000, got %q", got)
	}
	if got := String(nil); got != "" {
		t.Errorf("expected empty string for nil, got %q", got)
	}
	if got := String(true); got != "true" {
		t.Errorf("expected true, got %q", got)
	}
}

package timestamps

import (
	"testing"
	"time"
)

func TestParseTimestampMillis(t *testing.T) {
	want := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC).UnixMilli()

	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"rfc3339", "2025-03-04T10:30:00Z", true},
		{"offset", "2025-03-04T12:30:00+02:00", true},
		{"space separated", "2025-03-04 10:30:00", true},
		{"epoch seconds", "1741084200", true},
		{"epoch millis", "1741084200000", true},
		{"garbage", "not a time", false},
		{"empty", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestampMillis(tt.input, time.UTC)
			if ok != tt.ok {
				t.Fatalf("ParseTimestampMillis(%q) ok = %v, expected %v", tt.input, ok, tt.ok)
			}
			if ok && got != want {
				t.Errorf("ParseTimestampMillis(%q) = %d, expected %d", tt.input, got, want)
			}
		})
	}
}

func TestToTime(t *testing.T) {
	want := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)

	inputs := []any{want, "2025-03-04T10:30:00Z", float64(1741084200), int64(1741084200000)}
	for _, in := range inputs {
		got, ok := ToTime(in, time.UTC)
		if !ok || !got.Equal(want) {
			t.Errorf("ToTime(%v) = %v, %v; expected %v", in, got, ok, want)
		}
	}
	if _, ok := ToTime(nil, time.UTC); ok {
		t.Errorf("expected nil to fail")
	}
	if _, ok := ToTime(true, time.UTC); ok {
		t.Errorf("expected bool to fail")
	}
}

func TestFormatMillis(t *testing.T) {
	ms := time.Date(2025, 3, 4, 10, 30, 5, 0, time.UTC).UnixMilli()
	if got := FormatMillis(ms, time.UTC, ""); got != "2025-03-04 10:30:05" {
		t.Errorf("unexpected default format %q", got)
	}
	if got := FormatMillis(ms, time.UTC, "dd/MM HH:mm"); got != "04/03 10:30" {
		t.Errorf("unexpected custom format %q", got)
	}
}

func TestDetectTimestampKey(t *testing.T) {
	tests := []struct {
		keys     []string
		expected string
	}{
		{[]string{"call_id", "latency_ms", "timestamp"}, "timestamp"},
		{[]string{"call_id", "created_at"}, "created_at"},
		{[]string{"call_id", "request_time"}, "request_time"},
		{[]string{"call_id", "first_token_time_ms"}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := DetectTimestampKey(tt.keys); got != tt.expected {
			t.Errorf("DetectTimestampKey(%v) = %q, expected %q", tt.keys, got, tt.expected)
		}
	}
}

func TestParseFlexibleTime(t *testing.T) {
	now := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"now", now},
		{"24h", now.Add(-24 * time.Hour)},
		{"7 days ago", now.Add(-7 * 24 * time.Hour)},
		{"30m", now.Add(-30 * time.Minute)},
		{"2025-03-01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := ParseFlexibleTime(tt.input, now, time.UTC)
		if !ok || got != tt.expected.UnixMilli() {
			t.Errorf("ParseFlexibleTime(%q) = %d, %v; expected %d", tt.input, got, ok, tt.expected.UnixMilli())
		}
	}
	if _, ok := ParseFlexibleTime("5 fortnights", now, time.UTC); ok {
		t.Errorf("expected unknown unit to fail")
	}
}

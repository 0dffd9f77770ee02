// Package columns holds the column registry: the display metadata, value
// formatters and color rules for every field a telemetry row can carry.
package columns

import (
	"encoding/json"
	"fmt"
)

// FieldType defines the column data type used for coercion and alignment.
type FieldType uint8

const (
	// FieldTypeString is for text and categorical values.
	FieldTypeString FieldType = iota
	// FieldTypeInteger is for counts such as token totals.
	FieldTypeInteger
	// FieldTypeFloat is for fractional metrics.
	FieldTypeFloat
	// FieldTypeCurrency is for USD amounts.
	FieldTypeCurrency
	// FieldTypeDuration is for millisecond durations.
	FieldTypeDuration
	// FieldTypeBoolean is for true/false values.
	FieldTypeBoolean
	// FieldTypeTimestamp is for call timestamps.
	FieldTypeTimestamp
	// FieldTypeScore is for 0..1 quality scores and ratios.
	FieldTypeScore
)

// String returns the UI keyword used for this field type.
func (t FieldType) String() string {
	switch t {
	case FieldTypeInteger:
		return "integer"
	case FieldTypeFloat:
		return "float"
	case FieldTypeCurrency:
		return "currency"
	case FieldTypeDuration:
		return "duration"
	case FieldTypeBoolean:
		return "boolean"
	case FieldTypeTimestamp:
		return "timestamp"
	case FieldTypeScore:
		return "score"
	default:
		return "string"
	}
}

// MarshalJSON encodes the field type as a UI keyword.
func (t FieldType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Numeric reports whether values of this type are numbers.
func (t FieldType) Numeric() bool {
	switch t {
	case FieldTypeInteger, FieldTypeFloat, FieldTypeCurrency, FieldTypeDuration, FieldTypeScore:
		return true
	}
	return false
}

// Formatter renders a cell value as display text.
// Implementations must accept any value, including nil, without panicking.
type Formatter interface {
	Format(v any) string
}

// FormatterFunc adapts a plain function to Formatter.
type FormatterFunc func(v any) string

// Format calls f(v).
func (f FormatterFunc) Format(v any) string { return f(v) }

// Colorizer maps a cell value to a style class.
// Two equal values always map to the same class.
type Colorizer interface {
	Colorize(v any) string
}

// ColorizerFunc adapts a plain function to Colorizer.
type ColorizerFunc func(v any) string

// Colorize calls f(v).
func (f ColorizerFunc) Colorize(v any) string { return f(v) }

// Column is the static definition of one registered column.
type Column struct {
	Key        string    `json:"key"`
	Label      string    `json:"label"`
	Category   string    `json:"category"`
	Type       FieldType `json:"type"`
	Sortable   bool      `json:"sortable"`
	Filterable bool      `json:"filterable"`

	// Formatter is required; Colorizer and ClassName are mutually exclusive.
	Formatter Formatter `json:"-"`
	Colorizer Colorizer `json:"-"`
	ClassName string    `json:"className,omitempty"`
}

// Format renders v with the column formatter.
// A formatter that panics degrades to the placeholder.
func (c *Column) Format(v any) (out string) {
	if c.Formatter == nil {
		return Text(v)
	}
	defer func() {
		if r := recover(); r != nil {
			out = Placeholder
		}
	}()
	return c.Formatter.Format(v)
}

// CellClass returns the colorizer class for v when the column has a
// colorizer, and the static ClassName otherwise.
func (c *Column) CellClass(v any) (class string) {
	if c.Colorizer == nil {
		return c.ClassName
	}
	defer func() {
		if r := recover(); r != nil {
			class = ""
		}
	}()
	return c.Colorizer.Colorize(v)
}

func (c *Column) validate() error {
	if c.Key == "" {
		return fmt.Errorf("column has no key: %w", ErrInvalidColumn)
	}
	if c.Formatter == nil {
		return fmt.Errorf("column %q: %w", c.Key, ErrMissingFormatter)
	}
	if c.Colorizer != nil && c.ClassName != "" {
		return fmt.Errorf("column %q: %w", c.Key, ErrColorizerAndClass)
	}
	return nil
}

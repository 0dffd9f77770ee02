package fileloader

import (
	"strings"
	"time"

	"observatory/app/columns"
	"observatory/app/interfaces"
	"observatory/app/timestamps"
	"observatory/app/values"
)

// Coerce converts the cells of registered columns to their field types in
// place. Text cells from CSV and XLSX become numbers, booleans and times;
// blank text becomes nil for every field. Cells that do not parse are kept.
func Coerce(rows []interfaces.Row, cols *columns.Registry, loc *time.Location) {
	types := make(map[string]columns.FieldType, cols.Len())
	for _, col := range cols.Columns() {
		types[col.Key] = col.Type
	}

	for _, row := range rows {
		for k, v := range row {
			t, registered := types[k]
			if !registered {
				if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
					row[k] = nil
				}
				continue
			}
			row[k] = CoerceValue(v, t, loc)
		}
	}
}

// CoerceValue converts one cell to field type t
func CoerceValue(v any, t columns.FieldType, loc *time.Location) any {
	s, isString := v.(string)
	if isString {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
	}

	switch {
	case t == columns.FieldTypeTimestamp:
		if tm, ok := timestamps.ToTime(v, loc); ok {
			return tm
		}
	case t == columns.FieldTypeBoolean:
		if !isString {
			return v
		}
		switch strings.ToLower(s) {
		case "true", "yes", "y", "1", "t":
			return true
		case "false", "no", "n", "0", "f":
			return false
		}
	case t.Numeric():
		if !isString {
			return v
		}
		if f, ok := parseDecorated(s); ok {
			return f
		}
	default:
		if isString {
			return s
		}
		return v
	}
	if isString {
		return s
	}
	return v
}

// parseDecorated parses numbers written the way spreadsheets display them:
// "$1,234.50", "12.5%" (as 0.125) or "1 200".
func parseDecorated(s string) (float64, bool) {
	if f, ok := values.ParseNumber(s); ok {
		return f, true
	}
	percent := strings.HasSuffix(s, "%")
	clean := strings.NewReplacer("$", "", ",", "", " ", "", "%", "").Replace(s)
	f, ok := values.ParseNumber(clean)
	if !ok {
		return 0, false
	}
	if percent {
		f /= 100
	}
	return f, true
}

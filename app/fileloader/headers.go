package fileloader

import (
	"strconv"
	"strings"
)

// excelColumnName converts a 0-based index to Excel-style column name.
// Examples: 0 -> A, 25 -> Z, 26 -> AA, 701 -> ZZ, 702 -> AAA
func excelColumnName(index int) string {
	result := ""
	index++
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}

// NormalizeHeaders trims header names, replaces empty ones with Unnamed_A,
// Unnamed_B, ... and suffixes repeated names with _2, _3, ... so that every
// header is a distinct row key.
//
// Example:
//
//	Input:  ["call_id", "", "model", " ", "model"]
//	Output: ["call_id", "Unnamed_A", "model", "Unnamed_B", "model_2"]
func NormalizeHeaders(header []string) []string {
	normalized := make([]string, len(header))
	seen := make(map[string]int, len(header))
	emptyCount := 0

	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = "Unnamed_" + excelColumnName(emptyCount)
			emptyCount++
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = name + "_" + strconv.Itoa(n)
		}
		normalized[i] = name
	}
	return normalized
}

// syntheticHeaders returns Unnamed_A.. headers for files without a header row
func syntheticHeaders(n int) []string {
	return NormalizeHeaders(make([]string, n))
}

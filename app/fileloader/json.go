package fileloader

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"observatory/app/interfaces"
)

// envelopePaths are tried, in order, when a JSON document is an object and no
// JSONPath expression was given. They match the backend response envelopes.
var envelopePaths = []jp.Expr{
	jp.MustParseString("$.rows"),
	jp.MustParseString("$.calls"),
	jp.MustParseString("$.data"),
}

var nestedJSON = &ojg.Options{Sort: true}

// parseJSON decodes a JSON document and selects its row array.
// A non-empty expression must select an array; otherwise a top-level array
// is used as is, an envelope object yields its row array and any other
// object is a single row.
func parseJSON(data []byte, expression string) ([]string, []interfaces.Row, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	items, err := selectItems(doc, expression)
	if err != nil {
		return nil, nil, err
	}
	header, rows := objectsToRows(items)
	return header, rows, nil
}

func selectItems(doc any, expression string) ([]any, error) {
	if expression != "" {
		x, err := jp.ParseString(expression)
		if err != nil {
			return nil, fmt.Errorf("invalid JSONPath expression %q: %w", expression, err)
		}
		results := x.Get(doc)
		if len(results) == 0 {
			return []any{}, nil
		}
		arr, ok := results[0].([]any)
		if !ok {
			return nil, fmt.Errorf("%q selected %T: %w", expression, results[0], ErrNotAnArray)
		}
		return arr, nil
	}

	switch t := doc.(type) {
	case []any:
		return t, nil
	case map[string]any:
		for _, p := range envelopePaths {
			if results := p.Get(t); len(results) > 0 {
				if arr, ok := results[0].([]any); ok {
					return arr, nil
				}
			}
		}
		return []any{t}, nil
	}
	return nil, fmt.Errorf("top-level JSON value is %T: %w", doc, ErrNotAnArray)
}

// parseNDJSON decodes one JSON value per line. Blank lines are skipped and a
// line holding an array contributes each of its elements.
func parseNDJSON(data []byte) ([]string, []interfaces.Row, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var items []any
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		v, err := oj.Parse(line)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse line %d: %w", lineNo, err)
		}
		if arr, ok := v.([]any); ok {
			items = append(items, arr...)
			continue
		}
		items = append(items, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read lines: %w", err)
	}

	header, rows := objectsToRows(items)
	return header, rows, nil
}

// objectsToRows turns decoded JSON values into rows. Nested objects and arrays
// are kept as their compact JSON text; scalars that are not objects become a
// row with a single "value" field.
func objectsToRows(items []any) ([]string, []interfaces.Row) {
	header := []string{}
	seen := map[string]bool{}
	rows := make([]interfaces.Row, 0, len(items))

	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			obj = map[string]any{"value": item}
		}
		row := make(interfaces.Row, len(obj))
		for k, v := range obj {
			switch v.(type) {
			case map[string]any, []any:
				row[k] = oj.JSON(v, nestedJSON)
			default:
				row[k] = v
			}
		}
		for _, k := range sortedKeys(obj) {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
		rows = append(rows, row)
	}
	return header, rows
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

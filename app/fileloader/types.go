// Package fileloader reads call rows from exported files (CSV, JSON, NDJSON,
// XLSX, optionally gzip/bzip2/xz compressed) or from a directory of such
// files, and writes rows back out as CSV or XLSX.
package fileloader

import (
	"errors"

	"observatory/app/interfaces"
)

// FileType represents the type of data file being processed
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeXLSX
	FileTypeJSON
	FileTypeNDJSON
)

// String returns the string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "CSV"
	case FileTypeXLSX:
		return "XLSX"
	case FileTypeJSON:
		return "JSON"
	case FileTypeNDJSON:
		return "NDJSON"
	default:
		return "Unknown"
	}
}

var (
	ErrEmptyPath         = errors.New("file path is empty")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNotAnArray        = errors.New("JSONPath expression must select an array")
	ErrNoFiles           = errors.New("no files matched")
	ErrTooManyFiles      = errors.New("too many files matched")
)

// Result is the outcome of loading a file or directory
type Result struct {
	// Columns lists every field seen, in order of first appearance
	Columns []string         `json:"columns"`
	Rows    []interfaces.Row `json:"-"`
	Files   int              `json:"files"`

	// Warning is set when a compressed file could only be partially read
	Warning string `json:"warning,omitempty"`
}

// DefaultFilePattern is used for directory loads without a pattern
const DefaultFilePattern = "**/*.{csv,tsv,json,jsonl,ndjson,xlsx,csv.gz,tsv.gz,json.gz,jsonl.gz,ndjson.gz,csv.bz2,json.bz2,jsonl.bz2,ndjson.bz2,csv.xz,json.xz,jsonl.xz,ndjson.xz}"

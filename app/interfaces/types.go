package interfaces

import (
	"strings"
)

// Row is a single flat telemetry record keyed by column key.
// It represents one LLM call or one aggregated pattern returned by the backend.
// A key that is absent is treated exactly like a key holding nil.
type Row map[string]any

// Value returns the value stored for key, or nil when the key is absent
func (r Row) Value(key string) any {
	if r == nil {
		return nil
	}
	return r[key]
}

// Clone returns a shallow copy of the row
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// StageResult represents the output of a pipeline stage with metadata
type StageResult struct {
	Rows []Row // Rows surviving the stage, in output order

	// Pagination metadata, only filled in by the page stage
	FilteredCount int
	TotalPages    int
	Page          int
	PageSize      int
	Paged         bool
}

// Logger interface for components that report to the application log
type Logger interface {
	Log(level, message string)
}

// EventBus is a source of frontend events.
// On subscribes cb to the named event and returns the function that removes the
// subscription again. The returned function must be safe to call more than once.
type EventBus interface {
	On(name string, cb func(data ...any)) (cancel func())
}

// Emitter sends events to the frontend
type Emitter interface {
	Emit(name string, data ...any)
}

// Frontend events the table listens to while an interaction is in progress
const (
	EventOutsideClick = "ui:outside-click"
	EventKeyDown      = "ui:keydown"
	EventPointerMove  = "ui:pointer-move"
	EventPointerUp    = "ui:pointer-up"
)

// Events emitted to the frontend
const (
	EventLog            = "log"
	EventNavigateCall   = "navigate:call"
	EventTableChanged   = "table:changed"
	EventHistogramReady = "histogram:ready"
)

// SourceOptions contains the options that define how rows are read from an
// exported file or directory of files.
type SourceOptions struct {
	JPath                  string `json:"jpath,omitempty" yaml:"jpath,omitempty"`
	NoHeaderRow            bool   `json:"noHeaderRow,omitempty" yaml:"noHeaderRow,omitempty"`
	IngestTimezoneOverride string `json:"ingestTimezoneOverride,omitempty" yaml:"ingestTimezoneOverride,omitempty"`

	// Directory loading options
	IsDirectory         bool   `json:"isDirectory,omitempty" yaml:"isDirectory,omitempty"`
	FilePattern         string `json:"filePattern,omitempty" yaml:"filePattern,omitempty"`
	IncludeSourceColumn bool   `json:"includeSourceColumn,omitempty" yaml:"includeSourceColumn,omitempty"`
}

// Key returns a unique string key for this options combination.
func (o SourceOptions) Key() string {
	noHeaderStr := "false"
	if o.NoHeaderRow {
		noHeaderStr = "true"
	}
	tzStr := o.IngestTimezoneOverride
	if tzStr == "" {
		tzStr = "default"
	}
	dirStr := "file"
	if o.IsDirectory {
		dirStr = "dir"
		if o.FilePattern != "" {
			dirStr += ":" + o.FilePattern
		}
		if o.IncludeSourceColumn {
			dirStr += ":src"
		}
	}
	return strings.Join([]string{o.JPath, noHeaderStr, tzStr, dirStr}, "::")
}

// SourceFileColumn is the column added to rows read from a directory when
// IncludeSourceColumn is set.
const SourceFileColumn = "__source_file__"

// SortDirection is the direction of a column sort
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortConfig names the active sort column. An empty Key means unsorted.
type SortConfig struct {
	Key       string        `json:"key"`
	Direction SortDirection `json:"direction"`
}

// IsSorted reports whether a sort column is set
func (s SortConfig) IsSorted() bool {
	return s.Key != ""
}

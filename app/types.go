package app

import (
	"observatory/app/components"
	"observatory/app/histogram"
	"observatory/app/interfaces"
	"observatory/app/stories"
	"observatory/app/summary"
)

// StoryInfo describes a story for the navigation menu
type StoryInfo struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	PrimaryMetric string `json:"primaryMetric"`
}

func storyInfo(s *stories.Story) StoryInfo {
	return StoryInfo{
		ID:            s.ID,
		Title:         s.Title,
		Description:   s.Description,
		PrimaryMetric: s.PrimaryMetric,
	}
}

// TableInfo describes an open table session
type TableInfo struct {
	ID      string `json:"id"`
	StoryID string `json:"storyId"`
	Source  string `json:"source"`
	Rows    int    `json:"rows"`
}

// StoryPage is everything a story page renders on open or refresh
type StoryPage struct {
	TableID string                `json:"tableId"`
	Story   StoryInfo             `json:"story"`
	Table   *components.TableView `json:"table"`
	Summary summary.Summary       `json:"summary"`
	Cards   []summary.Card        `json:"cards"`
	// Warning reports a partially read export (for example a truncated archive)
	Warning string `json:"warning,omitempty"`
}

// SummaryView is a KPI summary with its rendered tiles
type SummaryView struct {
	Summary summary.Summary `json:"summary"`
	Cards   []summary.Card  `json:"cards"`
}

// Overview is the landing page: KPIs and call volume over every call
type Overview struct {
	Summary   summary.Summary     `json:"summary"`
	Cards     []summary.Card      `json:"cards"`
	Histogram *histogram.Response `json:"histogram"`
	Stories   []StoryInfo         `json:"stories"`
}

// TableChangedEvent is emitted when a table changed outside a bound call,
// for example while a column is being resized.
type TableChangedEvent struct {
	TableID string                `json:"tableId"`
	Table   *components.TableView `json:"table,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// NavigateEvent asks the frontend to open the detail view of a call
type NavigateEvent struct {
	TableID string         `json:"tableId"`
	StoryID string         `json:"storyId"`
	CallID  string         `json:"callId"`
	Row     interfaces.Row `json:"row"`
}

// CacheStatsResponse contains cache statistics for the frontend
type CacheStatsResponse struct {
	TotalSize    int64   `json:"totalSize"`
	MaxSize      int64   `json:"maxSize"`
	UsagePercent float64 `json:"usagePercent"`
	EntryCount   int     `json:"entryCount"`
	HitRate      float64 `json:"hitRate"`
}

// CopyResult reports the number of data rows copied
type CopyResult struct {
	RowsCopied int `json:"rowsCopied"`
}

// ExportResult reports a finished export
type ExportResult struct {
	Path         string `json:"path"`
	RowsExported int    `json:"rowsExported"`
}

package app

import (
	"fmt"
	"strings"
	"time"

	"observatory/app/components"
	"observatory/app/fileloader"
	"observatory/app/histogram"
	"observatory/app/interfaces"
	"observatory/app/stories"
	"observatory/app/summary"
	"observatory/app/table"
	"observatory/app/timestamps"
)

// OpenStory fetches the rows of a story from the backend and opens a table
// for them with the story defaults.
func (a *App) OpenStory(storyID string) (*StoryPage, error) {
	story, err := a.stories.Get(storyID)
	if err != nil {
		return nil, err
	}
	sess, err := a.newSession(story, SourceBackend, storyEndpoint(story), interfaces.SourceOptions{})
	if err != nil {
		return nil, err
	}
	if err := a.loadFromBackend(sess); err != nil {
		sess.engine.Close()
		return nil, err
	}
	a.addSession(sess)
	a.Log("info", fmt.Sprintf("Opened story %s (%d calls)", story.ID, sess.engine.RowCount()))
	return a.storyPage(sess)
}

// OpenStoryFromFile opens a table for story over an exported file or a
// directory of exports instead of the backend.
func (a *App) OpenStoryFromFile(storyID, path string, opts interfaces.SourceOptions) (*StoryPage, error) {
	story, err := a.stories.Get(storyID)
	if err != nil {
		return nil, err
	}
	sess, err := a.newSession(story, SourceFile, path, opts)
	if err != nil {
		return nil, err
	}
	if err := a.loadFromFile(sess); err != nil {
		sess.engine.Close()
		return nil, err
	}
	a.addSession(sess)
	a.Log("info", fmt.Sprintf("Opened %s as story %s (%d calls)", path, story.ID, sess.engine.RowCount()))
	return a.storyPage(sess)
}

// RefreshTable reloads the rows of a table from its source. Filters, sort
// and columns are kept; the table returns to page 1.
func (a *App) RefreshTable(tableID string) (*StoryPage, error) {
	sess, err := a.session(tableID)
	if err != nil {
		return nil, err
	}
	previous := sess.engine.Fingerprint()
	if sess.Kind == SourceFile {
		err = a.loadFromFile(sess)
	} else {
		err = a.loadFromBackend(sess)
	}
	if err != nil {
		return nil, err
	}
	if sess.engine.Fingerprint() != previous {
		a.releaseRowSet(previous)
	}
	return a.storyPage(sess)
}

func storyEndpoint(story *stories.Story) string {
	if story.Endpoint != "" {
		return story.Endpoint
	}
	return story.ID
}

func (a *App) loadFromBackend(sess *TableSession) error {
	client, err := a.backendClient()
	if err != nil {
		return err
	}
	ctx, cancel := a.requestContext()
	defer cancel()

	resp, err := client.GetStory(ctx, sess.Source)
	if err != nil {
		a.Log("error", fmt.Sprintf("Failed to fetch story %s: %v", sess.Source, err))
		return fmt.Errorf("failed to fetch story %s: %w", sess.Story.ID, err)
	}
	sess.setData(resp.Rows, summary.Merge(resp.Summary, resp.Rows), "")
	return nil
}

func (a *App) loadFromFile(sess *TableSession) error {
	res, err := a.fileLoader().Load(a.baseContext(), sess.Source, sess.Options)
	if err != nil {
		a.Log("error", fmt.Sprintf("Failed to load %s: %v", sess.Source, err))
		return err
	}
	if res.Warning != "" {
		a.Log("warn", fmt.Sprintf("%s: %s", sess.Source, res.Warning))
	}
	sess.setData(res.Rows, summary.Compute(res.Rows), res.Warning)
	return nil
}

func (a *App) storyPage(sess *TableSession) (*StoryPage, error) {
	v, err := a.view(sess)
	if err != nil {
		return nil, err
	}
	sum, warning := sess.loaded()
	return &StoryPage{
		TableID: sess.ID,
		Story:   storyInfo(sess.Story),
		Table:   v,
		Summary: sum,
		Cards:   summary.Cards(sum, sess.Story.PrimaryMetric),
		Warning: warning,
	}, nil
}

// GetTable returns the current view of a table
func (a *App) GetTable(tableID string) (*components.TableView, error) {
	sess, err := a.session(tableID)
	if err != nil {
		return nil, err
	}
	return a.view(sess)
}

// GetTableSummary computes the KPIs of the rows currently passing the
// table's filters.
func (a *App) GetTableSummary(tableID string) (*SummaryView, error) {
	sess, err := a.session(tableID)
	if err != nil {
		return nil, err
	}
	rows, err := sess.engine.Filtered(a.baseContext())
	if err != nil {
		return nil, err
	}
	sum := summary.Compute(rows)
	return &SummaryView{Summary: sum, Cards: summary.Cards(sum, sess.Story.PrimaryMetric)}, nil
}

// GetTableHistogram buckets the filtered rows of a table by timestamp and
// emits the result as a histogram:ready event tagged with a new version.
func (a *App) GetTableHistogram(tableID string, bucketSeconds int) (*histogram.Response, error) {
	return a.GetTableHistogramRange(tableID, bucketSeconds, "", "")
}

// GetTableHistogramRange is GetTableHistogram limited to [after, before].
// Bounds are absolute times or relative phrases such as "24h" or
// "7 days ago"; an empty bound is open.
func (a *App) GetTableHistogramRange(tableID string, bucketSeconds int, after, before string) (*histogram.Response, error) {
	sess, err := a.session(tableID)
	if err != nil {
		return nil, err
	}
	opts := histogram.Options{
		BucketSeconds: bucketSeconds,
		Location:      a.ingestLocation(),
	}
	now := time.Now()
	if opts.After, err = parseBound("after", after, now, opts.Location); err != nil {
		return nil, err
	}
	if opts.Before, err = parseBound("before", before, now, opts.Location); err != nil {
		return nil, err
	}
	version := histogram.IncrementVersion(tableID, &sess.histVersion)

	resp, err := a.tableHistogram(sess, opts)
	if err != nil {
		a.events.Emit(interfaces.EventHistogramReady, &histogram.ReadyEvent{
			TableID: tableID,
			Version: version,
			Error:   err.Error(),
		})
		a.Log("error", fmt.Sprintf("Histogram for table %s failed: %v", tableID, err))
		return nil, err
	}
	resp.Version = version

	a.events.Emit(interfaces.EventHistogramReady, &histogram.ReadyEvent{
		TableID:       tableID,
		Version:       version,
		Buckets:       resp.Buckets,
		MinTs:         resp.MinTs,
		MaxTs:         resp.MaxTs,
		BucketSeconds: resp.BucketSeconds,
	})
	return resp, nil
}

// GetTableHistogramVersion returns the version of the last histogram
// requested for a table. Ready events with another version are stale.
func (a *App) GetTableHistogramVersion(tableID string) (string, error) {
	sess, err := a.session(tableID)
	if err != nil {
		return "", err
	}
	return histogram.LoadVersion(tableID, &sess.histVersion), nil
}

func parseBound(name, s string, now time.Time, loc *time.Location) (*int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	ms, ok := timestamps.ParseFlexibleTime(s, now, loc)
	if !ok {
		return nil, fmt.Errorf("invalid %s time %q", name, s)
	}
	return &ms, nil
}

func (a *App) tableHistogram(sess *TableSession, opts histogram.Options) (*histogram.Response, error) {
	ctx := a.baseContext()
	rows, err := sess.engine.Filtered(ctx)
	if err != nil {
		return nil, err
	}
	return histogram.Build(ctx, rows, opts)
}

// apply runs a state transition on a table and returns the new view
func (a *App) apply(tableID string, op func(e *table.Engine) error) (*components.TableView, error) {
	sess, err := a.session(tableID)
	if err != nil {
		return nil, err
	}
	if err := op(sess.engine); err != nil {
		return nil, err
	}
	return a.view(sess)
}

// SelectQuickFilter activates a quick filter preset
func (a *App) SelectQuickFilter(tableID, filterID string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.SelectQuickFilter(filterID)
	})
}

// ToggleFilterOption selects or deselects one option of a column filter.
// optionKey is the Key of a components.FilterOption.
func (a *App) ToggleFilterOption(tableID, key, optionKey string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.ToggleFilterOption(key, optionKey)
	})
}

// ClearColumnFilter removes every selected value of one column filter
func (a *App) ClearColumnFilter(tableID, key string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.ClearColumnFilter(key)
	})
}

// ClearAllFilters removes every column filter
func (a *App) ClearAllFilters(tableID string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.ClearAllFilters()
	})
}

// ToggleSort cycles the sort of a column: descending, ascending, unsorted
func (a *App) ToggleSort(tableID, key string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.ToggleSort(key)
	})
}

func (a *App) SetPage(tableID string, page int) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.SetPage(page)
	})
}

func (a *App) NextPage(tableID string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.NextPage()
	})
}

func (a *App) PrevPage(tableID string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.PrevPage()
	})
}

// SetPageSize switches to one of the page size presets
func (a *App) SetPageSize(tableID string, size int) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.SetPageSize(size)
	})
}

// AddColumn shows a registered column
func (a *App) AddColumn(tableID, key string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.AddColumn(key)
	})
}

// RemoveColumn hides a column; the last visible column cannot be removed
func (a *App) RemoveColumn(tableID, key string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.RemoveColumn(key)
	})
}

// ToggleFilterPopover opens or closes the filter popover of a column. While
// open it closes on ui:outside-click and on an Escape ui:keydown.
func (a *App) ToggleFilterPopover(tableID, key string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.ToggleFilter(key)
	})
}

func (a *App) CloseFilterPopover(tableID string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		e.CloseFilter()
		return nil
	})
}

// BeginResize starts a column resize. ui:pointer-move events update the
// width and ui:pointer-up ends the resize; each change emits table:changed.
func (a *App) BeginResize(tableID, key string, startX float64, startWidth int) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.BeginResize(key, startX, startWidth)
	})
}

func (a *App) DragColumnStart(tableID, key string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		return e.DragStart(key)
	})
}

func (a *App) DragColumnOver(tableID, key string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		e.DragOver(key)
		return nil
	})
}

// DropColumn moves the dragged column before the current drop target
func (a *App) DropColumn(tableID string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		e.Drop()
		return nil
	})
}

func (a *App) DragColumnEnd(tableID string) (*components.TableView, error) {
	return a.apply(tableID, func(e *table.Engine) error {
		e.DragEnd()
		return nil
	})
}

// ClickRow reports a row of the current page as clicked. The full row is
// emitted as navigate:call and returned.
func (a *App) ClickRow(tableID string, index int) (interfaces.Row, error) {
	sess, err := a.session(tableID)
	if err != nil {
		return nil, err
	}
	if sess.engine.Result() == nil {
		if _, err := sess.engine.Derive(a.baseContext()); err != nil {
			return nil, err
		}
	}
	return sess.engine.ClickRow(index)
}

// IsPathDirectory checks if the given path is a directory
func (a *App) IsPathDirectory(path string) bool {
	return fileloader.IsDirectory(path)
}

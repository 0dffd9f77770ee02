package app

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"observatory/app/columns"
	"observatory/app/components"
	"observatory/app/interfaces"
	"observatory/app/query"
	"observatory/app/stories"
	"observatory/app/summary"
	"observatory/app/table"
	"observatory/app/values"
)

// Source kinds of a table session
const (
	SourceBackend = "backend"
	SourceFile    = "file"
)

// TableSession is one open story table and the data it was loaded from
type TableSession struct {
	ID      string
	Story   *stories.Story
	Kind    string
	Source  string // backend story endpoint or export path
	Options interfaces.SourceOptions

	engine *table.Engine

	// histogram request version, see histogram.IncrementVersion
	histVersion int64

	mu      sync.Mutex // guards summary and warning
	summary summary.Summary
	warning string
}

func (s *TableSession) setData(rows []interfaces.Row, sum summary.Summary, warning string) {
	s.engine.SetRows(rows)
	s.mu.Lock()
	s.summary = sum
	s.warning = warning
	s.mu.Unlock()
}

func (s *TableSession) loaded() (summary.Summary, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary, s.warning
}

func (s *TableSession) info() TableInfo {
	return TableInfo{
		ID:      s.ID,
		StoryID: s.Story.ID,
		Source:  s.Source,
		Rows:    s.engine.RowCount(),
	}
}

// newSession creates an empty table for story with the configured defaults
func (a *App) newSession(story *stories.Story, kind, source string, opts interfaces.SourceOptions) (*TableSession, error) {
	cfg := a.currentSettings()
	sess := &TableSession{
		ID:      uuid.NewString(),
		Story:   story,
		Kind:    kind,
		Source:  source,
		Options: opts,
	}

	c := a.queryCache
	if !cfg.EnableQueryCache {
		c = nil
	}
	engine, err := table.NewEngine(a.columnRegistry(), story, table.Options{
		Cache:       c,
		CacheConfig: query.CacheConfigFromSettings(cfg.EnableQueryCache, cfg.CacheSizeLimitMB),
		Bus:         a.events,
		PageSize:    cfg.DefaultPageSize,
		OnRowClick: func(row interfaces.Row) {
			a.emitNavigate(sess, row)
		},
		OnChange: func() {
			a.emitTableChanged(sess)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create table for story %q: %w", story.ID, err)
	}
	sess.engine = engine
	return sess, nil
}

func (a *App) addSession(sess *TableSession) {
	a.tablesMu.Lock()
	defer a.tablesMu.Unlock()
	a.tables[sess.ID] = sess
}

func (a *App) session(tableID string) (*TableSession, error) {
	a.tablesMu.RLock()
	defer a.tablesMu.RUnlock()
	sess, ok := a.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", tableID, ErrTableNotFound)
	}
	return sess, nil
}

// GetTables returns all open tables
func (a *App) GetTables() []TableInfo {
	a.tablesMu.RLock()
	defer a.tablesMu.RUnlock()

	out := make([]TableInfo, 0, len(a.tables))
	for _, sess := range a.tables {
		out = append(out, sess.info())
	}
	return out
}

// CloseTable releases the listeners of a table and forgets it
func (a *App) CloseTable(tableID string) error {
	a.tablesMu.Lock()
	sess, ok := a.tables[tableID]
	if !ok {
		a.tablesMu.Unlock()
		return fmt.Errorf("%s: %w", tableID, ErrTableNotFound)
	}
	delete(a.tables, tableID)
	a.tablesMu.Unlock()

	fingerprint := sess.engine.Fingerprint()
	sess.engine.Close()
	a.releaseRowSet(fingerprint)
	a.Log("debug", fmt.Sprintf("Closed table %s (%s)", tableID, sess.Story.ID))
	return nil
}

// releaseRowSet drops the memoized stage results of a row set once no open
// table is backed by it
func (a *App) releaseRowSet(fingerprint string) {
	if fingerprint == "" {
		return
	}
	a.tablesMu.RLock()
	for _, other := range a.tables {
		if other.engine.Fingerprint() == fingerprint {
			a.tablesMu.RUnlock()
			return
		}
	}
	a.tablesMu.RUnlock()

	if n := a.queryCache.InvalidateRowSet(fingerprint); n > 0 {
		a.Log("debug", fmt.Sprintf("Released %d cached stage results of row set %s", n, fingerprint))
	}
}

// view builds the view models of the current state. Derivation runs first
// so the page reflects the latest transition.
func (a *App) view(sess *TableSession) (*components.TableView, error) {
	if _, err := sess.engine.Derive(a.baseContext()); err != nil {
		return nil, err
	}
	v := components.BuildTableView(sess.ID, components.FromEngine(sess.engine))
	return &v, nil
}

func (a *App) emitTableChanged(sess *TableSession) {
	ev := TableChangedEvent{TableID: sess.ID}
	if v, err := a.view(sess); err != nil {
		ev.Error = err.Error()
	} else {
		ev.Table = v
	}
	a.events.Emit(interfaces.EventTableChanged, ev)
}

func (a *App) emitNavigate(sess *TableSession, row interfaces.Row) {
	callID := values.String(row[columns.KeyCallID])
	a.events.Emit(interfaces.EventNavigateCall, NavigateEvent{
		TableID: sess.ID,
		StoryID: sess.Story.ID,
		CallID:  callID,
		Row:     row.Clone(),
	})
	a.Log("debug", fmt.Sprintf("Navigate to call %s from %s", callID, sess.Story.ID))
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"observatory/app/backend"
	"observatory/app/cache"
	"observatory/app/columns"
	"observatory/app/fileloader"
	"observatory/app/interfaces"
	"observatory/app/logger"
	"observatory/app/settings"
	"observatory/app/stories"
	"observatory/app/timestamps"
)

var (
	ErrTableNotFound        = errors.New("table not found")
	ErrBackendNotConfigured = errors.New("backend URL is not configured")
)

// App struct
type App struct {
	ctx    context.Context
	events Events

	// Table sessions keyed by table ID
	tablesMu sync.RWMutex
	tables   map[string]*TableSession

	// clipboard init
	clipOnce sync.Once
	clipOK   bool

	// persistent query cache, shared by every table and the file loader
	queryCache *cache.Cache

	stories *stories.Registry

	// Collaborators rebuilt whenever settings change
	settingsMu sync.RWMutex
	settings   settings.Settings
	cols       *columns.Registry
	client     *backend.Client
	loader     *fileloader.Loader
	ingestLoc  *time.Location
}

// NewApp creates a new App application struct
func NewApp() *App {
	return NewAppWithSettings(settings.GetEffectiveSettings())
}

// NewAppWithSettings creates an App from explicit settings instead of the
// settings file.
func NewAppWithSettings(s settings.Settings) *App {
	a := &App{
		events:     nopEvents{},
		tables:     make(map[string]*TableSession),
		queryCache: cache.NewCache(int64(s.CacheSizeLimitMB) * 1024 * 1024),
		stories:    stories.Default(),
	}
	a.applySettings(s)
	return a
}

// Startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.SetEvents(wailsEvents{ctx: ctx})

	// Set the logger for the cache now that we have a context
	a.queryCache.SetLogger(a)
	a.Log("info", fmt.Sprintf("Observatory started, backend %s", a.currentSettings().BackendURL))
}

// Ctx returns the app context
func (a *App) Ctx() context.Context {
	return a.ctx
}

// SetEvents replaces the frontend event channel. Tables opened afterwards
// subscribe through it.
func (a *App) SetEvents(ev Events) {
	if ev == nil {
		ev = nopEvents{}
	}
	a.events = ev
}

// Log writes to the process log and emits a log event to the frontend console
func (a *App) Log(level, message string) {
	if a == nil {
		return
	}
	slog.Log(context.Background(), logger.ParseLevel(level), message)
	a.events.Emit(interfaces.EventLog, map[string]any{
		"level":   level,
		"message": message,
	})
}

// baseContext is the parent of every context the app creates
func (a *App) baseContext() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// requestContext bounds a backend call by the configured request timeout
func (a *App) requestContext() (context.Context, context.CancelFunc) {
	timeout := time.Duration(a.currentSettings().RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = backend.DefaultTimeout
	}
	return context.WithTimeout(a.baseContext(), timeout)
}

// applySettings rebuilds every settings-derived collaborator. Open tables
// keep the column registry they were created with.
func (a *App) applySettings(s settings.Settings) {
	displayLoc := timestamps.GetLocationForTZ(s.DisplayTimezone)
	ingestLoc := timestamps.GetLocationForTZ(s.DefaultIngestTimezone)
	pattern := s.TimestampDisplayFormat
	if pattern == "" {
		pattern = timestamps.DefaultDisplayPattern
	}
	cols := columns.NewDefault(displayLoc, pattern)

	client, err := backend.NewClient(backend.Config{
		BaseURL: s.BackendURL,
		Timeout: time.Duration(s.RequestTimeoutSeconds) * time.Second,
		Token:   s.BackendToken,
	})
	if err != nil {
		a.Log("error", fmt.Sprintf("Backend client disabled: %v", err))
		client = nil
	} else if exp := client.TokenExpires(); !exp.IsZero() && time.Now().After(exp) {
		a.Log("warn", fmt.Sprintf("Backend token expired at %s", exp.Format(time.RFC3339)))
	}

	loader := fileloader.NewLoader(cols, a.queryCache, ingestLoc)
	loader.SetMaxFiles(s.MaxDirectoryFiles)

	if s.CacheSizeLimitMB > 0 {
		a.queryCache.UpdateMaxSize(int64(s.CacheSizeLimitMB) * 1024 * 1024)
	}
	if !logger.Level.SetByName(s.LogLevel) {
		a.Log("warn", fmt.Sprintf("Unknown log level %q", s.LogLevel))
	}

	a.settingsMu.Lock()
	a.settings = s
	a.cols = cols
	a.client = client
	a.loader = loader
	a.ingestLoc = ingestLoc
	a.settingsMu.Unlock()
}

// SettingsChanged implements settings.ChangeHandler
func (a *App) SettingsChanged(old, updated settings.Settings) {
	a.applySettings(updated)

	if old.EnableQueryCache != updated.EnableQueryCache ||
		old.DefaultIngestTimezone != updated.DefaultIngestTimezone {
		a.ClearAllTableCaches()
	}
	a.Log("info", "Settings applied")
}

func (a *App) currentSettings() settings.Settings {
	a.settingsMu.RLock()
	defer a.settingsMu.RUnlock()
	return a.settings
}

func (a *App) columnRegistry() *columns.Registry {
	a.settingsMu.RLock()
	defer a.settingsMu.RUnlock()
	return a.cols
}

func (a *App) fileLoader() *fileloader.Loader {
	a.settingsMu.RLock()
	defer a.settingsMu.RUnlock()
	return a.loader
}

func (a *App) ingestLocation() *time.Location {
	a.settingsMu.RLock()
	defer a.settingsMu.RUnlock()
	return a.ingestLoc
}

func (a *App) backendClient() (*backend.Client, error) {
	a.settingsMu.RLock()
	defer a.settingsMu.RUnlock()
	if a.client == nil {
		return nil, ErrBackendNotConfigured
	}
	return a.client, nil
}

// GetCacheStats returns the current cache statistics for the frontend
func (a *App) GetCacheStats() CacheStatsResponse {
	stats := a.queryCache.GetCacheStats()
	return CacheStatsResponse{
		TotalSize:    stats.TotalSize,
		MaxSize:      stats.MaxSize,
		UsagePercent: stats.UsagePercent,
		EntryCount:   stats.TotalEntries + stats.BaseEntries,
		HitRate:      stats.HitRate,
	}
}

// ClearAllTableCaches drops every memoized stage result and loaded export.
// Tables re-derive from their raw rows on the next call.
func (a *App) ClearAllTableCaches() {
	a.queryCache.Clear()
	a.Log("debug", "Cleared query cache")
}

// ListStories returns the stories in menu order
func (a *App) ListStories() []StoryInfo {
	list := a.stories.List()
	out := make([]StoryInfo, len(list))
	for i, s := range list {
		out[i] = storyInfo(s)
	}
	return out
}

// GetInstanceID returns a unique identifier for this installation
func (a *App) GetInstanceID() (string, error) {
	id := a.currentSettings().InstanceID
	if id == "" {
		return "", fmt.Errorf("instance ID not found in settings")
	}
	return id, nil
}

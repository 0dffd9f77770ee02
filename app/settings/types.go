package settings

// Settings holds application settings that can be overridden by the user.
type Settings struct {
	// BackendURL is the base URL of the telemetry REST API
	BackendURL string `yaml:"backend_url" json:"backend_url"`
	// BackendToken is sent as a bearer token; JWTs are checked for expiry before use
	BackendToken string `yaml:"backend_token,omitempty" json:"backend_token,omitempty"`
	// RequestTimeoutSeconds bounds every backend request
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
	// DefaultPageSize is the page size new tables start with (20, 50 or 100)
	DefaultPageSize int `yaml:"default_page_size" json:"default_page_size"`
	// DefaultStory is opened on startup
	DefaultStory string `yaml:"default_story" json:"default_story"`
	// Remove omitempty so that false is serialized (we need to persist explicit overrides)
	EnableQueryCache bool `yaml:"enable_query_cache" json:"enable_query_cache"`
	// Cache size limit in MB for the query cache
	CacheSizeLimitMB int `yaml:"cache_size_limit_mb" json:"cache_size_limit_mb"`
	// Timezone assumed for exported timestamps that carry no offset.
	// Examples: "Local" (system local), "UTC", or any IANA TZ like "America/Los_Angeles"
	DefaultIngestTimezone string `yaml:"default_ingest_timezone" json:"default_ingest_timezone"`
	// Timezone used to display times. Same semantics as above.
	DisplayTimezone string `yaml:"display_timezone" json:"display_timezone"`
	// Common time format string used to render timestamps in the UI and in copied/exported data.
	// Example: "yyyy-MM-dd HH:mm:ss" (e.g., 2024-12-31 23:59:59)
	TimestampDisplayFormat string `yaml:"timestamp_display_format" json:"timestamp_display_format"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level"`
	// Maximum number of files read when loading a directory of exports
	MaxDirectoryFiles int `yaml:"max_directory_files" json:"max_directory_files"`
	// InstanceID is a unique identifier for this installation (not visible in settings dialog)
	InstanceID string `yaml:"instance_id,omitempty" json:"instance_id,omitempty"`
	// Window size settings (not visible in settings dialog, but persisted)
	WindowWidth  int `yaml:"window_width,omitempty" json:"window_width,omitempty"`
	WindowHeight int `yaml:"window_height,omitempty" json:"window_height,omitempty"`
}

// ChangeHandler is notified after settings were saved.
// This breaks the circular dependency between app and settings packages.
type ChangeHandler interface {
	SettingsChanged(old, updated Settings)
}

// Lower bounds for numeric settings; smaller values in the file are ignored
const (
	minRequestTimeoutSeconds = 1
	minCacheSizeMB           = 1
	minWindowWidth           = 400
	minWindowHeight          = 300
	minDirectoryFiles        = 10
)

// defaultSettings defines the built-in defaults.
var defaultSettings = Settings{
	BackendURL:            "http://localhost:8000",
	RequestTimeoutSeconds: 30,
	DefaultPageSize:       20,
	DefaultStory:          "latency",
	EnableQueryCache:      true,
	CacheSizeLimitMB:      100, // Default 100MB cache size
	// By default, interpret no-timezone timestamps in the system local timezone
	DefaultIngestTimezone: "Local",
	// By default, display in system local timezone
	DisplayTimezone: "Local",
	// Default display format for timestamps (common pattern, not Go layout)
	TimestampDisplayFormat: "yyyy-MM-dd HH:mm:ss",
	LogLevel:               "info",
	MaxDirectoryFiles:      500,
	// Default window size (matches main.go defaults)
	WindowWidth:  1280,
	WindowHeight: 800,
}

// Defaults returns the built-in settings
func Defaults() Settings {
	return defaultSettings
}

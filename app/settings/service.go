package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SettingsService manages reading/writing settings from disk.
type SettingsService struct {
	ctx     context.Context
	path    string
	pathErr error
	handler ChangeHandler
}

// NewSettingsService stores settings next to the executable
func NewSettingsService() *SettingsService {
	path, err := settingsFilePath()
	return &SettingsService{path: path, pathErr: err}
}

// NewSettingsServiceAt stores settings in the file at path
func NewSettingsServiceAt(path string) *SettingsService {
	return &SettingsService{path: path}
}

// SetChangeHandler allows the main function to inject the component that
// applies saved settings
func (s *SettingsService) SetChangeHandler(h ChangeHandler) {
	s.handler = h
}

// Startup receives the Wails context
func (s *SettingsService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// Path returns the settings file location
func (s *SettingsService) Path() string {
	return s.path
}

// GetSettings returns the effective settings (defaults overlaid with file overrides if any).
func (s *SettingsService) GetSettings() (Settings, error) {
	if s.pathErr != nil {
		return defaultSettings, s.pathErr
	}
	return readSettings(s.path)
}

// nonDefault builds a minimal map containing only non-default values to
// avoid zero-value serialization pitfalls
func nonDefault(in Settings) map[string]any {
	d := defaultSettings
	data := make(map[string]any)

	putString := func(key, v, def string) {
		if strings.TrimSpace(v) != strings.TrimSpace(def) {
			data[key] = strings.TrimSpace(v)
		}
	}
	putInt := func(key string, v, def, minimum int) {
		if v != def && v >= minimum {
			data[key] = v
		}
	}

	putString("backend_url", strings.TrimRight(strings.TrimSpace(in.BackendURL), "/"), d.BackendURL)
	putString("backend_token", in.BackendToken, d.BackendToken)
	putInt("request_timeout_seconds", in.RequestTimeoutSeconds, d.RequestTimeoutSeconds, minRequestTimeoutSeconds)
	putInt("default_page_size", in.DefaultPageSize, d.DefaultPageSize, 1)
	putString("default_story", in.DefaultStory, d.DefaultStory)
	if in.EnableQueryCache != d.EnableQueryCache {
		data["enable_query_cache"] = in.EnableQueryCache
	}
	putInt("cache_size_limit_mb", in.CacheSizeLimitMB, d.CacheSizeLimitMB, minCacheSizeMB)
	putString("default_ingest_timezone", in.DefaultIngestTimezone, d.DefaultIngestTimezone)
	putString("display_timezone", in.DisplayTimezone, d.DisplayTimezone)
	putString("timestamp_display_format", in.TimestampDisplayFormat, d.TimestampDisplayFormat)
	putString("log_level", strings.ToLower(in.LogLevel), d.LogLevel)
	putInt("max_directory_files", in.MaxDirectoryFiles, d.MaxDirectoryFiles, minDirectoryFiles)
	if id := strings.TrimSpace(in.InstanceID); id != "" {
		data["instance_id"] = id
	}
	putInt("window_width", in.WindowWidth, d.WindowWidth, minWindowWidth)
	putInt("window_height", in.WindowHeight, d.WindowHeight, minWindowHeight)
	return data
}

// SaveSettings saves only the values that differ from defaults into YAML.
// Hidden fields (instance id, window size) left empty in the input keep their
// stored values.
func (s *SettingsService) SaveSettings(in Settings) error {
	if s.pathErr != nil {
		return s.pathErr
	}
	// Get current settings to detect changes
	old, err := s.GetSettings()
	if err != nil {
		old = defaultSettings
	}

	if strings.TrimSpace(in.InstanceID) == "" {
		in.InstanceID = old.InstanceID
	}
	if in.WindowWidth == 0 {
		in.WindowWidth = old.WindowWidth
	}
	if in.WindowHeight == 0 {
		in.WindowHeight = old.WindowHeight
	}

	if err := s.write(nonDefault(in)); err != nil {
		return err
	}

	if s.handler != nil {
		updated, err := s.GetSettings()
		if err != nil {
			return err
		}
		s.handler.SettingsChanged(old, updated)
	}
	return nil
}

func (s *SettingsService) write(data map[string]any) error {
	if len(data) == 0 {
		// If there is an existing file, remove it to reflect defaults-only state
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

// ResetSettings restores the defaults, keeping the instance ID
func (s *SettingsService) ResetSettings() error {
	current, err := s.GetSettings()
	if err != nil {
		return err
	}
	reset := defaultSettings
	reset.InstanceID = current.InstanceID
	return s.SaveSettings(reset)
}

// SaveWindowSize persists the window size without touching other settings
func (s *SettingsService) SaveWindowSize(width, height int) error {
	current, err := s.GetSettings()
	if err != nil {
		return err
	}
	current.WindowWidth = width
	current.WindowHeight = height
	return s.SaveSettings(current)
}

// EnsureInstanceID generates and saves a unique instance ID if one doesn't exist
func (s *SettingsService) EnsureInstanceID() (string, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return "", err
	}

	// If instance ID already exists, nothing to do
	if id := strings.TrimSpace(settings.InstanceID); id != "" {
		return id, nil
	}

	// Generate new UUID for this instance
	settings.InstanceID = uuid.New().String()
	return settings.InstanceID, s.SaveSettings(settings)
}

package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file created next to the executable
const FileName = "observatory.yml"

// GetEffectiveSettings returns the effective settings (defaults overlaid with file overrides if any).
// If anything goes wrong, it returns defaults.
func GetEffectiveSettings() Settings {
	path, err := settingsFilePath()
	if err != nil {
		return defaultSettings
	}
	settings, err := readSettings(path)
	if err != nil {
		return defaultSettings
	}
	return settings
}

func settingsFilePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(exe)
	return filepath.Join(dir, FileName), nil
}

// readSettings overlays the keys present in the file at path onto the
// defaults. A missing file yields the defaults.
func readSettings(path string) (Settings, error) {
	settings := defaultSettings
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, err
	}
	// Unmarshal into a generic map to detect key presence
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return settings, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	overlay(&settings, m)
	return settings, nil
}

func overlay(settings *Settings, m map[string]any) {
	setString(m, "backend_url", &settings.BackendURL)
	setString(m, "backend_token", &settings.BackendToken)
	setInt(m, "request_timeout_seconds", minRequestTimeoutSeconds, &settings.RequestTimeoutSeconds)
	setInt(m, "default_page_size", 1, &settings.DefaultPageSize)
	setString(m, "default_story", &settings.DefaultStory)
	setBool(m, "enable_query_cache", &settings.EnableQueryCache)
	setInt(m, "cache_size_limit_mb", minCacheSizeMB, &settings.CacheSizeLimitMB)
	setString(m, "default_ingest_timezone", &settings.DefaultIngestTimezone)
	setString(m, "display_timezone", &settings.DisplayTimezone)
	setString(m, "timestamp_display_format", &settings.TimestampDisplayFormat)
	setString(m, "log_level", &settings.LogLevel)
	setInt(m, "max_directory_files", minDirectoryFiles, &settings.MaxDirectoryFiles)
	setString(m, "instance_id", &settings.InstanceID)
	setInt(m, "window_width", minWindowWidth, &settings.WindowWidth)
	setInt(m, "window_height", minWindowHeight, &settings.WindowHeight)
}

func setString(m map[string]any, key string, dst *string) {
	if v, ok := m[key]; ok {
		if vs, oks := v.(string); oks {
			*dst = vs
		}
	}
}

func setBool(m map[string]any, key string, dst *bool) {
	if v, ok := m[key]; ok {
		if vb, okb := v.(bool); okb {
			*dst = vb
		}
	}
}

func setInt(m map[string]any, key string, minimum int, dst *int) {
	if v, ok := m[key]; ok {
		if vi, oki := v.(int); oki && vi >= minimum {
			*dst = vi
		}
	}
}

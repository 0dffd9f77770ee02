package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type recordingHandler struct {
	calls [][2]Settings
}

func (h *recordingHandler) SettingsChanged(old, updated Settings) {
	h.calls = append(h.calls, [2]Settings{old, updated})
}

func newTestService(t *testing.T) *SettingsService {
	t.Helper()
	return NewSettingsServiceAt(filepath.Join(t.TempDir(), FileName))
}

func readFile(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, yaml.Unmarshal(b, &m))
	return m
}

func TestGetSettings_MissingFileReturnsDefaults(t *testing.T) {
	got, err := newTestService(t).GetSettings()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestGetSettings_OverlaysPresentKeys(t *testing.T) {
	s := newTestService(t)
	body := "backend_url: https://observatory.internal\n" +
		"enable_query_cache: false\n" +
		"default_page_size: 50\n" +
		"window_width: 100\n" +
		"log_level: debug\n" +
		"unknown_key: 1\n"
	require.NoError(t, os.WriteFile(s.Path(), []byte(body), 0o644))

	got, err := s.GetSettings()
	require.NoError(t, err)

	assert.Equal(t, "https://observatory.internal", got.BackendURL)
	assert.False(t, got.EnableQueryCache)
	assert.Equal(t, 50, got.DefaultPageSize)
	assert.Equal(t, "debug", got.LogLevel)
	// Below the minimum, so the default stays
	assert.Equal(t, Defaults().WindowWidth, got.WindowWidth)
	assert.Equal(t, Defaults().CacheSizeLimitMB, got.CacheSizeLimitMB)
}

func TestGetSettings_InvalidYAML(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("backend_url: [unclosed"), 0o644))

	got, err := s.GetSettings()
	assert.Error(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestSaveSettings_PersistsOnlyNonDefaults(t *testing.T) {
	s := newTestService(t)
	in := Defaults()
	in.BackendURL = "https://observatory.internal/"
	in.CacheSizeLimitMB = 250

	require.NoError(t, s.SaveSettings(in))

	m := readFile(t, s.Path())
	assert.Equal(t, map[string]any{
		"backend_url":         "https://observatory.internal",
		"cache_size_limit_mb": 250,
	}, m)

	got, err := s.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, 250, got.CacheSizeLimitMB)
}

func TestSaveSettings_DefaultsRemoveFile(t *testing.T) {
	s := newTestService(t)
	in := Defaults()
	in.LogLevel = "warn"
	require.NoError(t, s.SaveSettings(in))
	require.FileExists(t, s.Path())

	require.NoError(t, s.SaveSettings(Defaults()))
	assert.NoFileExists(t, s.Path())
}

func TestSaveSettings_KeepsHiddenFields(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.SaveWindowSize(1600, 900))

	in := Defaults()
	in.WindowWidth = 0
	in.WindowHeight = 0
	in.DisplayTimezone = "UTC"
	require.NoError(t, s.SaveSettings(in))

	got, err := s.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, 1600, got.WindowWidth)
	assert.Equal(t, 900, got.WindowHeight)
	assert.Equal(t, "UTC", got.DisplayTimezone)
}

func TestSaveSettings_NotifiesHandler(t *testing.T) {
	s := newTestService(t)
	h := &recordingHandler{}
	s.SetChangeHandler(h)

	in := Defaults()
	in.LogLevel = "DEBUG"
	require.NoError(t, s.SaveSettings(in))

	require.Len(t, h.calls, 1)
	assert.Equal(t, "info", h.calls[0][0].LogLevel)
	assert.Equal(t, "debug", h.calls[0][1].LogLevel)
}

func TestEnsureInstanceID(t *testing.T) {
	s := newTestService(t)

	id, err := s.EnsureInstanceID()
	require.NoError(t, err)
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr)

	again, err := s.EnsureInstanceID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestResetSettings_KeepsInstanceID(t *testing.T) {
	s := newTestService(t)
	id, err := s.EnsureInstanceID()
	require.NoError(t, err)

	in := Defaults()
	in.InstanceID = id
	in.DefaultStory = "cost"
	require.NoError(t, s.SaveSettings(in))

	require.NoError(t, s.ResetSettings())
	got, err := s.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, "latency", got.DefaultStory)
	assert.Equal(t, id, got.InstanceID)
}

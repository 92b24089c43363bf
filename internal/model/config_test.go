package model

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout())
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce())
	assert.Equal(t, 60, cfg.Notifications.PollIntervalSec)
	assert.Equal(t, ThemeDark, cfg.Display.Theme)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.API.BaseURL = "https://matchbox.example.com/api"
	cfg.Display.Theme = ThemeLight
	cfg.Search.DebounceMs = 250

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://matchbox.example.com/api", loaded.API.BaseURL)
	assert.Equal(t, ThemeLight, loaded.Display.Theme)
	assert.Equal(t, 250, loaded.Search.DebounceMs)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MATCHBOX_API_URL", "http://env.example.com")
	t.Setenv("MATCHBOX_LOG_LEVEL", "debug")
	t.Setenv("MATCHBOX_TOKEN", "env-token")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://env.example.com", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "env-token", cfg.Token)
}

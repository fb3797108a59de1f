package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"NOTEBOOK_API_URL", "NOTEBOOK_REQUEST_TIMEOUT", "NOTEBOOK_SOUND",
		"NOTEBOOK_THEME", "NOTEBOOK_DEBUG",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 120*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, SoundOff, cfg.Sound.Mode)
	assert.Equal(t, "auto", cfg.UI.Theme)
	assert.False(t, cfg.UI.Markdown)
	assert.False(t, cfg.Logging.DebugMode)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://notebook.example.com"
	cfg.Sound.Mode = SoundBell
	cfg.UI.Markdown = true

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://notebook.example.com", loaded.API.BaseURL)
	assert.Equal(t, SoundBell, loaded.Sound.Mode)
	assert.True(t, loaded.UI.Markdown)
}

func TestConfig_SavedFileHasNoCredential(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "api_key")
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://10.0.0.5:9000\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.API.BaseURL)
	assert.Equal(t, "120s", cfg.API.RequestTimeout)
	assert.Equal(t, "auto", cfg.UI.Theme)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestGetRequestTimeout(t *testing.T) {
	tests := map[string]time.Duration{
		"30s":   30 * time.Second,
		"2m":    2 * time.Minute,
		"0":     0,
		"0s":    0,
		"bogus": 120 * time.Second,
		"-5s":   120 * time.Second,
		"":      120 * time.Second,
	}
	for in, want := range tests {
		cfg := &Config{API: APIConfig{RequestTimeout: in}}
		assert.Equal(t, want, cfg.GetRequestTimeout(), in)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("bad url", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.API.BaseURL = "localhost"
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad scheme", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.API.BaseURL = "ftp://host"
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad sound mode", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Sound.Mode = "loud"
		assert.Error(t, cfg.Validate())
	})

	t.Run("command mode needs command", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Sound.Mode = SoundCommand
		cfg.Sound.Command = " "
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad theme", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.UI.Theme = "solarized"
		assert.Error(t, cfg.Validate())
	})
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	c := LoggingConfig{}
	assert.False(t, c.IsCategoryEnabled("api"))

	c.DebugMode = true
	assert.True(t, c.IsCategoryEnabled("api"))

	c.Categories = map[string]bool{"api": false}
	assert.False(t, c.IsCategoryEnabled("api"))
	assert.True(t, c.IsCategoryEnabled("ui"))
}

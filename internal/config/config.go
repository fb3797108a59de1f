package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all notebook configuration.
// The API credential is deliberately absent: it is entered per process and
// never written to disk.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Sound   SoundConfig   `yaml:"sound"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the backend the client talks to.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// RequestTimeout bounds each upload/chat call; "0" disables the bound.
	RequestTimeout string `yaml:"request_timeout"`
}

// DefaultConfigDir is the per-workspace directory holding config and logs.
const DefaultConfigDir = ".notebook"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			RequestTimeout: "120s",
		},
		Sound: SoundConfig{
			Mode:    SoundOff,
			Dir:     filepath.Join(DefaultConfigDir, "sounds"),
			Command: "aplay -q",
		},
		UI: UIConfig{
			Theme:    "auto",
			Markdown: false,
		},
		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
			Dir:       filepath.Join(DefaultConfigDir, "logs"),
		},
	}
}

// DefaultConfigPath returns the default path to .notebook/config.yaml.
func DefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(DefaultConfigDir, "config.yaml")
	}
	return filepath.Join(cwd, DefaultConfigDir, "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Return defaults if config file doesn't exist
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NOTEBOOK_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("NOTEBOOK_REQUEST_TIMEOUT"); v != "" {
		c.API.RequestTimeout = v
	}
	if v := os.Getenv("NOTEBOOK_SOUND"); v != "" {
		c.Sound.Mode = SoundMode(strings.ToLower(v))
	}
	if v := os.Getenv("NOTEBOOK_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
	if v := os.Getenv("NOTEBOOK_DEBUG"); v != "" {
		c.Logging.DebugMode = v == "1" || strings.EqualFold(v, "true")
	}
}

// GetRequestTimeout returns the request timeout as a duration.
// Zero means no timeout.
func (c *Config) GetRequestTimeout() time.Duration {
	if strings.TrimSpace(c.API.RequestTimeout) == "0" {
		return 0
	}
	d, err := time.ParseDuration(c.API.RequestTimeout)
	if err != nil || d < 0 {
		return 120 * time.Second
	}
	return d
}

// ValidThemes lists accepted ui.theme values.
var ValidThemes = []string{"auto", "light", "dark"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api.base_url scheme: %s", u.Scheme)
	}

	if !c.Sound.Mode.Valid() {
		return fmt.Errorf("invalid sound.mode: %s (valid: %v)", c.Sound.Mode, ValidSoundModes)
	}
	if c.Sound.Mode == SoundCommand && strings.TrimSpace(c.Sound.Command) == "" {
		return fmt.Errorf("sound.command required when sound.mode is %q", SoundCommand)
	}

	validTheme := false
	for _, t := range ValidThemes {
		if c.UI.Theme == t {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid ui.theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	return nil
}

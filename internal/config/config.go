// Package config loads the notehub YAML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "NOTEHUB_CONFIG"

// Themes lists the accepted ui.theme values.
var Themes = []any{"classic", "neon", "mono"}

// Config is the whole configuration file.
type Config struct {
	LogLevel slog.Level `yaml:"log_level"`
	API      APIConfig  `yaml:"api"`
	UI       UIConfig   `yaml:"ui"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

// APIConfig describes the remote NoteHub service.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the API configuration.
func (c *APIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// UIConfig holds presentation settings.
type UIConfig struct {
	PageSize       int           `yaml:"page_size"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
	ToastDuration  time.Duration `yaml:"toast_duration"`
	Theme          string        `yaml:"theme"`
	MarkdownStyle  string        `yaml:"markdown_style"`
}

// Validate validates the UI configuration.
func (c *UIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PageSize, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.SearchDebounce, validation.Min(time.Duration(0))),
		validation.Field(&c.ToastDuration, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Theme, validation.Required, validation.In(Themes...)),
		validation.Field(&c.MarkdownStyle, validation.Required, validation.In("dark", "light", "notty", "ascii", "dracula", "tokyo-night", "pink", "auto")),
	)
}

func absoluteURL(v any) error {
	s, _ := v.(string)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

// NewDefaultConfig returns the configuration used when no file exists.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: slog.LevelInfo,
		API: APIConfig{
			BaseURL: "https://notehub-public.goit.study/api",
			Timeout: 15 * time.Second,
		},
		UI: UIConfig{
			PageSize:       12,
			SearchDebounce: 500 * time.Millisecond,
			ToastDuration:  3 * time.Second,
			Theme:          "classic",
			MarkdownStyle:  "dark",
		},
	}
}

// DefaultPath returns $NOTEHUB_CONFIG, or ~/.config/notehub/config.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "notehub", "config.yaml")
}

// Load reads filename over the defaults, expanding ${VARS} first. A missing
// file yields the defaults.
func Load(filename string) (*Config, error) {
	cfg := NewDefaultConfig()
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

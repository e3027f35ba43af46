// Package config holds the persistent application configuration: the
// source directory and UI settings.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/odelheim/lineup/internal/catalog"
)

// SourceConfig describes one configured content origin.
type SourceConfig struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"` // "aggregator" or "manifest"
	URL      string `json:"url"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Enabled  bool   `json:"enabled"`
}

// UIConfig holds UI preferences.
type UIConfig struct {
	BatchSize  int    `json:"batch_size"` // groups per render increment
	ShowHidden bool   `json:"show_hidden"`
	Player     string `json:"player"` // playback command, default mpv
}

// Config is the persistent application configuration.
type Config struct {
	Sources []SourceConfig `json:"sources"`
	UI      UIConfig       `json:"ui"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Sources: []SourceConfig{},
		UI: UIConfig{
			BatchSize: 50,
			Player:    "mpv",
		},
	}
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lineup", "config.json")
}

// Load reads config from disk, or returns defaults.
func Load() (*Config, error) {
	path := ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), nil
	}
	if cfg.UI.BatchSize <= 0 {
		cfg.UI.BatchSize = 50
	}
	if cfg.UI.Player == "" {
		cfg.UI.Player = "mpv"
	}

	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // restrictive permissions for credentials
}

// EnabledSources returns the enabled sources as catalog sources, in config
// order. Merge order follows this order.
func (c *Config) EnabledSources() []catalog.Source {
	var out []catalog.Source
	for _, s := range c.Sources {
		if !s.Enabled {
			continue
		}
		out = append(out, catalog.Source{
			ID:       s.ID,
			Name:     s.Name,
			Type:     catalog.SourceType(s.Type),
			URL:      s.URL,
			Username: s.Username,
			Password: s.Password,
			Enabled:  true,
		})
	}
	return out
}

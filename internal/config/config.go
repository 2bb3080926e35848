// Package config provides configuration loading and structs for the Sakuin server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Index   IndexConfig   `yaml:"index"`
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// IndexConfig describes what gets indexed and how.
type IndexConfig struct {
	// Directories are the corpus roots, scanned recursively. At least one
	// is required.
	Directories []string `yaml:"directories"`
	// Extensions filter which files are considered documents. Empty means
	// the built-in default set, not "everything".
	Extensions []string `yaml:"extensions"`
	// ExtractWorkers bounds concurrent text extraction during a refresh.
	ExtractWorkers int `yaml:"extract_workers"`
}

// StorageConfig holds on-disk paths.
type StorageConfig struct {
	SnapshotPath string `yaml:"snapshot_path"`
	// HistoryPath is the SQLite activity log.
	HistoryPath string `yaml:"history_path"`
	// HistoryEnabled turns the activity log off when set to false. Defaults
	// to true when unset.
	HistoryEnabled *bool `yaml:"history_enabled"`
}

// HistoryEnabledOrDefault returns whether the activity log is on; defaults to true when unset.
func (s *StorageConfig) HistoryEnabledOrDefault() bool {
	if s.HistoryEnabled != nil {
		return *s.HistoryEnabled
	}
	return true
}

// SearchConfig holds result limit settings.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// WatchConfig holds filesystem watch settings.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, applies defaults, expands
// paths, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.SnapshotPath = expandPath(cfg.Storage.SnapshotPath, configDir)
	cfg.Storage.HistoryPath = expandPath(cfg.Storage.HistoryPath, configDir)
	for i := range cfg.Index.Directories {
		cfg.Index.Directories[i] = expandPath(cfg.Index.Directories[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if len(c.Index.Directories) == 0 {
		return fmt.Errorf("config: index.directories must list at least one directory")
	}
	for _, dir := range c.Index.Directories {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("config: index.directories contains an empty entry")
		}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Search.DefaultLimit < 1 || c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("config: search limits invalid (default %d, max %d)",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Flag store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// PackConfig points at the index file of one read-only pack.
type PackConfig struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// Config holds application configuration.
type Config struct {
	WorldPath   string       `json:"worldPath"`
	FlagBackend string       `json:"flagBackend"`
	FlagsPath   string       `json:"flagsPath"`
	PageSize    int          `json:"pageSize"`
	LogLevel    string       `json:"logLevel"`
	MetricsPath string       `json:"metricsPath,omitempty"`
	Packs       []PackConfig `json:"packs"`
}

// DefaultConfig returns the default configuration rooted at dir.
func DefaultConfig(dir string) Config {
	return Config{
		WorldPath:   filepath.Join(dir, "world.json"),
		FlagBackend: BackendSQLite,
		FlagsPath:   filepath.Join(dir, "flags.db"),
		PageSize:    24,
		LogLevel:    "warn",
		Packs:       []PackConfig{},
	}
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	defaults := DefaultConfig(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := defaults
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	if config.WorldPath == "" {
		config.WorldPath = defaults.WorldPath
	}
	if config.FlagBackend == "" {
		config.FlagBackend = defaults.FlagBackend
	}
	if config.FlagsPath == "" {
		if config.FlagBackend == BackendJSON {
			config.FlagsPath = filepath.Join(filepath.Dir(path), "flags.json")
		} else {
			config.FlagsPath = defaults.FlagsPath
		}
	}
	if config.PageSize <= 0 {
		config.PageSize = defaults.PageSize
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.Packs == nil {
		config.Packs = defaults.Packs
	}
	for _, p := range config.Packs {
		if p.ID == "" || strings.Contains(p.ID, "/") {
			return nil, fmt.Errorf("config %s: invalid pack id %q", path, p.ID)
		}
	}

	return &config, nil
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	return writeJSON(path, config)
}

// DefaultConfigFilePath returns the default config path: ~/.config/scenelib/config.json
func DefaultConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "scenelib", "config.json"), nil
}

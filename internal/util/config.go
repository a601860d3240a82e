// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds jsrun configuration settings
type Config struct {
	TimeoutMs    int    `yaml:"timeout_ms" description:"Interrupt a script after this many milliseconds (0 = no limit)" default:"0"`
	HistoryFile  string `yaml:"history_file" description:"REPL history file (relative to data dir)" default:".jsrun_history"`
	HistoryLimit int    `yaml:"history_limit" description:"Maximum REPL history entries" default:"1000"`
	FieldNames   string `yaml:"field_names" description:"Struct tag used to name Go fields in scripts (empty = lowercase Go names)" default:"json"`
	AllowFS      bool   `yaml:"allow_fs" description:"Expose the fs object to scripts" default:"true"`
	Parallel     int    `yaml:"parallel" description:"Maximum number of script files run concurrently" default:"4"`
	Verbose      bool   `yaml:"verbose" description:"Enable log() output from scripts" default:"false"`
}

// DefaultConfig returns the default configuration for runtime use.
func DefaultConfig() Config {
	return Config{
		TimeoutMs:    0,
		HistoryFile:  ".jsrun_history",
		HistoryLimit: 1000,
		FieldNames:   "json",
		AllowFS:      true,
		Parallel:     4,
	}
}

// DataDirEnvVar overrides the default data directory.
const DataDirEnvVar = "JSRUN_DATA"

// GetDataDir returns the jsrun data directory.
// Resolution order: -d flag > JSRUN_DATA env var > ~/.jsrun
func GetDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envDir := os.Getenv(DataDirEnvVar); envDir != "" {
		return envDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "" // Can't determine default
	}
	return filepath.Join(home, ".jsrun")
}

// GetConfigPath returns the path to the config file in the data directory.
// Returns empty string if dataDir is empty.
func GetConfigPath(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "config.yaml")
}

// ResolvePath resolves a path relative to baseDir.
// Absolute paths and empty inputs are returned unchanged.
func ResolvePath(path, baseDir string) string {
	if path == "" || baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// LoadConfig loads configuration from config.yaml in the data directory.
// If dataDir is empty or the file doesn't exist, returns default config.
// The history file is resolved relative to the data directory.
func LoadConfig(dataDir string) (Config, error) {
	config, err := LoadConfigFromPath(GetConfigPath(dataDir))
	if err != nil {
		return config, err
	}
	config.HistoryFile = ResolvePath(config.HistoryFile, dataDir)
	return config, nil
}

// LoadConfigFromPath loads configuration from the specified path.
// If path is empty or the file doesn't exist, returns default config.
func LoadConfigFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay config file values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	// Fill in defaults for missing values
	defaults := DefaultConfig()
	if config.Parallel == 0 {
		config.Parallel = defaults.Parallel
	}
	if config.HistoryLimit == 0 {
		config.HistoryLimit = defaults.HistoryLimit
	}

	return config, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms cannot be negative (got %d)", c.TimeoutMs)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit cannot be negative (got %d)", c.HistoryLimit)
	}
	if c.Parallel < 0 {
		return fmt.Errorf("parallel cannot be negative (got %d)", c.Parallel)
	}
	return nil
}

// Package config provides configuration loading and structs for the Sukima server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Download DownloadConfig `yaml:"download"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the session store backend.
type StorageConfig struct {
	Backend      string `yaml:"backend"`
	DatabasePath string `yaml:"database_path"`
}

// AnalysisConfig holds the hosted analysis endpoint settings. The API key is
// never read from the file; it comes from the SUKIMA_ANALYSIS_KEY environment
// variable.
type AnalysisConfig struct {
	Endpoint         string `yaml:"endpoint"`
	Deployment       string `yaml:"deployment"`
	APIVersion       string `yaml:"api_version"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	MaxDocumentChars int    `yaml:"max_document_chars"`
	DefaultObjective string `yaml:"default_objective"`
}

// Timeout returns the analysis timeout as a duration.
func (a *AnalysisConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// DownloadConfig bounds attachment downloads.
type DownloadConfig struct {
	MaxBytes       int64 `yaml:"max_bytes"`
	TimeoutSeconds int   `yaml:"timeout_seconds"`
}

// Timeout returns the download timeout as a duration.
func (d *DownloadConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
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
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)

	return &cfg, nil
}

// Validate checks settings that have no sensible default. Called once at
// startup; a reload that fails validation keeps the previous config.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Analysis.Endpoint == "" {
		return fmt.Errorf("analysis.endpoint is required")
	}
	if c.Analysis.Deployment == "" {
		return fmt.Errorf("analysis.deployment is required")
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

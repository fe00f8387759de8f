// Package config provides layered configuration loading for the todo binary.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageLocal  = "local"
)

// Config is the complete runtime configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`
	// Storage selects the backend: "sqlite" or "local".
	Storage string `yaml:"storage"`
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`
	// LocalPath is the JSON snapshot of the local backend. Empty keeps the
	// state in memory only.
	LocalPath string `yaml:"local_path"`
	// StaticDir holds the built frontend; empty serves the API only.
	StaticDir string `yaml:"static_dir"`
	// TranslationDir optionally overrides the bundled message catalogs.
	TranslationDir string `yaml:"translation_dir"`
	LogLevel       string `yaml:"log_level"`
	// Watch reloads the local snapshot when another process rewrites it.
	Watch bool `yaml:"watch"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Addr:      ":8080",
		Storage:   StorageSQLite,
		DBPath:    "data/todo.db",
		LocalPath: "data/todo.json",
		StaticDir: "web/dist",
		LogLevel:  "info",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr is required")
	}
	switch c.Storage {
	case StorageSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("db_path is required for sqlite storage")
		}
	case StorageLocal:
	default:
		return fmt.Errorf("storage must be %q or %q, got %q", StorageSQLite, StorageLocal, c.Storage)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level must be debug, info, warn or error: %w", err)
	}
	return level, nil
}

// LoadFile reads a YAML file over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the text logger used across the binary.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

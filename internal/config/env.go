package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvAddr           = "TODO_ADDR"
	EnvStorage        = "TODO_STORAGE"
	EnvDBPath         = "TODO_DB_PATH"
	EnvLocalPath      = "TODO_LOCAL_PATH"
	EnvStaticDir      = "TODO_STATIC_DIR"
	EnvTranslationDir = "TODO_TRANSLATION_DIR"
	EnvLogLevel       = "TODO_LOG_LEVEL"
	EnvWatch          = "TODO_WATCH"
)

// EnvOrDefault returns the environment variable value or fallback when it is empty.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// LoadDotEnv exports the variables of a .env file without overriding ones
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from TODO_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Addr = EnvOrDefault(EnvAddr, c.Addr)
	c.Storage = EnvOrDefault(EnvStorage, c.Storage)
	c.DBPath = EnvOrDefault(EnvDBPath, c.DBPath)
	c.LocalPath = EnvOrDefault(EnvLocalPath, c.LocalPath)
	c.StaticDir = EnvOrDefault(EnvStaticDir, c.StaticDir)
	c.TranslationDir = EnvOrDefault(EnvTranslationDir, c.TranslationDir)
	c.LogLevel = EnvOrDefault(EnvLogLevel, c.LogLevel)

	if raw := os.Getenv(EnvWatch); raw != "" {
		watch, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWatch, err)
		}
		c.Watch = watch
	}
	return nil
}

// Load builds the configuration from defaults, the optional YAML file at
// path, the .env file and the environment, in increasing precedence.
func Load(path, dotenv string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if dotenv != "" {
		if err := LoadDotEnv(dotenv); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

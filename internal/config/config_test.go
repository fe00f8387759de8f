package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "data/todo.db", cfg.DBPath)
	assert.Equal(t, "web/dist", cfg.StaticDir)
	assert.False(t, cfg.Watch)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "local storage without path", modify: func(c *Config) { c.Storage = StorageLocal; c.LocalPath = "" }},
		{name: "missing addr", modify: func(c *Config) { c.Addr = " " }, wantErr: true},
		{name: "unknown storage", modify: func(c *Config) { c.Storage = "postgres" }, wantErr: true},
		{name: "sqlite without path", modify: func(c *Config) { c.DBPath = "" }, wantErr: true},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	cfg.LogLevel = "WARN"
	level, err = cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9090\"\nstorage: local\nwatch: true\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, StorageLocal, cfg.Storage)
	assert.True(t, cfg.Watch)
	assert.Equal(t, "data/todo.db", cfg.DBPath, "unset keys keep defaults")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("addr: [unterminated"), 0o644))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "todo.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("addr: \":9090\"\nlog_level: warn\ndb_path: from-yaml.db\n"), 0o644))
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("TODO_LOG_LEVEL=debug\nTODO_STATIC_DIR=from-dotenv\n"), 0o644))

	t.Setenv(EnvAddr, ":7070")
	t.Setenv(EnvWatch, "true")
	// godotenv does not override variables that are already set.
	t.Setenv(EnvStaticDir, "from-env")
	// Unset so the .env value applies; t.Setenv restores it afterwards.
	t.Setenv(EnvLogLevel, "")
	require.NoError(t, os.Unsetenv(EnvLogLevel))

	cfg, err := Load(yamlPath, envPath)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from-env", cfg.StaticDir)
	assert.Equal(t, "from-yaml.db", cfg.DBPath)
	assert.True(t, cfg.Watch)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestApplyEnv_BadWatch(t *testing.T) {
	t.Setenv(EnvWatch, "sometimes")
	assert.Error(t, Default().ApplyEnv())
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("TODO_TEST_VALUE", "")
	assert.Equal(t, "fallback", EnvOrDefault("TODO_TEST_VALUE", "fallback"))
	t.Setenv("TODO_TEST_VALUE", "set")
	assert.Equal(t, "set", EnvOrDefault("TODO_TEST_VALUE", "fallback"))
}

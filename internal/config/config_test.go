package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mission-control/buyer-sources.yaml", cfg.Sources.BuyersPath)
	assert.Equal(t, "mission-control/fallback-sources.json", cfg.Sources.FallbacksPath)
	assert.Equal(t, "mission-control/extraction-rules.json", cfg.Sources.RulesPath)
	assert.Equal(t, "fs", cfg.Store.Driver)
	assert.Equal(t, "out", cfg.Store.OutDir)
	assert.Equal(t, "https://api.search.brave.com/res/v1", cfg.Brave.BaseURL)
	assert.Equal(t, 20, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 4, cfg.Pipeline.MaxConcurrentBuyers)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `store:
  driver: sqlite
  database_url: signals.db
pipeline:
  max_concurrent_buyers: 8
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(dir+"/config.yaml", []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "signals.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 8, cfg.Pipeline.MaxConcurrentBuyers)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep defaults.
	assert.Equal(t, "out", cfg.Store.OutDir)
}

func TestLoad_BraveKeyFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BRAVE_API_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Brave.Key)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "chatty", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, 20*time.Second, cfg.GenAI.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadFrom_FileAndEnvironmentOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", `
app:
  environment: staging
server:
  port: "9000"
genai:
  model: llama3.2:latest
  timeout: 5s
logging:
  level: debug
`)
	writeConfig(t, dir, "config.staging.yaml", `
logging:
  format: json
`)
	t.Setenv("GENAI_API_KEY", "from-env")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "llama3.2:latest", cfg.GenAI.Model)
	assert.Equal(t, 5*time.Second, cfg.GenAI.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "from-env", cfg.GenAI.APIKey)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.URL)
}

func TestLoadFrom_LegacyPortVariable(t *testing.T) {
	t.Setenv("PORT", "7070")
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestLoadFrom_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "logging:\n  level: loud\n")

	_, err := LoadFrom(dir)
	assert.ErrorContains(t, err, "logging.level")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "OPENAI_KEY", "API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoadAPIKeyFallbackChain(t *testing.T) {
	clearKeys(t)
	t.Setenv("API_KEY", "third")
	t.Setenv("OPENAI_KEY", "second")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "second", cfg.OpenAI.APIKey)

	t.Setenv("OPENAI_API_KEY", "first")
	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.OpenAI.APIKey)
}

func TestLoadFailsWithoutAPIKey(t *testing.T) {
	clearKeys(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoadYAMLAndDefaults(t *testing.T) {
	clearKeys(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: 8080
database:
  driver: postgres
  host: db
  port: 5432
  user: med
  password: pw
  name: medinsight
openai:
  apiKey: from-yaml
usage:
  anonymousQuota: 3
timeouts:
  vision: 15s
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "from-yaml", cfg.OpenAI.APIKey)
	assert.Equal(t, 3, cfg.Usage.AnonymousQuota)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Vision)
	assert.Equal(t, 60*time.Second, cfg.Timeouts.Generation)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	require.NotNil(t, cfg.OpenAI.Temperature)
	assert.Equal(t, float32(0.3), *cfg.OpenAI.Temperature)
	assert.False(t, cfg.Production())
	assert.Equal(t, "host=db port=5432 user=med password=pw dbname=medinsight sslmode=disable", cfg.PostgresDSN())
}

func TestLoadKeepsZeroTemperature(t *testing.T) {
	clearKeys(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  environment: prod
openai:
  apiKey: k
  temperature: 0
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.OpenAI.Temperature)
	assert.Zero(t, *cfg.OpenAI.Temperature)
	assert.True(t, cfg.Production())
}

func TestProductionMatchesLoggerModes(t *testing.T) {
	for env, want := range map[string]bool{
		"prod": true, "production": true, "Production": true,
		"": false, "dev": false, "staging": false,
	} {
		var c Config
		c.Server.Environment = env
		assert.Equal(t, want, c.Production(), env)
	}
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/tally-connector/internal/config"
)

func load(t *testing.T, file string) *config.Config {
	t.Helper()
	v, err := config.New(file)
	require.NoError(t, err)
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := load(t, "")
	assert.Equal(t, config.DefaultBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, config.DefaultVisionModel, cfg.LLM.VisionModel)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, int64(config.DefaultMaxTokens), cfg.LLM.MaxTokens)
	assert.Equal(t, config.DefaultOutputDir, cfg.Output.Dir)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Convert.Workers)
	assert.False(t, cfg.LLM.Enabled())
}

func TestLoad_PrefixedEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TALLY_LLM_API_KEY", "secret")
	t.Setenv("TALLY_OUTPUT_DIR", "/tmp/out")
	t.Setenv("TALLY_CONVERT_WORKERS", "16")

	cfg := load(t, "")
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.True(t, cfg.LLM.Enabled())
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, 16, cfg.Convert.Workers)
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_API_KEY", "legacy-key")
	t.Setenv("LLM_BASE_URL", "https://example.test/v1/")
	t.Setenv("LLM_VISION_MODEL", "vision-x")

	cfg := load(t, "")
	assert.Equal(t, "legacy-key", cfg.LLM.APIKey)
	assert.Equal(t, "https://example.test/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "vision-x", cfg.LLM.VisionModel)
}

func TestLoad_PrefixedBeatsLegacy(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_API_KEY", "legacy-key")
	t.Setenv("TALLY_LLM_API_KEY", "new-key")

	cfg := load(t, "")
	assert.Equal(t, "new-key", cfg.LLM.APIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tally.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  vision_model: file-model
  timeout: 30s
output:
  dir: from-file
server:
  address: ":9090"
  debug: true
`), 0o644))

	cfg := load(t, path)
	assert.Equal(t, "file-model", cfg.LLM.VisionModel)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "from-file", cfg.Output.Dir)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.True(t, cfg.Server.Debug)
}

func TestNew_MissingExplicitFile(t *testing.T) {
	_, err := config.New(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TALLY_CONVERT_WORKERS", "0")

	v, err := config.New("")
	require.NoError(t, err)
	_, err = config.Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "convert.workers")
}

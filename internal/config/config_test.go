package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TRACKER_CONFIG_PATH", "TRACKER_SERVER_HOST", "TRACKER_SERVER_PORT", "TRACKER_SERVER_TOKEN",
	"TRACKER_DB_PATH", "TRACKER_EXTENSION_DIR", "TRACKER_SYNC_ADDR", "TRACKER_LLM_BASE_URL",
	"TRACKER_LLM_API_KEY", "OPENROUTER_API_KEY", "TRACKER_LLM_MODEL", "OPENROUTER_MODEL",
	"TRACKER_LLM_ENDPOINT", "TRACKER_LOG_LEVEL", "TRACKER_TRANSPORT",
	"TRACKER_SERVER_URL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, "x-ai/grok-4.1-fast:free", cfg.LLM.Model)
	require.Equal(t, 100*time.Millisecond, cfg.Extension.Debounce())
	require.Equal(t, time.Minute, cfg.LLM.Timeout())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "tracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
  token: file-token
llm:
  model: file-model
transport:
  mode: stdio
`), 0o644))

	t.Setenv("TRACKER_CONFIG_PATH", path)
	t.Setenv("OPENROUTER_API_KEY", "router-key")
	t.Setenv("TRACKER_LLM_MODEL", "env-model")
	t.Setenv("OPENROUTER_MODEL", "ignored-model")
	t.Setenv("TRACKER_SERVER_URL", "http://127.0.0.1:3000")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "file-token", cfg.Server.Token)
	require.Equal(t, "router-key", cfg.LLM.APIKey)
	require.Equal(t, "env-model", cfg.LLM.Model)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, "http://127.0.0.1:3000", cfg.Server.URL)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRACKER_SERVER_PORT", "abc")
	_, err := Load()
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("TRACKER_TRANSPORT", "carrier-pigeon")
	_, err = Load()
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("TRACKER_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	require.Error(t, err)
}

func TestLLMClientConfig(t *testing.T) {
	llm := Default().LLM
	llm.APIKey = "sk-test"

	cc := llm.ClientConfig()
	require.Equal(t, "https://openrouter.ai/api/v1", cc.BaseURL)
	require.Equal(t, "sk-test", cc.APIKey)
	require.Equal(t, llm.Model, cc.Model)
	require.Equal(t, time.Minute, cc.Timeout)
}

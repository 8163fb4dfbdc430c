package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Address)
	require.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	require.Equal(t, float32(0.3), cfg.AI.Temperature)
	require.Equal(t, 60*time.Second, cfg.AI.Timeout)
	require.Equal(t, 8, cfg.Dispatch.Concurrency)
	require.Equal(t, 587, cfg.SMTP.Port)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(env(map[string]string{
		"POSTGRES_CONN":        "postgres://localhost/procurement",
		"SERVER_ADDRESS":       ":9090",
		"AI_TIMEOUT":           "20s",
		"AI_RPM":               "30",
		"SMTP_PORT":            "465",
		"DISPATCH_CONCURRENCY": "3",
		"AI_MODEL":             "",
	}))
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Address)
	require.Equal(t, 20*time.Second, cfg.AI.Timeout)
	require.Equal(t, 30, cfg.AI.RequestsPerMinute)
	require.Equal(t, 465, cfg.SMTP.Port)
	require.Equal(t, 3, cfg.Dispatch.Concurrency)
	require.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvInvalidNumbers(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(env(map[string]string{
		"SMTP_PORT":  "smtp",
		"AI_TIMEOUT": "soon",
	}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "SMTP_PORT")
	require.Contains(t, err.Error(), "AI_TIMEOUT")
}

func TestValidateRequiresConnString(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "POSTGRES_CONN")
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  address: ":7070"
database:
  conn_string: "postgres://db/procurement"
ai:
  timeout: 45s
dispatch:
  concurrency: 4
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("DISPATCH_CONCURRENCY", "6")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Address)
	require.Equal(t, "postgres://db/procurement", cfg.Database.ConnString)
	require.Equal(t, 45*time.Second, cfg.AI.Timeout)
	require.Equal(t, 6, cfg.Dispatch.Concurrency)
	require.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
}

func TestLogConfigRedactsSecrets(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := Default()
	cfg.SMTP.Password = "hunter2"
	cfg.AI.APIKey = "secret-key"

	cfg.LogConfig(zap.New(core))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	require.Equal(t, "[REDACTED]", fields["smtp_password"])
	require.Equal(t, true, fields["ai_key_set"])
	for _, v := range fields {
		require.NotEqual(t, "hunter2", v)
		require.NotEqual(t, "secret-key", v)
	}
}

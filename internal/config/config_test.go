package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seating.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9090"
postgres: postgres://localhost/seating
redis:
  addr: redis:6379
  db: 3
auth:
  client_id: abc
  client_secret: shh
  admins: [teacher@example.com]
engine:
  max_attempts: 500
  timeout: 2s
preview:
  ttl: 5m
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Listen)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, 3, cfg.Redis.DB)
	require.Equal(t, 500, cfg.Engine.MaxAttempts)
	require.Equal(t, 2*time.Second, cfg.Engine.Timeout)
	require.Equal(t, 5*time.Minute, cfg.Preview.TTL)
	require.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	require.Equal(t, Default().Engine, cfg.Engine)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [\n"), 0o644))

	_, err := Load(path)

	require.Error(t, err)
	require.Contains(t, err.Error(), "parse")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{
		"PGCONN":              "postgres://db",
		"CLIENT_ID":           "id",
		"CLIENT_SECRET":       "secret",
		"ADMINS":              " a@example.com, ,b@example.com ",
		"REDIS_DB":            "7",
		"ENGINE_MAX_ATTEMPTS": "42",
		"ENGINE_TIMEOUT":      "750ms",
	}))

	require.NoError(t, err)
	require.Equal(t, "postgres://db", cfg.Postgres)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Auth.Admins)
	require.Equal(t, 7, cfg.Redis.DB)
	require.Equal(t, 42, cfg.Engine.MaxAttempts)
	require.Equal(t, 750*time.Millisecond, cfg.Engine.Timeout)
	require.True(t, cfg.IsAdmin("B@example.com"))
	require.False(t, cfg.IsAdmin("c@example.com"))
	require.NoError(t, cfg.Validate())
}

func TestApplyEnv_BadNumbers(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.applyEnv(envMap(map[string]string{"REDIS_DB": "x"})))
	require.Error(t, cfg.applyEnv(envMap(map[string]string{"ENGINE_TIMEOUT": "soon"})))
}

func TestValidate(t *testing.T) {
	err := Default().Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "PGCONN")
	require.Contains(t, err.Error(), "ADMINS")

	cfg := Default()
	cfg.Postgres, cfg.Auth.ClientID, cfg.Auth.ClientSecret = "pg", "id", "secret"
	cfg.Auth.Admins = []string{"a@example.com"}
	cfg.Engine.MaxAttempts = 0
	require.ErrorContains(t, cfg.Validate(), "max_attempts")
}

func TestSlogLevelFallback(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "chatty"
	require.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropsevai/cropsevai-hub/internal/buildinfo"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	for _, env := range []string{"DB_DRIVER", "DB_PATH", "DB_PASSWORD", "DB_TLS", "JWT_SECRET", "REQUIRE_AUTH", "PORT", "SENTRY_DSN", "LOG_LEVEL"} {
		t.Setenv(env, "")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAndOpenDatastore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rt.db")
	path := writeConfig(t, `
datastore:
  driver: sqlite
  sqlite:
    path: `+dbPath+`
auth:
  jwtsecret: runtime-test-secret
logging:
  console:
    enabled: false
`)

	rt := New(buildinfo.New("v9.9.9", "2026-10-16"))
	require.NoError(t, rt.Load(path))
	t.Cleanup(func() { _ = rt.Close() })

	assert.Equal(t, "v9.9.9", rt.Settings.Version)
	assert.Equal(t, path, rt.Settings.ConfigFile)
	assert.False(t, rt.Check().HasIssues())

	ds, err := rt.OpenDatastore(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	require.NoError(t, ds.Ping(context.Background()))
}

func TestCheckWarnings(t *testing.T) {
	path := writeConfig(t, `
datastore:
  driver: mysql
  mysql:
    tls: "false"
security:
  requireauth: true
logging:
  console:
    enabled: false
`)

	rt := New(nil)
	require.NoError(t, rt.Load(path))
	t.Cleanup(func() { _ = rt.Close() })

	result := rt.Check()
	assert.True(t, result.Valid)
	assert.Len(t, result.Warnings, 4)
}

func TestUnloadedContext(t *testing.T) {
	rt := New(nil)

	result := rt.Check()
	assert.False(t, result.Valid)
	assert.True(t, result.HasIssues())

	_, err := rt.OpenDatastore(nil)
	require.Error(t, err)
	assert.NoError(t, rt.Close())
	assert.Equal(t, buildinfo.UnknownValue, rt.Build.GetVersion())
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-case-portal/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("PCS_API_URL", "")
	t.Setenv("ENV", "")
	t.Setenv("PORT", "")

	c := config.New()
	require.Equal(t, "http://127.0.0.1:8000/api", c.GetAPIURL())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, 20*time.Second, c.GetRequestTimeout())
	require.Equal(t, "/auth/token/refresh/", c.GetRefreshPath())
	require.Equal(t, ":8000", c.GetPort())
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pcs.yaml")
	doc := `
app_name: Precinct
api:
  url: http://files.example/api/
  request_timeout: 3s
storage:
  backend: redis
server:
  port: "9001"
  access_token_ttl: 90s
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	t.Setenv("PCS_API_URL", "")
	t.Setenv("PCS_STORAGE", "")
	t.Setenv("PORT", "")
	t.Setenv("PCS_ACCESS_TOKEN_TTL", "")

	c, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "Precinct", c.GetAppName())
	require.Equal(t, "http://files.example/api", c.GetAPIURL())
	require.Equal(t, 3*time.Second, c.GetRequestTimeout())
	require.Equal(t, config.StorageRedis, c.GetStorageBackend())
	require.Equal(t, ":9001", c.GetPort())
	require.Equal(t, 90*time.Second, c.GetAccessTokenTTL())

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("PCS_API_URL", "http://env.example/api")
		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "http://env.example/api", c.GetAPIURL())
	})

	t.Run("bad duration falls back to default", func(t *testing.T) {
		t.Setenv("PCS_REQUEST_TIMEOUT", "soon")
		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, 20*time.Second, c.GetRequestTimeout())
	})
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

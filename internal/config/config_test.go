package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, FeedSourceFile, cfg.Feed.Source)
	assert.Equal(t, "./data/schedule.json", cfg.Feed.Path)
	assert.Equal(t, 10*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "dutycal", cfg.Database.Schema)
	assert.False(t, cfg.Frontend.Enabled)
	assert.Equal(t, 10000, cfg.Sessions.Max)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTimeout)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	yaml := `
port: 9090
timezone: Europe/Warsaw
feed:
  source: http
  url: https://roster.example.com/schedule.json
  timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("DUTYCAL_FEED_OAUTH_CLIENTID", "client")
	t.Setenv("DUTYCAL_DB_HOST", "db.internal")
	t.Setenv("DUTYCAL_SESSIONS_IDLETIMEOUT", "5m")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, FeedSourceHTTP, cfg.Feed.Source)
	assert.Equal(t, "https://roster.example.com/schedule.json", cfg.Feed.URL)
	assert.Equal(t, 3*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "client", cfg.Feed.OAuth.ClientId)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 5*time.Minute, cfg.Sessions.IdleTimeout)
	assert.Equal(t, 10000, cfg.Sessions.Max)
	assert.Equal(t, "Europe/Warsaw", cfg.Location().String())
}

func TestApplication_Location(t *testing.T) {
	assert.Equal(t, time.Local, Application{}.Location())
	assert.Equal(t, time.Local, Application{Timezone: "Mars/Olympus"}.Location())
	assert.Equal(t, "UTC", Application{Timezone: "UTC"}.Location().String())
}

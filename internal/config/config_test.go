package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "naka-gawa", cfg.Owner)
	assert.Equal(t, "repo-pulse", cfg.Repo)
	assert.Equal(t, 5*time.Minute, cfg.StatsTTL)
	assert.Equal(t, 60*time.Second, cfg.RefreshCooldown)
	assert.Equal(t, 24*time.Hour, cfg.VersionTTL)
	assert.Equal(t, 10, cfg.RecentCommitLimit)
	assert.Equal(t, 50, cfg.StargazerPageSize)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.NotEmpty(t, cfg.FallbackBaseURL)
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
repo:
  owner: octocat
  name: hello-world
cache:
  stats_ttl: 10m
  refresh_cooldown: 30s
fetch:
  recent_commit_limit: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "octocat", cfg.Owner)
	assert.Equal(t, "hello-world", cfg.Repo)
	assert.Equal(t, 10*time.Minute, cfg.StatsTTL)
	assert.Equal(t, 30*time.Second, cfg.RefreshCooldown)
	assert.Equal(t, 5, cfg.RecentCommitLimit)
	// Untouched keys keep their defaults.
	assert.Equal(t, 24*time.Hour, cfg.VersionTTL)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	content := `
repo:
  owner: ""
  name: ""
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_TokenComesFromEnvironment(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "ghp_test", cfg.Token)
}

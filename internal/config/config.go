// Package config loads application configuration from file, environment
// and defaults using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable the application reads at startup.
type Config struct {
	Owner string
	Repo  string
	Token string

	StatsTTL        time.Duration
	RefreshCooldown time.Duration
	VersionTTL      time.Duration

	CacheDir        string
	FallbackBaseURL string

	RecentCommitLimit int
	StargazerPageSize int
}

// Load reads configuration from an optional YAML config file, then
// applies REPO_PULSE_* environment overrides on top of the defaults.
// GITHUB_TOKEN is read directly from the environment and is allowed to
// be empty (unauthenticated requests, smaller rate budget).
func Load(confPath string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if confPath != "" {
		v.AddConfigPath(confPath)
	}
	v.AddConfigPath(".")

	// Defaults to allow running without a config file.
	v.SetDefault("repo.owner", "naka-gawa")
	v.SetDefault("repo.name", "repo-pulse")
	v.SetDefault("cache.stats_ttl", "5m")
	v.SetDefault("cache.refresh_cooldown", "60s")
	v.SetDefault("cache.version_ttl", "24h")
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("fallback.base_url", "https://naka-gawa.github.io/repo-pulse-data")
	v.SetDefault("fetch.recent_commit_limit", 10)
	v.SetDefault("fetch.stargazer_page_size", 50)

	v.AutomaticEnv()
	v.SetEnvPrefix("REPO_PULSE")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine, defaults and env vars apply.
	}

	cfg := Config{
		Owner:             v.GetString("repo.owner"),
		Repo:              v.GetString("repo.name"),
		Token:             os.Getenv("GITHUB_TOKEN"),
		StatsTTL:          v.GetDuration("cache.stats_ttl"),
		RefreshCooldown:   v.GetDuration("cache.refresh_cooldown"),
		VersionTTL:        v.GetDuration("cache.version_ttl"),
		CacheDir:          v.GetString("cache.dir"),
		FallbackBaseURL:   v.GetString("fallback.base_url"),
		RecentCommitLimit: v.GetInt("fetch.recent_commit_limit"),
		StargazerPageSize: v.GetInt("fetch.stargazer_page_size"),
	}

	if cfg.Owner == "" || cfg.Repo == "" {
		return Config{}, fmt.Errorf("repo.owner and repo.name must be set")
	}
	if cfg.StatsTTL <= 0 || cfg.VersionTTL <= 0 {
		return Config{}, fmt.Errorf("cache TTLs must be positive")
	}

	return cfg, nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".repo-pulse-cache"
	}
	return filepath.Join(home, ".cache", "repo-pulse")
}

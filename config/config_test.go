package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultTOMLMatchesDefault(t *testing.T) {
	var cfg Config
	_, err := toml.Decode(DefaultTOML(), &cfg)
	require.NoError(t, err)
	assert.Equal(t, *Default(), cfg)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[render]
max_nodes = 20
theme = "nord"

[fetcher]
timeout = "5s"
browser = "never"

[security]
https_only = true

[style]
scale = 2.0

[style.overrides.h1]
bold = true
margin = { top = 20, bottom = 10 }
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Render.MaxNodes)
	assert.Equal(t, "nord", cfg.Theme().Name)
	assert.Equal(t, 5*time.Second, cfg.Fetcher.Timeout)
	assert.Equal(t, BrowserNever, cfg.Fetcher.Browser)
	assert.True(t, cfg.Security.HTTPSOnly)
	assert.Equal(t, 2.0, cfg.Style.Scale)
	require.Contains(t, cfg.Style.Overrides, "h1")
	assert.True(t, cfg.Style.Overrides["h1"].Bold)
	assert.Equal(t, 20, cfg.Style.Overrides["h1"].Margin.Top)

	// untouched values keep their defaults
	assert.Equal(t, 500, cfg.Scanner.MaxElements)
	assert.Equal(t, 50, cfg.Cache.Capacity)
	assert.Equal(t, []string{"malware.example.com", "phishing.example.com"}, cfg.Security.BlockedDomains)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("WEBGU_CACHE_CAPACITY", "7")
	t.Setenv("WEBGU_FETCHER_TIMEOUT", "3s")
	t.Setenv("WEBGU_SECURITY_BLOCKED_DOMAINS", "ads.test,tracker.test")
	t.Setenv("WEBGU_LOG_LEVEL", "debug")

	path := writeConfig(t, "[cache]\ncapacity = 20\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Cache.Capacity)
	assert.Equal(t, 3*time.Second, cfg.Fetcher.Timeout)
	assert.Equal(t, []string{"ads.test", "tracker.test"}, cfg.Security.BlockedDomains)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[render\nmax_nodes = 1"},
		{"browser mode", "[fetcher]\nbrowser = \"sometimes\"\n"},
		{"cache backend", "[cache]\nbackend = \"disk\"\n"},
		{"theme", "[render]\ntheme = \"neon\"\n"},
		{"log level", "[log]\nlevel = \"loud\"\n"},
		{"wrap mode", "[style.overrides.p]\nwrap = \"sideways\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestOptionConversions(t *testing.T) {
	cfg := Default()
	cfg.Fetcher.Timeout = 9 * time.Second
	cfg.Fetcher.ChromePath = "/usr/bin/chromium"
	cfg.Render.Images = false
	cfg.Cache.TTL = time.Hour

	fo := cfg.FetcherOptions()
	assert.Equal(t, 9*time.Second, fo.Timeout)
	assert.Equal(t, "/usr/bin/chromium", fo.ChromePath)
	assert.Equal(t, cfg.Fetcher.UserAgent, fo.UserAgent)

	po := cfg.ProjectorOptions()
	assert.Equal(t, 100, po.MaxNodes)
	assert.Zero(t, po.ThumbnailWidth)

	assert.Equal(t, 500, cfg.ScannerOptions().MaxElements)

	ro := cfg.RedisOptions()
	assert.Equal(t, "webgu:", ro.Prefix)
	assert.Equal(t, time.Hour, ro.TTL)
}

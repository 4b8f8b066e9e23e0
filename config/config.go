// Package config loads webgu's configuration: defaults, then the TOML file,
// then WEBGU_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"webgu/cache"
	"webgu/document"
	"webgu/fetcher"
	"webgu/html"
	"webgu/logging"
	"webgu/security"
	"webgu/theme"
)

// EnvPrefix prefixes every environment override, e.g. WEBGU_CACHE_CAPACITY.
const EnvPrefix = "WEBGU"

// Scanner settings.
type Scanner struct {
	MaxElements int `toml:"max_elements" envconfig:"MAX_ELEMENTS"`
}

// Render settings.
type Render struct {
	MaxNodes int `toml:"max_nodes" envconfig:"MAX_NODES"`
	// Width of the terminal page; 0 uses the terminal width.
	Width            int    `toml:"width"`
	Theme            string `toml:"theme"`
	Images           bool   `toml:"images"`
	ThumbnailWidth   int    `toml:"thumbnail_width" envconfig:"THUMBNAIL_WIDTH"`
	ImageConcurrency int    `toml:"image_concurrency" envconfig:"IMAGE_CONCURRENCY"`
}

// Browser modes for Fetcher.Browser.
const (
	BrowserNever    = "never"
	BrowserFallback = "fallback"
	BrowserAlways   = "always"
)

// Fetcher settings.
type Fetcher struct {
	UserAgent     string        `toml:"user_agent" envconfig:"USER_AGENT"`
	Timeout       time.Duration `toml:"timeout"`
	Retries       int           `toml:"retries"`
	MaxBodyBytes  int64         `toml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
	MaxImageBytes int64         `toml:"max_image_bytes" envconfig:"MAX_IMAGE_BYTES"`
	ImageRPS      float64       `toml:"image_rps" envconfig:"IMAGE_RPS"`
	// Browser is never, fallback (headless Chrome when a page needs
	// JavaScript) or always.
	Browser    string `toml:"browser"`
	ChromePath string `toml:"chrome_path" envconfig:"CHROME_PATH"`
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Cache settings.
type Cache struct {
	Backend     string        `toml:"backend"`
	Capacity    int           `toml:"capacity"`
	RedisAddr   string        `toml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPrefix string        `toml:"redis_prefix" envconfig:"REDIS_PREFIX"`
	TTL         time.Duration `toml:"ttl"`
}

// Pipeline settings.
type Pipeline struct {
	PollInterval time.Duration `toml:"poll_interval" envconfig:"POLL_INTERVAL"`
	// Blocking calls the fetcher inline instead of polling it.
	Blocking bool `toml:"blocking"`
}

// Server settings.
type Server struct {
	Addr           string        `toml:"addr"`
	RequestTimeout time.Duration `toml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// Config is the complete configuration.
type Config struct {
	Scanner  Scanner         `toml:"scanner"`
	Render   Render          `toml:"render"`
	Style    theme.Config    `toml:"style"`
	Fetcher  Fetcher         `toml:"fetcher"`
	Cache    Cache           `toml:"cache"`
	Security security.Config `toml:"security"`
	Pipeline Pipeline        `toml:"pipeline"`
	Server   Server          `toml:"server"`
	Log      logging.Config  `toml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	fo := fetcher.DefaultOptions()
	do := document.DefaultOptions()
	return &Config{
		Scanner: Scanner{MaxElements: html.DefaultMaxElements},
		Render: Render{
			MaxNodes:         do.MaxNodes,
			Theme:            theme.DefaultDark.Name,
			Images:           true,
			ThumbnailWidth:   do.ThumbnailWidth,
			ImageConcurrency: do.ImageConcurrency,
		},
		Style: theme.Config{Scale: 1},
		Fetcher: Fetcher{
			UserAgent:     fo.UserAgent,
			Timeout:       fo.Timeout,
			Retries:       fo.Retries,
			MaxBodyBytes:  fo.MaxBodyBytes,
			MaxImageBytes: fo.MaxImageBytes,
			ImageRPS:      fo.ImageRPS,
			Browser:       BrowserFallback,
		},
		Cache: Cache{
			Backend:     CacheMemory,
			Capacity:    cache.DefaultCapacity,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "webgu:",
		},
		Security: security.Config{
			BlockedDomains: append([]string(nil), security.DefaultBlockedDomains...),
		},
		Pipeline: Pipeline{PollInterval: 100 * time.Millisecond},
		Server:   Server{Addr: "127.0.0.1:8080", RequestTimeout: 60 * time.Second},
		Log:      logging.DefaultConfig(),
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "webgu"), nil
}

// Path returns the path to the user's config file.
func Path() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path over the defaults and applies
// environment overrides. A missing file is not an error. An empty path
// uses Path().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if p, err := Path(); err == nil {
			path = p
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading %s_* environment: %w", EnvPrefix, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have a fixed set of choices.
func (c *Config) Validate() error {
	switch c.Fetcher.Browser {
	case BrowserNever, BrowserFallback, BrowserAlways:
	default:
		return fmt.Errorf("fetcher.browser: unknown mode %q", c.Fetcher.Browser)
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if _, ok := theme.ByName(c.Render.Theme); !ok {
		return fmt.Errorf("render.theme: unknown theme %q", c.Render.Theme)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Style.Scale < 0 {
		return fmt.Errorf("style.scale: must not be negative")
	}
	return nil
}

// ScannerOptions returns the scanner settings.
func (c *Config) ScannerOptions() html.Options {
	return html.Options{MaxElements: c.Scanner.MaxElements}
}

// ProjectorOptions returns the projector settings.
func (c *Config) ProjectorOptions() document.Options {
	o := document.Options{
		MaxNodes:         c.Render.MaxNodes,
		ThumbnailWidth:   c.Render.ThumbnailWidth,
		ImageConcurrency: c.Render.ImageConcurrency,
	}
	if !c.Render.Images {
		o.ThumbnailWidth = 0
	}
	return o
}

// FetcherOptions returns the fetcher settings.
func (c *Config) FetcherOptions() fetcher.Options {
	o := fetcher.DefaultOptions()
	o.UserAgent = c.Fetcher.UserAgent
	o.Timeout = c.Fetcher.Timeout
	o.Retries = c.Fetcher.Retries
	o.MaxBodyBytes = c.Fetcher.MaxBodyBytes
	o.MaxImageBytes = c.Fetcher.MaxImageBytes
	o.ImageRPS = c.Fetcher.ImageRPS
	o.ChromePath = c.Fetcher.ChromePath
	return o
}

// RedisOptions returns the Redis cache settings.
func (c *Config) RedisOptions() cache.RedisOptions {
	return cache.RedisOptions{Prefix: c.Cache.RedisPrefix, Capacity: c.Cache.Capacity, TTL: c.Cache.TTL}
}

// Theme returns the configured theme.
func (c *Config) Theme() *theme.Theme {
	if t, ok := theme.ByName(c.Render.Theme); ok {
		return t
	}
	return theme.DefaultDark
}

// DefaultTOML returns the default configuration as a TOML string, for
// webgu init-config.
func DefaultTOML() string {
	return `# webgu configuration
# Save to ~/.config/webgu/config.toml and keep only what you change.
# Any value can also be set from the environment, e.g. WEBGU_CACHE_CAPACITY=100.

[scanner]
# Elements scanned per page before the rest is dropped.
max_elements = 500

[render]
# Element nodes rendered per page; the rest collapse into one notice.
max_nodes = 100
# Page width in columns; 0 uses the terminal width.
width = 0
# default-dark, default-light or nord
theme = "default-dark"
images = true
thumbnail_width = 64
image_concurrency = 4

[style]
# Multiplies every margin.
scale = 1.0

# Replace the style of a tag:
# [style.overrides.h1]
# bold = true
# underline = true
# margin = { top = 20, bottom = 10 }

[fetcher]
user_agent = "Mozilla/5.0 (X11; Linux x86_64) webgu/1.0"
timeout = "30s"
retries = 2
max_body_bytes = 10485760
max_image_bytes = 5242880
image_rps = 8.0
# never, fallback or always
browser = "fallback"
chrome_path = ""

[cache]
# memory, redis or none
backend = "memory"
capacity = 50
redis_addr = "localhost:6379"
redis_prefix = "webgu:"
ttl = "0s"

[security]
blocked_domains = ["malware.example.com", "phishing.example.com"]
https_only = false
sanitize = false

[pipeline]
poll_interval = "100ms"
blocking = false

[server]
addr = "127.0.0.1:8080"
request_timeout = "60s"

[log]
# debug, info, warn or error
level = "info"
development = false
`
}

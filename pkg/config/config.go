// Package config loads mathfmt configuration.
//
// Configuration is read from an optional TOML file, then overridden by
// MATHFMT_* environment variables, then validated. Environment references
// such as ${MATHFMT_TOKEN} inside the file are expanded before parsing.
//
//	[renderer]
//	backend  = "remote"                  # remote | local
//	endpoint = "http://localhost:10044"
//	timeout  = "10s"
//	attempts = 1
//
//	[cache]
//	backend = "none"                     # none | file | redis
//	ttl     = "24h"
//
//	[formatter]
//	warn_unknown = false
//
//	[server]
//	addr = ":8080"
package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mathfmt/pkg/errors"
)

// Renderer backends.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the complete configuration.
type Config struct {
	Renderer  RendererConfig  `toml:"renderer" envPrefix:"RENDERER_"`
	Cache     CacheConfig     `toml:"cache"`
	Formatter FormatterConfig `toml:"formatter"`
	Server    ServerConfig    `toml:"server"`
}

// RendererConfig selects and tunes the rendering backend.
type RendererConfig struct {
	Backend    string        `toml:"backend" env:"BACKEND"`
	Endpoint   string        `toml:"endpoint" env:"ENDPOINT"`
	Timeout    time.Duration `toml:"timeout" env:"TIMEOUT"`
	Attempts   int           `toml:"attempts" env:"ATTEMPTS"`
	RetryDelay time.Duration `toml:"retry_delay" env:"RETRY_DELAY"`
	UserAgent  string        `toml:"user_agent,omitempty" env:"USER_AGENT"`
	ImageURL   string        `toml:"image_url,omitempty" env:"IMAGE_URL"`
}

// CacheConfig configures the optional render cache.
type CacheConfig struct {
	Backend       string        `toml:"backend" env:"CACHE_BACKEND"`
	Dir           string        `toml:"dir,omitempty" env:"CACHE_DIR"` // empty means the user cache dir
	TTL           time.Duration `toml:"ttl" env:"CACHE_TTL"`
	RedisAddr     string        `toml:"redis_addr,omitempty" env:"REDIS_ADDR"`
	RedisPassword string        `toml:"redis_password,omitempty" env:"REDIS_PASSWORD"`
	RedisDB       int           `toml:"redis_db" env:"REDIS_DB"`
}

// FormatterConfig holds formatter options.
type FormatterConfig struct {
	WarnUnknown bool   `toml:"warn_unknown" env:"WARN_UNKNOWN"`
	Format      string `toml:"format" env:"FORMAT"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" env:"SERVER_ADDR"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Renderer: RendererConfig{
			Backend:    BackendRemote,
			Endpoint:   "http://localhost:10044",
			Timeout:    10 * time.Second,
			Attempts:   1,
			RetryDelay: 250 * time.Millisecond,
		},
		Cache: CacheConfig{
			Backend: CacheNone,
			TTL:     24 * time.Hour,
		},
		Formatter: FormatterConfig{
			Format: "text/html",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// DefaultPath returns the default config file location
// (~/.config/mathfmt/config.toml, honoring XDG_CONFIG_HOME).
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mathfmt", "config.toml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mathfmt", "config.toml")
}

// Load reads the configuration. An empty path loads the file at
// [DefaultPath] if one exists, and otherwise starts from [Default].
// An explicitly given path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if p := DefaultPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
		if err := cfg.decode(string(data)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	}

	if err := cfg.applyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML on top of the defaults and validates the result.
// Environment overrides are not applied.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data string) error {
	md, err := toml.Decode(os.ExpandEnv(data), c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	r := c.Renderer
	if !slices.Contains([]string{BackendRemote, BackendLocal}, r.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "renderer.backend must be %q or %q, got %q", BackendRemote, BackendLocal, r.Backend)
	}
	if r.Backend == BackendRemote {
		if err := errors.ValidateURL(r.Endpoint); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "renderer.endpoint")
		}
	}
	if r.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "renderer.timeout must be positive")
	}
	if r.Attempts < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "renderer.attempts must be at least 1")
	}
	if r.RetryDelay < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "renderer.retry_delay must not be negative")
	}
	if r.ImageURL != "" {
		if err := errors.ValidateURL(r.ImageURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "renderer.image_url")
		}
	}

	cc := c.Cache
	if !slices.Contains([]string{CacheNone, CacheFile, CacheRedis}, cc.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be one of none, file, redis, got %q", cc.Backend)
	}
	if cc.Backend == CacheRedis && cc.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if cc.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if cc.RedisDB < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_db must not be negative")
	}

	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr must not be empty")
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

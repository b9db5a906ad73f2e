// Package cli implements the mathfmt command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mathfmt/pkg/buildinfo"
	"github.com/matzehuels/mathfmt/pkg/cache"
	"github.com/matzehuels/mathfmt/pkg/config"
	"github.com/matzehuels/mathfmt/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "mathfmt"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "mathfmt",
		Short:        "mathfmt formats TeX math as HTML, wiki markup and RDF",
		Long:         `mathfmt renders TeX math through a MathML rendering service and shapes the result as plain text, wiki markup, HTML, HTML diff views or RDF triples.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.formatCommand())
	root.AddCommand(c.rdfCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Renderer Factory
// =============================================================================

// loadConfig reads the configuration selected by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// newRenderer builds the renderer described by cfg, wrapped with the
// configured cache. The returned close function releases the cache.
func (c *CLI) newRenderer(ctx context.Context, cfg *config.Config) (render.Renderer, func() error, error) {
	var r render.Renderer
	switch cfg.Renderer.Backend {
	case config.BackendLocal:
		r = render.NewLocal(c.Logger)
	default:
		r = render.NewClient(render.ClientOptions{
			Endpoint:   cfg.Renderer.Endpoint,
			Timeout:    cfg.Renderer.Timeout,
			Attempts:   cfg.Renderer.Attempts,
			RetryDelay: cfg.Renderer.RetryDelay,
			UserAgent:  cfg.Renderer.UserAgent,
			Logger:     c.Logger,
		})
	}

	store, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := store.(cache.NullCache); ok {
		return r, store.Close, nil
	}
	c.Logger.Debug("render cache enabled", "backend", cfg.Cache.Backend, "ttl", cfg.Cache.TTL)
	return render.Cached(r, store, cache.NewDefaultKeyer(), cfg.Cache.TTL), store.Close, nil
}

func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return rc, nil
	case config.CacheFile:
		dir, err := cacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// standard (~/.cache/mathfmt/).
func cacheDir(cfg config.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

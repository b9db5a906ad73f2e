package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mathfmt/pkg/config"
)

// rendererFlags are shared by the commands that render. Flags override the
// config file only when set explicitly.
type rendererFlags struct {
	backend  string
	endpoint string
	timeout  time.Duration
	attempts int
	imageURL string
	noCache  bool
}

func (f *rendererFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.backend, "backend", "", "renderer backend: remote or local")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "rendering service URL")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "timeout per render request")
	cmd.Flags().IntVar(&f.attempts, "attempts", 0, "render attempts for transient failures")
	cmd.Flags().StringVar(&f.imageURL, "image-url", "", "base URL of fallback images")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the render cache")
}

// apply copies explicitly set flags into cfg and validates the result.
func (f *rendererFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Renderer.Backend = f.backend
	}
	if flags.Changed("endpoint") {
		cfg.Renderer.Endpoint = f.endpoint
	}
	if flags.Changed("timeout") {
		cfg.Renderer.Timeout = f.timeout
	}
	if flags.Changed("attempts") {
		cfg.Renderer.Attempts = f.attempts
	}
	if flags.Changed("image-url") {
		cfg.Renderer.ImageURL = f.imageURL
	}
	if f.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
	return cfg.Validate()
}

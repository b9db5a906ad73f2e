package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mathfmt/internal/api"
	"github.com/matzehuels/mathfmt/pkg/formatter"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		renderer rendererFlags
		addr     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the formatting HTTP API",
		Long: `Serve the formatting API:

  POST /v1/format?format=<id>
  POST /v1/rdf?subject=<local>&property=<local>
  GET  /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if err := renderer.apply(cmd, cfg); err != nil {
				return err
			}

			r, closeCache, err := c.newRenderer(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			handler := api.New(api.Options{
				Renderer:      r,
				Logger:        c.Logger,
				DefaultFormat: formatter.Canonical(cfg.Formatter.Format),
				FormatterOptions: []formatter.Option{
					formatter.WithImageURL(cfg.Renderer.ImageURL),
					formatter.WithWarnUnknown(cfg.Formatter.WarnUnknown),
				},
			})

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           handler.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return c.listen(ctx, srv, cfg.Renderer.Backend)
		},
	}

	renderer.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")

	return cmd
}

// listen runs srv until ctx is cancelled, then shuts it down gracefully.
func (c *CLI) listen(ctx context.Context, srv *http.Server, backend string) error {
	errc := make(chan error, 1)
	go func() {
		printInfo("Listening on %s", StyleHighlight.Render(srv.Addr))
		printDetail("Renderer: %s", backend)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
